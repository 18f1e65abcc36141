package schema

import "time"

const (
	CovidRecordCollection = "covidRecord"
)

// DateLayout is the day format used by the OWID dataset.
const DateLayout = "2006-01-02"

// CovidRecord is one country-day of the global dataset.
type CovidRecord struct {
	Country               string  `json:"country" bson:"country"`
	ISOCode               string  `json:"iso_code" bson:"iso_code"`
	Date                  string  `json:"date" bson:"date"`
	ReportTime            int64   `json:"report_ts" bson:"report_ts"`
	TotalCases            float64 `json:"total_cases" bson:"total_cases"`
	NewCases              float64 `json:"new_cases" bson:"new_cases"`
	TotalDeaths           float64 `json:"total_deaths" bson:"total_deaths"`
	NewDeaths             float64 `json:"new_deaths" bson:"new_deaths"`
	TotalVaccinations     float64 `json:"total_vaccinations" bson:"total_vaccinations"`
	PeopleVaccinated      float64 `json:"people_vaccinated" bson:"people_vaccinated"`
	PeopleFullyVaccinated float64 `json:"people_fully_vaccinated" bson:"people_fully_vaccinated"`
	Population            float64 `json:"population" bson:"population"`
	PopulationDensity     float64 `json:"population_density" bson:"population_density"`
	MedianAge             float64 `json:"median_age" bson:"median_age"`
	GDPPerCapita          float64 `json:"gdp_per_capita" bson:"gdp_per_capita"`
}

// ReportDate returns the record date as a UTC time.
func (r CovidRecord) ReportDate() time.Time {
	return time.Unix(r.ReportTime, 0).UTC()
}

// CaseFatalityRate is total deaths over total cases, in percent.
// Zero when no case has been reported yet.
func (r CovidRecord) CaseFatalityRate() float64 {
	if r.TotalCases == 0 {
		return 0
	}
	return r.TotalDeaths / r.TotalCases * 100
}

// VaccinationRate is people vaccinated over population, in percent.
// Zero when the population is unknown.
func (r CovidRecord) VaccinationRate() float64 {
	if r.Population == 0 {
		return 0
	}
	return r.PeopleVaccinated / r.Population * 100
}

// CountrySnapshot is the most recent record of a country together with
// its derived rates.
type CountrySnapshot struct {
	CovidRecord       `bson:",inline"`
	CaseFatality      float64 `json:"case_fatality_rate" bson:"-"`
	VaccinatedPercent float64 `json:"vaccination_rate" bson:"-"`
}

// NewCountrySnapshot fills the derived rates of a record.
func NewCountrySnapshot(r CovidRecord) CountrySnapshot {
	return CountrySnapshot{
		CovidRecord:       r,
		CaseFatality:      r.CaseFatalityRate(),
		VaccinatedPercent: r.VaccinationRate(),
	}
}
