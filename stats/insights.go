package stats

import (
	"time"

	"github.com/Mufasa1738-maina/covid-tracker/schema"
)

// CountryValue names the country holding an extreme of a metric.
type CountryValue struct {
	Country string  `json:"country"`
	ISOCode string  `json:"iso_code"`
	Value   float64 `json:"value"`
}

// ReportingSpan is how long a country has been reporting cases.
type ReportingSpan struct {
	Country string `json:"country"`
	ISOCode string `json:"iso_code"`
	Days    int    `json:"days"`
}

// Insights is the summary block over the latest snapshots.
type Insights struct {
	AsOf            string          `json:"as_of"`
	TotalCases      float64         `json:"total_cases"`
	TotalDeaths     float64         `json:"total_deaths"`
	MostVaccinated  *CountryValue   `json:"most_vaccinated,omitempty"`
	HighestFatality *CountryValue   `json:"highest_fatality,omitempty"`
	ReportingSpans  []ReportingSpan `json:"reporting_spans"`
}

// Summarize condenses the latest snapshots into the insight block.
// firstReports maps ISO codes to the earliest record with a reported case
// and may miss countries that never reported one.
func Summarize(snapshots []schema.CountrySnapshot, firstReports map[string]schema.CovidRecord) Insights {
	insights := Insights{
		ReportingSpans: make([]ReportingSpan, 0, len(snapshots)),
	}
	if len(snapshots) == 0 {
		return insights
	}

	var asOf time.Time
	for _, s := range snapshots {
		if d := s.ReportDate(); d.After(asOf) {
			asOf = d
		}
	}
	insights.AsOf = asOf.Format(schema.DateLayout)

	for i := range snapshots {
		s := snapshots[i]
		insights.TotalCases += s.TotalCases
		insights.TotalDeaths += s.TotalDeaths

		if insights.MostVaccinated == nil || s.VaccinatedPercent > insights.MostVaccinated.Value {
			insights.MostVaccinated = &CountryValue{
				Country: s.Country,
				ISOCode: s.ISOCode,
				Value:   s.VaccinatedPercent,
			}
		}
		if insights.HighestFatality == nil || s.CaseFatality > insights.HighestFatality.Value {
			insights.HighestFatality = &CountryValue{
				Country: s.Country,
				ISOCode: s.ISOCode,
				Value:   s.CaseFatality,
			}
		}

		first, ok := firstReports[s.ISOCode]
		if !ok {
			continue
		}
		insights.ReportingSpans = append(insights.ReportingSpans, ReportingSpan{
			Country: s.Country,
			ISOCode: s.ISOCode,
			Days:    int(asOf.Sub(first.ReportDate()).Hours() / 24),
		})
	}

	return insights
}
