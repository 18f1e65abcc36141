package owid

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Mufasa1738-maina/covid-tracker/schema"
	"github.com/Mufasa1738-maina/covid-tracker/stats"
)

const (
	logPrefix  = "owid"
	defaultURL = "https://covid.ourworldindata.org/data/owid-covid-data.csv"
)

var (
	ErrDatasetFetch   = fmt.Errorf("fetch owid dataset fail")
	ErrMissingColumns = fmt.Errorf("dataset misses required columns")
)

// OWID downloads and parses the Our World in Data COVID-19 dataset.
type OWID interface {
	Fetch() ([]schema.CovidRecord, error)
	FetchFile(path string) ([]schema.CovidRecord, error)
}

type owid struct {
	url     string
	client  *http.Client
	tracked map[string]string // location name -> ISO code
}

// New returns an OWID client restricted to the given countries. An empty
// url falls back to the public dataset location.
func New(url string, client *http.Client, countries []schema.Country) OWID {
	u := defaultURL
	if url != "" {
		u = url
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}

	return &owid{
		url:     u,
		client:  client,
		tracked: schema.TrackedNames(countries),
	}
}

func (o *owid) Fetch() ([]schema.CovidRecord, error) {
	resp, err := o.client.Get(o.url)
	if nil != err {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.WithFields(log.Fields{"prefix": logPrefix, "status": resp.StatusCode}).Error("dataset download")
		return nil, ErrDatasetFetch
	}

	return o.parse(resp.Body)
}

func (o *owid) FetchFile(path string) ([]schema.CovidRecord, error) {
	f, err := os.Open(path)
	if nil != err {
		return nil, err
	}
	defer f.Close()

	return o.parse(f)
}

// columns needed from the feed; everything else is skipped.
var requiredColumns = []string{"location", "iso_code", "date"}

var numericColumns = []string{
	"total_cases", "new_cases", "total_deaths", "new_deaths",
	"total_vaccinations", "people_vaccinated", "people_fully_vaccinated",
	"population", "population_density", "median_age", "gdp_per_capita",
}

func (o *owid) parse(r io.Reader) ([]schema.CovidRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, ErrMissingColumns
		}
	}

	records := make([]schema.CovidRecord, 0)
	skipped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		location := field(row, index["location"])
		iso, ok := o.tracked[location]
		if !ok {
			continue
		}

		date := field(row, index["date"])
		reportDay, err := time.Parse(schema.DateLayout, date)
		if err != nil {
			skipped++
			continue
		}

		record := schema.CovidRecord{
			Country:    location,
			ISOCode:    iso,
			Date:       date,
			ReportTime: reportDay.UTC().Unix(),
		}
		values := make(map[string]float64, len(numericColumns))
		for _, name := range numericColumns {
			col, ok := index[name]
			if !ok {
				continue
			}
			// missing cells count as zero
			values[name], _ = strconv.ParseFloat(field(row, col), 64)
		}
		record.TotalCases = values["total_cases"]
		record.NewCases = values["new_cases"]
		record.TotalDeaths = values["total_deaths"]
		record.NewDeaths = values["new_deaths"]
		record.TotalVaccinations = values["total_vaccinations"]
		record.PeopleVaccinated = values["people_vaccinated"]
		record.PeopleFullyVaccinated = values["people_fully_vaccinated"]
		record.Population = values["population"]
		record.PopulationDensity = values["population_density"]
		record.MedianAge = values["median_age"]
		record.GDPPerCapita = values["gdp_per_capita"]

		records = append(records, record)
	}

	if skipped > 0 {
		log.WithFields(log.Fields{"prefix": logPrefix, "rows": skipped}).Warn("malformed rows skipped")
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Country != records[j].Country {
			return records[i].Country < records[j].Country
		}
		return records[i].ReportTime < records[j].ReportTime
	})

	repairDailySeries(records)

	return records, nil
}

// repairDailySeries replaces negative daily counts, which show up when a
// feed revises its totals downwards, with clamped deltas of the
// cumulative series. Cumulative values stay as reported.
func repairDailySeries(records []schema.CovidRecord) {
	for start := 0; start < len(records); {
		end := start
		for end < len(records) && records[end].ISOCode == records[start].ISOCode {
			end++
		}

		totalCases := make([]float64, end-start)
		totalDeaths := make([]float64, end-start)
		for i := start; i < end; i++ {
			totalCases[i-start] = records[i].TotalCases
			totalDeaths[i-start] = records[i].TotalDeaths
		}
		caseDeltas := stats.RepairCumulative(totalCases)
		deathDeltas := stats.RepairCumulative(totalDeaths)

		for i := start; i < end; i++ {
			if records[i].NewCases < 0 {
				records[i].NewCases = caseDeltas[i-start]
			}
			if records[i].NewDeaths < 0 {
				records[i].NewDeaths = deathDeltas[i-start]
			}
		}

		start = end
	}
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
