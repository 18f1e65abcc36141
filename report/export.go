package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/Mufasa1738-maina/covid-tracker/schema"
	"github.com/Mufasa1738-maina/covid-tracker/stats"
)

const (
	CleanedCSVName    = "covid_cleaned_data.csv"
	SnapshotCSVName   = "covid_latest_snapshot.csv"
	SummaryReportName = "covid_summary.xlsx"
	snapshotSheetName = "Snapshot"
	insightsSheetName = "Insights"
)

var csvHeader = []string{
	"date", "location", "iso_code", "total_cases", "new_cases",
	"total_deaths", "new_deaths", "total_vaccinations", "people_vaccinated",
	"people_fully_vaccinated", "population", "case_fatality_rate",
	"vaccination_rate",
}

// GenerateAll writes every artifact of a report run.
func (g *Generator) GenerateAll(records []schema.CovidRecord, snapshots []schema.CountrySnapshot, insights stats.Insights) error {
	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return err
	}
	if err := g.RenderCharts(records, snapshots); err != nil {
		return err
	}
	if err := g.ExportCleanedCSV(records); err != nil {
		return err
	}
	if err := g.ExportSnapshotCSV(snapshots); err != nil {
		return err
	}
	return g.ExportSummaryWorkbook(snapshots, insights)
}

// ExportCleanedCSV writes the whole cleaned dataset with the derived
// rate columns attached.
func (g *Generator) ExportCleanedCSV(records []schema.CovidRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, csvRow(r))
	}
	return g.writeCSV(CleanedCSVName, rows)
}

// ExportSnapshotCSV writes the latest country-day per country.
func (g *Generator) ExportSnapshotCSV(snapshots []schema.CountrySnapshot) error {
	rows := make([][]string, 0, len(snapshots))
	for _, s := range snapshots {
		rows = append(rows, csvRow(s.CovidRecord))
	}
	return g.writeCSV(SnapshotCSVName, rows)
}

func (g *Generator) writeCSV(filename string, rows [][]string) error {
	path := filepath.Join(g.outputDir, filename)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}

	log.WithFields(log.Fields{"prefix": logPrefix, "file": path, "rows": len(rows)}).Info("csv exported")
	return nil
}

func csvRow(r schema.CovidRecord) []string {
	return []string{
		r.Date, r.Country, r.ISOCode,
		formatCount(r.TotalCases), formatCount(r.NewCases),
		formatCount(r.TotalDeaths), formatCount(r.NewDeaths),
		formatCount(r.TotalVaccinations), formatCount(r.PeopleVaccinated),
		formatCount(r.PeopleFullyVaccinated), formatCount(r.Population),
		formatRate(r.CaseFatalityRate()), formatRate(r.VaccinationRate()),
	}
}

func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// ExportSummaryWorkbook writes the snapshot table and the insight block
// into one xlsx workbook.
func (g *Generator) ExportSummaryWorkbook(snapshots []schema.CountrySnapshot, insights stats.Insights) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", snapshotSheetName); err != nil {
		return err
	}

	header := []interface{}{
		"Country", "ISO", "Date", "Total Cases", "Total Deaths",
		"People Vaccinated", "Fully Vaccinated", "Case Fatality Rate (%)",
		"Vaccination Rate (%)",
	}
	if err := f.SetSheetRow(snapshotSheetName, "A1", &header); err != nil {
		return err
	}
	for i, s := range snapshots {
		row := []interface{}{
			s.Country, s.ISOCode, s.Date, s.TotalCases, s.TotalDeaths,
			s.PeopleVaccinated, s.PeopleFullyVaccinated,
			s.CaseFatality, s.VaccinatedPercent,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(snapshotSheetName, cell, &row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(insightsSheetName); err != nil {
		return err
	}
	lines := [][]interface{}{
		{"As of", insights.AsOf},
		{"Total cases across analyzed countries", insights.TotalCases},
		{"Total deaths across analyzed countries", insights.TotalDeaths},
	}
	if insights.MostVaccinated != nil {
		lines = append(lines, []interface{}{
			"Highest vaccination rate",
			fmt.Sprintf("%s (%.1f%%)", insights.MostVaccinated.Country, insights.MostVaccinated.Value),
		})
	}
	if insights.HighestFatality != nil {
		lines = append(lines, []interface{}{
			"Highest case fatality rate",
			fmt.Sprintf("%s (%.1f%%)", insights.HighestFatality.Country, insights.HighestFatality.Value),
		})
	}
	for _, span := range insights.ReportingSpans {
		lines = append(lines, []interface{}{
			fmt.Sprintf("%s reporting cases for", span.Country),
			fmt.Sprintf("%d days", span.Days),
		})
	}
	for i := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(insightsSheetName, cell, &lines[i]); err != nil {
			return err
		}
	}

	path := filepath.Join(g.outputDir, SummaryReportName)
	if err := f.SaveAs(path); err != nil {
		return err
	}
	log.WithFields(log.Fields{"prefix": logPrefix, "file": path}).Info("summary workbook exported")
	return nil
}
