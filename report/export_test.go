package report_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mufasa1738-maina/covid-tracker/report"
	"github.com/Mufasa1738-maina/covid-tracker/schema"
	"github.com/Mufasa1738-maina/covid-tracker/stats"
)

func testRecord(name, iso, date string, cases, deaths float64) schema.CovidRecord {
	d, _ := time.Parse(schema.DateLayout, date)
	return schema.CovidRecord{
		Country:     name,
		ISOCode:     iso,
		Date:        date,
		ReportTime:  d.Unix(),
		TotalCases:  cases,
		NewCases:    cases / 10,
		TotalDeaths: deaths,
		Population:  100000,
	}
}

func testDataset() ([]schema.CovidRecord, []schema.CountrySnapshot) {
	records := []schema.CovidRecord{
		testRecord("Germany", "DEU", "2021-01-01", 2000, 40),
		testRecord("Germany", "DEU", "2021-01-02", 2100, 42),
		testRecord("Kenya", "KEN", "2021-01-01", 100, 2),
		testRecord("Kenya", "KEN", "2021-01-02", 112, 2),
	}
	snapshots := []schema.CountrySnapshot{
		schema.NewCountrySnapshot(records[1]),
		schema.NewCountrySnapshot(records[3]),
	}
	return records, snapshots
}

func TestExportCleanedCSV(t *testing.T) {
	dir := t.TempDir()
	records, _ := testDataset()

	g := report.NewGenerator(dir)
	require.NoError(t, g.ExportCleanedCSV(records))

	f, err := os.Open(filepath.Join(dir, report.CleanedCSVName))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5, "header plus one row per record")

	assert.Equal(t, "date", rows[0][0])
	assert.Equal(t, "case_fatality_rate", rows[0][11])
	assert.Equal(t, "2021-01-01", rows[1][0])
	assert.Equal(t, "Germany", rows[1][1])
	assert.Equal(t, "2000", rows[1][3])
	assert.Equal(t, "2.0000", rows[1][11])
}

func TestExportSnapshotCSV(t *testing.T) {
	dir := t.TempDir()
	_, snapshots := testDataset()

	g := report.NewGenerator(dir)
	require.NoError(t, g.ExportSnapshotCSV(snapshots))

	f, err := os.Open(filepath.Join(dir, report.SnapshotCSVName))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2021-01-02", rows[1][0])
	assert.Equal(t, "2021-01-02", rows[2][0])
}

func TestGenerateAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	records, snapshots := testDataset()
	insights := stats.Summarize(snapshots, nil)

	g := report.NewGenerator(dir)
	require.NoError(t, g.GenerateAll(records, snapshots, insights))

	expected := []string{
		"total_cases_trend.png",
		"new_cases_trend.png",
		"vaccination_progress.png",
		"fatality_rate.png",
		"fully_vaccinated.png",
		report.CleanedCSVName,
		report.SnapshotCSVName,
		report.SummaryReportName,
	}
	for _, name := range expected {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.True(t, info.Size() > 0, name)
	}
}
