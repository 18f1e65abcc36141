package report

import (
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/Mufasa1738-maina/covid-tracker/schema"
	"github.com/Mufasa1738-maina/covid-tracker/stats"
)

const (
	logPrefix = "report"

	chartWidth  = 12 * vg.Inch
	chartHeight = 6 * vg.Inch

	rollingWindow = 7
)

// Generator renders the chart and export artifacts into one directory.
type Generator struct {
	outputDir string
}

func NewGenerator(outputDir string) *Generator {
	return &Generator{outputDir: outputDir}
}

// RenderCharts draws every chart of the report set as a PNG file.
func (g *Generator) RenderCharts(records []schema.CovidRecord, snapshots []schema.CountrySnapshot) error {
	byCountry, names := groupByCountry(records)

	totalCases := make(map[string]plotter.XYs, len(names))
	newCasesAvg := make(map[string]plotter.XYs, len(names))
	vaccination := make(map[string]plotter.XYs, len(names))

	for _, name := range names {
		series := byCountry[name]

		xysTotal := make(plotter.XYs, len(series))
		xysVax := make(plotter.XYs, len(series))
		dates := make([]string, len(series))
		newCases := make([]float64, len(series))
		for i, r := range series {
			x := float64(r.ReportTime)
			xysTotal[i] = plotter.XY{X: x, Y: r.TotalCases}
			xysVax[i] = plotter.XY{X: x, Y: r.VaccinationRate()}
			dates[i] = r.Date
			newCases[i] = r.NewCases
		}
		totalCases[name] = xysTotal
		vaccination[name] = xysVax

		rolling := stats.RollingMean(dates, newCases, rollingWindow)
		xysAvg := make(plotter.XYs, len(rolling))
		for i, p := range rolling {
			xysAvg[i] = plotter.XY{X: float64(series[i].ReportTime), Y: p.Value}
		}
		newCasesAvg[name] = xysAvg
	}

	if err := g.lineChart("Total COVID-19 Cases Over Time by Country", "Total Cases",
		"total_cases_trend.png", names, totalCases); err != nil {
		return err
	}
	if err := g.lineChart("7-Day Moving Average of New COVID-19 Cases", "New Cases (7-day avg)",
		"new_cases_trend.png", names, newCasesAvg); err != nil {
		return err
	}
	if err := g.lineChart("COVID-19 Vaccination Rate Over Time", "Percentage of Population Vaccinated",
		"vaccination_progress.png", names, vaccination); err != nil {
		return err
	}

	labels := make([]string, len(snapshots))
	fatality := make(plotter.Values, len(snapshots))
	fullyVaccinated := make(plotter.Values, len(snapshots))
	for i, s := range snapshots {
		labels[i] = s.Country
		fatality[i] = s.CaseFatality
		fullyVaccinated[i] = s.PeopleFullyVaccinated
	}

	if err := g.barChart("Case Fatality Rate by Country (Latest Data)", "Fatality Rate (%)",
		"fatality_rate.png", labels, fatality); err != nil {
		return err
	}
	return g.barChart("Total Fully Vaccinated People by Country", "Fully Vaccinated Count",
		"fully_vaccinated.png", labels, fullyVaccinated)
}

func (g *Generator) lineChart(title, yLabel, filename string, names []string, series map[string]plotter.XYs) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	p.Add(plotter.NewGrid())

	for i, name := range names {
		line, err := plotter.NewLine(series[name])
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(name, line)
	}
	p.Legend.Top = true

	return g.save(p, filename)
}

func (g *Generator) barChart(title, yLabel, filename string, labels []string, values plotter.Values) error {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return err
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = plotutil.Color(2)
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = 0.8

	return g.save(p, filename)
}

func (g *Generator) save(p *plot.Plot, filename string) error {
	path := filepath.Join(g.outputDir, filename)
	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return err
	}
	log.WithFields(log.Fields{"prefix": logPrefix, "file": path}).Info("chart saved")
	return nil
}

// groupByCountry splits records per country, keeping each series in date
// order and the country names sorted.
func groupByCountry(records []schema.CovidRecord) (map[string][]schema.CovidRecord, []string) {
	byCountry := make(map[string][]schema.CovidRecord)
	for _, r := range records {
		byCountry[r.Country] = append(byCountry[r.Country], r)
	}

	names := make([]string, 0, len(byCountry))
	for name := range byCountry {
		sort.Slice(byCountry[name], func(i, j int) bool {
			return byCountry[name][i].ReportTime < byCountry[name][j].ReportTime
		})
		names = append(names, name)
	}
	sort.Strings(names)

	return byCountry, names
}
