package api

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Mufasa1738-maina/covid-tracker/schema"
	"github.com/Mufasa1738-maina/covid-tracker/stats"
	"github.com/Mufasa1738-maina/covid-tracker/store"
)

const (
	metricTotalCases       = "total_cases"
	metricNewCases         = "new_cases"
	metricTotalDeaths      = "total_deaths"
	metricNewDeaths        = "new_deaths"
	metricVaccinationRate  = "vaccination_rate"
	metricCaseFatalityRate = "case_fatality_rate"
)

type timeSeriesQueryParams struct {
	Metric string `form:"metric"`
	Since  int64  `form:"since"`
	Until  int64  `form:"until"`
	Window int    `form:"window"`
}

func metricValue(r schema.CovidRecord, metric string) (float64, bool) {
	switch metric {
	case metricTotalCases:
		return r.TotalCases, true
	case metricNewCases:
		return r.NewCases, true
	case metricTotalDeaths:
		return r.TotalDeaths, true
	case metricNewDeaths:
		return r.NewDeaths, true
	case metricVaccinationRate:
		return r.VaccinationRate(), true
	case metricCaseFatalityRate:
		return r.CaseFatalityRate(), true
	}
	return 0, false
}

func (s *Server) listCountries(c *gin.Context) {
	snapshots, err := s.mongoStore.GetLatestSnapshots()
	if err == store.ErrNoCovidDataset {
		c.JSON(http.StatusOK, gin.H{"countries": []schema.CountrySnapshot{}})
		return
	}
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"countries": snapshots})
}

func (s *Server) countryTimeSeries(c *gin.Context) {
	iso := c.Param("isoCode")
	if _, ok := schema.CountryByISO(s.tracked, iso); !ok {
		abortWithEncoding(c, http.StatusBadRequest, errorUnknownCountry)
		return
	}

	var params timeSeriesQueryParams
	if err := c.Bind(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	if params.Since < 0 || params.Until < 0 {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, fmt.Errorf("negative time range"))
		return
	}

	metric := params.Metric
	if metric == "" {
		metric = metricTotalCases
	}
	if _, ok := metricValue(schema.CovidRecord{}, metric); !ok {
		abortWithEncoding(c, http.StatusBadRequest, errorUnknownMetric)
		return
	}

	records, err := s.mongoStore.GetTimeSeries(iso, params.Since, params.Until)
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	dates := make([]string, len(records))
	values := make([]float64, len(records))
	for i, r := range records {
		dates[i] = r.Date
		values[i], _ = metricValue(r, metric)
	}

	var series []stats.Point
	if params.Window > 1 && len(records) > 0 {
		series = stats.RollingMean(dates, values, params.Window)
	} else {
		series = make([]stats.Point, len(records))
		for i := range records {
			series[i] = stats.Point{Date: dates[i], Value: values[i], Complete: true}
		}
	}

	resp := gin.H{
		"iso_code": iso,
		"metric":   metric,
		"series":   series,
	}
	// day-over-day movement of the latest two samples
	if len(values) >= 2 {
		resp["change_rate"] = stats.ChangeRate(values[len(values)-1], values[len(values)-2])
	}

	c.JSON(http.StatusOK, resp)
}

type compareQueryParams struct {
	Metric string `form:"metric"`
	Date   string `form:"date"`
}

func (s *Server) compareCountries(c *gin.Context) {
	var params compareQueryParams
	if err := c.Bind(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	metric := params.Metric
	if metric == "" {
		metric = metricTotalCases
	}
	if _, ok := metricValue(schema.CovidRecord{}, metric); !ok {
		abortWithEncoding(c, http.StatusBadRequest, errorUnknownMetric)
		return
	}

	var records []schema.CovidRecord
	if params.Date == "" {
		snapshots, err := s.mongoStore.GetLatestSnapshots()
		if err == store.ErrNoCovidDataset {
			abortWithEncoding(c, http.StatusNotFound, errorNoDataset)
			return
		}
		if err != nil {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
			return
		}
		for _, snapshot := range snapshots {
			records = append(records, snapshot.CovidRecord)
		}
	} else {
		day, err := time.Parse(schema.DateLayout, params.Date)
		if err != nil {
			abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
			return
		}
		dayStart := day.UTC().Unix()
		dayEnd := dayStart + 24*60*60 - 1
		for _, country := range s.tracked {
			series, err := s.mongoStore.GetTimeSeries(country.ISOCode, dayStart, dayEnd)
			if err != nil {
				abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
				return
			}
			if len(series) > 0 {
				records = append(records, series[len(series)-1])
			}
		}
		if len(records) == 0 {
			abortWithEncoding(c, http.StatusNotFound, errorNoDataset)
			return
		}
	}

	comparison := make([]stats.CountryValue, 0, len(records))
	for _, r := range records {
		v, _ := metricValue(r, metric)
		comparison = append(comparison, stats.CountryValue{
			Country: r.Country,
			ISOCode: r.ISOCode,
			Value:   v,
		})
	}
	sort.Slice(comparison, func(i, j int) bool {
		return comparison[i].Value > comparison[j].Value
	})

	c.JSON(http.StatusOK, gin.H{
		"metric":    metric,
		"date":      params.Date,
		"countries": comparison,
	})
}

func (s *Server) getInsights(c *gin.Context) {
	snapshots, err := s.mongoStore.GetLatestSnapshots()
	if err == store.ErrNoCovidDataset {
		abortWithEncoding(c, http.StatusNotFound, errorNoDataset)
		return
	}
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	firstReports := make(map[string]schema.CovidRecord, len(snapshots))
	for _, snapshot := range snapshots {
		first, err := s.mongoStore.FirstReportedCase(snapshot.ISOCode)
		if err == store.ErrNoFirstCaseFound {
			continue
		}
		if err != nil {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
			return
		}
		firstReports[snapshot.ISOCode] = *first
	}

	c.JSON(http.StatusOK, gin.H{"insights": stats.Summarize(snapshots, firstReports)})
}

func (s *Server) generateReports(c *gin.Context) {
	snapshots, err := s.mongoStore.GetLatestSnapshots()
	if err == store.ErrNoCovidDataset {
		abortWithEncoding(c, http.StatusNotFound, errorNoDataset)
		return
	}
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	records := make([]schema.CovidRecord, 0)
	firstReports := make(map[string]schema.CovidRecord, len(snapshots))
	for _, snapshot := range snapshots {
		series, err := s.mongoStore.GetTimeSeries(snapshot.ISOCode, 0, 0)
		if err != nil {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
			return
		}
		records = append(records, series...)

		if first, err := s.mongoStore.FirstReportedCase(snapshot.ISOCode); err == nil {
			firstReports[snapshot.ISOCode] = *first
		}
	}

	insights := stats.Summarize(snapshots, firstReports)
	if err := s.reporter.GenerateAll(records, snapshots, insights); err != nil {
		log.Error(err)
		abortWithEncoding(c, http.StatusInternalServerError, errorReportGeneration, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "OK"})
}
