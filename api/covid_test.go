package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Mufasa1738-maina/covid-tracker/schema"
	"github.com/Mufasa1738-maina/covid-tracker/store"
)

type fakeMongoStore struct {
	snapshots []schema.CountrySnapshot
	series    map[string][]schema.CovidRecord
	firsts    map[string]schema.CovidRecord
	pingErr   error
}

func (f *fakeMongoStore) Ping() error { return f.pingErr }
func (f *fakeMongoStore) Close()      {}

func (f *fakeMongoStore) UpsertRecords(records []schema.CovidRecord) (int, error) {
	return len(records), nil
}

func (f *fakeMongoStore) GetTimeSeries(isoCode string, since, until int64) ([]schema.CovidRecord, error) {
	records := make([]schema.CovidRecord, 0)
	for _, r := range f.series[isoCode] {
		if since > 0 && r.ReportTime < since {
			continue
		}
		if until > 0 && r.ReportTime > until {
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

func (f *fakeMongoStore) ListCountries() ([]string, error) {
	codes := make([]string, 0, len(f.series))
	for code := range f.series {
		codes = append(codes, code)
	}
	return codes, nil
}

func (f *fakeMongoStore) GetLatestSnapshots() ([]schema.CountrySnapshot, error) {
	if len(f.snapshots) == 0 {
		return nil, store.ErrNoCovidDataset
	}
	return f.snapshots, nil
}

func (f *fakeMongoStore) FirstReportedCase(isoCode string) (*schema.CovidRecord, error) {
	r, ok := f.firsts[isoCode]
	if !ok {
		return nil, store.ErrNoFirstCaseFound
	}
	return &r, nil
}

func (f *fakeMongoStore) DeleteRecordsBefore(isoCode string, timeBefore int64) error {
	return nil
}

func apiRecord(name, iso, date string, cases, deaths float64) schema.CovidRecord {
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

func testServer(f *fakeMongoStore) *Server {
	return &Server{
		mongoStore: f,
		tracked:    schema.DefaultTrackedCountries,
	}
}

func TestCountryTimeSeries(t *testing.T) {
	f := &fakeMongoStore{
		series: map[string][]schema.CovidRecord{
			"KEN": {
				apiRecord("Kenya", "KEN", "2021-01-01", 100, 2),
				apiRecord("Kenya", "KEN", "2021-01-02", 120, 2),
				apiRecord("Kenya", "KEN", "2021-01-03", 150, 3),
			},
		},
	}
	s := testServer(f)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/countries/:isoCode/timeseries", s.countryTimeSeries)

	req := httptest.NewRequest("GET", "/countries/KEN/timeseries?metric=new_cases&window=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "wrong status code")

	var resp struct {
		ISOCode    string  `json:"iso_code"`
		Metric     string  `json:"metric"`
		ChangeRate float64 `json:"change_rate"`
		Series     []struct {
			Date     string  `json:"date"`
			Value    float64 `json:"value"`
			Complete bool    `json:"complete"`
		} `json:"series"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Nil(t, err, "wrong json response")
	assert.Equal(t, "KEN", resp.ISOCode)
	assert.Equal(t, "new_cases", resp.Metric)
	assert.Len(t, resp.Series, 3)
	assert.Equal(t, float64(10), resp.Series[0].Value)
	assert.False(t, resp.Series[0].Complete)
	assert.Equal(t, float64(11), resp.Series[1].Value)
	assert.True(t, resp.Series[1].Complete)
	// new cases moved 12 -> 15 on the latest two days
	assert.Equal(t, float64(25), resp.ChangeRate)
}

func TestCountryTimeSeriesUnparsableQuery(t *testing.T) {
	s := testServer(&fakeMongoStore{})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/countries/:isoCode/timeseries", s.countryTimeSeries)

	req := httptest.NewRequest("GET", "/countries/KEN/timeseries?since=abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1011), resp.Code)
}

func TestCountryTimeSeriesUnknownCountry(t *testing.T) {
	s := testServer(&fakeMongoStore{})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/countries/:isoCode/timeseries", s.countryTimeSeries)

	req := httptest.NewRequest("GET", "/countries/FRA/timeseries", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1100), resp.Code)
}

func TestCountryTimeSeriesUnknownMetric(t *testing.T) {
	s := testServer(&fakeMongoStore{})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/countries/:isoCode/timeseries", s.countryTimeSeries)

	req := httptest.NewRequest("GET", "/countries/KEN/timeseries?metric=nonsense", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1102), resp.Code)
}

func TestCompareCountriesLatest(t *testing.T) {
	f := &fakeMongoStore{
		snapshots: []schema.CountrySnapshot{
			schema.NewCountrySnapshot(apiRecord("Kenya", "KEN", "2021-01-03", 150, 3)),
			schema.NewCountrySnapshot(apiRecord("Germany", "DEU", "2021-01-03", 2000, 40)),
		},
	}
	s := testServer(f)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/compare", s.compareCountries)

	req := httptest.NewRequest("GET", "/compare?metric=total_cases", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Metric    string `json:"metric"`
		Countries []struct {
			Country string  `json:"country"`
			ISOCode string  `json:"iso_code"`
			Value   float64 `json:"value"`
		} `json:"countries"`
	}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Countries, 2)
	// sorted by value, descending
	assert.Equal(t, "DEU", resp.Countries[0].ISOCode)
	assert.Equal(t, float64(2000), resp.Countries[0].Value)
	assert.Equal(t, "KEN", resp.Countries[1].ISOCode)
}

func TestCompareCountriesEmptyDataset(t *testing.T) {
	s := testServer(&fakeMongoStore{})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/compare", s.compareCountries)

	req := httptest.NewRequest("GET", "/compare", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp ErrorResponse
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1101), resp.Code)
}

func TestGetInsights(t *testing.T) {
	f := &fakeMongoStore{
		snapshots: []schema.CountrySnapshot{
			schema.NewCountrySnapshot(apiRecord("Kenya", "KEN", "2021-01-03", 150, 3)),
		},
		firsts: map[string]schema.CovidRecord{
			"KEN": apiRecord("Kenya", "KEN", "2021-01-01", 1, 0),
		},
	}
	s := testServer(f)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/insights", s.getInsights)

	req := httptest.NewRequest("GET", "/insights", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Insights struct {
			AsOf       string  `json:"as_of"`
			TotalCases float64 `json:"total_cases"`
			Spans      []struct {
				ISOCode string `json:"iso_code"`
				Days    int    `json:"days"`
			} `json:"reporting_spans"`
		} `json:"insights"`
	}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2021-01-03", resp.Insights.AsOf)
	assert.Equal(t, float64(150), resp.Insights.TotalCases)
	assert.Len(t, resp.Insights.Spans, 1)
	assert.Equal(t, 2, resp.Insights.Spans[0].Days)
}

func TestHealthz(t *testing.T) {
	s := testServer(&fakeMongoStore{})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/healthz", s.healthz)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
