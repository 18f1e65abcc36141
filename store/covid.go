package store

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Mufasa1738-maina/covid-tracker/schema"
)

var (
	ErrNoCovidDataset   = fmt.Errorf("no data-set")
	ErrCovidDataFetch   = fmt.Errorf("fetch covid data fail")
	ErrCovidDataDecode  = fmt.Errorf("decode covid data fail")
	ErrNoFirstCaseFound = fmt.Errorf("no reported case for country")
)

// CovidDataset - persistence of the ingested country-day records
type CovidDataset interface {
	UpsertRecords(records []schema.CovidRecord) (int, error)
	GetTimeSeries(isoCode string, since, until int64) ([]schema.CovidRecord, error)
	ListCountries() ([]string, error)
	GetLatestSnapshots() ([]schema.CountrySnapshot, error)
	FirstReportedCase(isoCode string) (*schema.CovidRecord, error)
	DeleteRecordsBefore(isoCode string, timeBefore int64) error
}

func (m *mongoDB) UpsertRecords(records []schema.CovidRecord) (int, error) {
	if len(records) == 0 {
		log.WithField("prefix", mongoLogPrefix).Debug("no record to update")
		return 0, nil
	}

	c := m.client.Database(m.database).Collection(schema.CovidRecordCollection)

	count := 0
	for _, r := range records {
		filter := bson.M{"iso_code": r.ISOCode, "report_ts": r.ReportTime}
		opts := options.Replace().SetUpsert(true)
		_, err := c.ReplaceOne(context.Background(), filter, r, opts)
		if err != nil {
			// a concurrent ingest may upsert the same day first
			if mongo.IsDuplicateKeyError(err) {
				log.WithField("prefix", mongoLogPrefix).Warnf("record update with error: %s", err)
				continue
			}
			return count, err
		}
		count++
	}

	log.WithFields(log.Fields{"prefix": mongoLogPrefix, "records": count}).Debug("UpsertRecords write data")
	return count, nil
}

func (m *mongoDB) GetTimeSeries(isoCode string, since, until int64) ([]schema.CovidRecord, error) {
	c := m.client.Database(m.database).Collection(schema.CovidRecordCollection)
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"report_ts": 1})
	cur, err := c.Find(ctx, matchTimeSeries(isoCode, since, until), opts)
	if err != nil {
		log.WithField("prefix", mongoLogPrefix).Errorf("covid data find error: %s", err)
		return nil, ErrCovidDataFetch
	}

	records := make([]schema.CovidRecord, 0)
	for cur.Next(ctx) {
		var r schema.CovidRecord
		if err := cur.Decode(&r); err != nil {
			return nil, ErrCovidDataDecode
		}
		records = append(records, r)
	}

	return records, nil
}

func (m *mongoDB) ListCountries() ([]string, error) {
	c := m.client.Database(m.database).Collection(schema.CovidRecordCollection)
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	values, err := c.Distinct(ctx, "iso_code", bson.M{})
	if err != nil {
		return nil, ErrCovidDataFetch
	}

	codes := make([]string, 0, len(values))
	for _, v := range values {
		if code, ok := v.(string); ok {
			codes = append(codes, code)
		}
	}
	return codes, nil
}

func (m *mongoDB) GetLatestSnapshots() ([]schema.CountrySnapshot, error) {
	c := m.client.Database(m.database).Collection(schema.CovidRecordCollection)
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	cur, err := c.Aggregate(ctx, latestPerCountryPipeline())
	if err != nil {
		log.WithField("prefix", mongoLogPrefix).Errorf("snapshot aggregate error: %s", err)
		return nil, ErrCovidDataFetch
	}

	snapshots := make([]schema.CountrySnapshot, 0)
	for cur.Next(ctx) {
		var r schema.CovidRecord
		if err := cur.Decode(&r); err != nil {
			return nil, ErrCovidDataDecode
		}
		snapshots = append(snapshots, schema.NewCountrySnapshot(r))
	}
	if len(snapshots) == 0 {
		return nil, ErrNoCovidDataset
	}

	return snapshots, nil
}

func (m *mongoDB) FirstReportedCase(isoCode string) (*schema.CovidRecord, error) {
	c := m.client.Database(m.database).Collection(schema.CovidRecordCollection)
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.M{"report_ts": 1})
	var r schema.CovidRecord
	err := c.FindOne(ctx, matchReportedCase(isoCode), opts).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoFirstCaseFound
	}
	if err != nil {
		return nil, ErrCovidDataFetch
	}

	return &r, nil
}

func (m *mongoDB) DeleteRecordsBefore(isoCode string, timeBefore int64) error {
	c := m.client.Database(m.database).Collection(schema.CovidRecordCollection)

	filter := bson.M{
		"iso_code":  isoCode,
		"report_ts": bson.M{"$lte": timeBefore},
	}
	res, err := c.DeleteMany(context.Background(), filter)
	if err != nil {
		log.WithField("prefix", mongoLogPrefix).Warnf("delete stale records with error: %s", err)
		return err
	}
	log.WithFields(log.Fields{"prefix": mongoLogPrefix, "records": res.DeletedCount}).Debug("DeleteRecordsBefore delete data")
	return nil
}
