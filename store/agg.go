package store

import (
	"go.mongodb.org/mongo-driver/bson"
)

func matchTimeSeries(isoCode string, since, until int64) bson.M {
	ts := bson.M{}
	if since > 0 {
		ts["$gte"] = since
	}
	if until > 0 {
		ts["$lte"] = until
	}

	filter := bson.M{"iso_code": isoCode}
	if len(ts) > 0 {
		filter["report_ts"] = ts
	}
	return filter
}

func matchReportedCase(isoCode string) bson.M {
	return bson.M{
		"iso_code":    isoCode,
		"total_cases": bson.M{"$gt": 0},
	}
}

// latestPerCountryPipeline picks the newest record of every country.
/*
[
	{"$sort": {"report_ts": -1}},
	{"$group": {"_id": "$iso_code", "record": {"$first": "$$ROOT"}}},
	{"$replaceRoot": {"newRoot": "$record"}},
	{"$sort": {"country": 1}}
]
*/
func latestPerCountryPipeline() []bson.M {
	return []bson.M{
		{"$sort": bson.M{"report_ts": -1}},
		{"$group": bson.M{
			"_id":    "$iso_code",
			"record": bson.M{"$first": "$$ROOT"},
		}},
		{"$replaceRoot": bson.M{"newRoot": "$record"}},
		{"$sort": bson.M{"country": 1}},
	}
}
