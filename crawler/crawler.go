package main

import (
	log "github.com/sirupsen/logrus"

	"github.com/Mufasa1738-maina/covid-tracker/external/owid"
	"github.com/Mufasa1738-maina/covid-tracker/schema"
	"github.com/Mufasa1738-maina/covid-tracker/store"
)

type owidIngest struct {
	mongoStore store.MongoStore
	dataset    owid.OWID
	localFile  string
}

func (c owidIngest) Run() {
	var records []schema.CovidRecord
	var err error

	if c.localFile != "" {
		records, err = c.dataset.FetchFile(c.localFile)
	} else {
		records, err = c.dataset.Fetch()
	}
	if nil != err {
		log.WithFields(log.Fields{
			"prefix": logPrefix,
			"error":  err,
		}).Error("data from OWID")
		return
	}

	log.WithFields(log.Fields{
		"prefix":  logPrefix,
		"records": len(records),
	}).Debug("data from OWID")

	count, err := c.mongoStore.UpsertRecords(records)
	if nil != err {
		log.WithFields(log.Fields{
			"prefix": logPrefix,
			"error":  err,
		}).Error("upsert covid records")
		return
	}

	log.WithFields(log.Fields{
		"prefix":  logPrefix,
		"records": count,
	}).Info("covid dataset refreshed")
}

// newIngest - new cron job for the daily dataset refresh
func newIngest(mongoStore store.MongoStore, dataset owid.OWID, localFile string) Cron {
	return &owidIngest{
		mongoStore: mongoStore,
		dataset:    dataset,
		localFile:  localFile,
	}
}
