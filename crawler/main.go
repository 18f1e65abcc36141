package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Mufasa1738-maina/covid-tracker/external/owid"
	"github.com/Mufasa1738-maina/covid-tracker/schema"
	"github.com/Mufasa1738-maina/covid-tracker/store"
)

const (
	logPrefix       = "cron"
	defaultTimeout  = 15 * time.Second
	defaultSchedule = "03:00"
)

type Cron interface {
	Run()
}

func init() {
	viper.AutomaticEnv()
	viper.SetEnvPrefix("covidtracker")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

func initLog() {
	logLevel, err := log.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(logLevel)
	}

	log.SetOutput(os.Stdout)

	log.SetFormatter(&prefixed.TextFormatter{
		ForceFormatting: true,
		FullTimestamp:   true,
	})
}

func loadConfig(file string) {
	// Config from file
	viper.SetConfigType("yaml")
	if file != "" {
		viper.SetConfigFile(file)
	}

	viper.AddConfigPath("/.config/")
	viper.AddConfigPath(".")
	err := viper.ReadInConfig()
	if err != nil {
		fmt.Println("No config file. Read config from env.")
		viper.AllowEmptyEnv(false)
	}

	// Config from env if possible
	viper.AutomaticEnv()
	viper.SetEnvPrefix("covidtracker")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

func main() {
	var configFile string
	var localFile string
	var once bool

	flag.StringVar(&configFile, "c", "./config.yaml", "[optional] path of configuration file")
	flag.StringVar(&localFile, "f", "", "[optional] ingest a local dataset file instead of downloading")
	flag.BoolVar(&once, "once", false, "[optional] run a single ingest and exit")
	flag.Parse()

	loadConfig(configFile)

	initLog()

	// initialise mongodb connections
	opts := options.Client().ApplyURI(viper.GetString("mongo.conn"))
	opts.SetMaxPoolSize(viper.GetUint64("mongo.pool"))
	mongoClient, err := mongo.NewClient(opts)
	if nil != err {
		log.Panicf("create mongo client with error: %s", err)
	}

	err = mongoClient.Connect(context.Background())
	if nil != err {
		log.Panicf("connect mongo database with error: %s", err)
	}

	mStore := store.NewMongoStore(
		mongoClient,
		viper.GetString("mongo.database"),
	)

	schema.NewMongoDBIndexer(viper.GetString("mongo.conn"), viper.GetString("mongo.database")).IndexAll()

	countries := schema.FilterTracked(schema.DefaultTrackedCountries, viper.GetStringSlice("tracker.countries"))
	httpClient := &http.Client{
		Timeout: 5 * time.Minute,
	}
	dataset := owid.New(viper.GetString("owid.url"), httpClient, countries)

	ingest := newIngest(mStore, dataset, localFile)

	if once {
		ingest.Run()
		shutdown(mongoClient)
		return
	}

	schedule := viper.GetString("crawler.schedule")
	if schedule == "" {
		schedule = defaultSchedule
	}

	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Every(1).Day().At(schedule).Do(ingest.Run); err != nil {
		log.Panicf("schedule ingest job with error: %s", err)
	}
	scheduler.StartAsync()
	log.WithFields(log.Fields{"prefix": logPrefix, "at": schedule}).Info("daily ingest scheduled")

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Info("Crawler is preparing to shutdown")
	scheduler.Stop()
	shutdown(mongoClient)
}

func shutdown(mongoClient *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if mongoClient != nil {
		log.Info("Shutting down mongo store")
		_ = mongoClient.Disconnect(ctx)
	}
}
