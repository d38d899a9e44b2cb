package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Clark-Hu/movie-etl/internal/config"
	"github.com/Clark-Hu/movie-etl/internal/logging"
	"github.com/Clark-Hu/movie-etl/internal/omdb"
	"github.com/Clark-Hu/movie-etl/internal/pipeline"
	"github.com/Clark-Hu/movie-etl/internal/report"
	"github.com/Clark-Hu/movie-etl/internal/repository"
	"github.com/Clark-Hu/movie-etl/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	base, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	runID := uuid.NewString()
	logger := base.WithField("run_id", runID)

	connTimeout := time.Duration(cfg.DBConnTimeoutSecs) * time.Second
	openStore := func(ctx context.Context) (repository.Loader, func(), error) {
		dbCtx, cancel := context.WithTimeout(ctx, connTimeout)
		defer cancel()
		return repository.Open(dbCtx, cfg.DBURL, store.Options{
			MaxConns:               int32(cfg.DBMaxConns),
			ConnTimeout:            connTimeout,
			StatementCacheCapacity: cfg.DBStatementCache,
			Logger:                 logger,
		})
	}

	client, err := omdb.NewHTTPClient(cfg.OMDBBaseURL, cfg.OMDBAPIKey, time.Duration(cfg.OMDBTimeoutSecs)*time.Second, logger)
	if err != nil {
		logger.WithError(err).Fatal("init omdb client")
	}
	limiter := omdb.FixedDelay{Delay: time.Duration(cfg.OMDBDelayMillis) * time.Millisecond}
	fetcher := omdb.NewFetcher(client, limiter, logger)

	job := pipeline.NewJob(
		pipeline.NewEnricher(fetcher, cfg.ProgressEvery, logger),
		openStore,
		pipeline.Options{MoviesCSV: cfg.MoviesCSV, RatingsCSV: cfg.RatingsCSV},
		logger,
	)

	logger.WithFields(logrus.Fields{
		"movies_csv":  cfg.MoviesCSV,
		"ratings_csv": cfg.RatingsCSV,
	}).Info("starting ETL run")

	summary, runErr := job.Run(ctx, runID)
	if err := report.Render(os.Stdout, summary, runErr); err != nil {
		logger.WithError(err).Warn("render summary")
	}
	if runErr != nil {
		logger.WithError(runErr).WithField("stage", summary.Stage).Fatal("ETL run failed")
	}
}
