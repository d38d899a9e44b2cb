package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Clark-Hu/movie-etl/internal/catalog"
	"github.com/Clark-Hu/movie-etl/internal/coerce"
	"github.com/Clark-Hu/movie-etl/internal/repository"
)

// ErrRowCountMismatch is returned when a table holds a different number of
// rows than were written to it.
var ErrRowCountMismatch = errors.New("pipeline: loaded row count mismatch")

// Stage names the step a Job reached.
type Stage string

const (
	StageRead    Stage = "read"
	StageConnect Stage = "connect"
	StageEnrich  Stage = "enrich"
	StageCoerce  Stage = "coerce"
	StageLoad    Stage = "load"
	StageDone    Stage = "done"
)

// Opener connects to the output store. The returned function releases it.
type Opener func(ctx context.Context) (repository.Loader, func(), error)

// Options configures the input files of a Job.
type Options struct {
	MoviesCSV  string
	RatingsCSV string
}

// Summary reports the outcome of a Job run.
type Summary struct {
	RunID         string
	Stage         Stage
	Movies        int
	Ratings       int
	Enrichment    Stats
	MoviesLoaded  int64
	RatingsLoaded int64
	Started       time.Time
	Duration      time.Duration
}

// Job runs read, connect, enrich, coerce and load end to end.
type Job struct {
	enricher *Enricher
	open     Opener
	opts     Options
	logger   logrus.FieldLogger
}

// NewJob wires a Job. open is called only after both input files were read.
func NewJob(enricher *Enricher, open Opener, opts Options, logger logrus.FieldLogger) *Job {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Job{enricher: enricher, open: open, opts: opts, logger: logger}
}

// Run executes the job. The store is opened after the inputs are validated
// and before enrichment starts, so neither a bad input file nor an unreachable
// store leaves anything behind. The returned Summary is populated up to the
// stage that failed, so callers can report partial progress alongside the error.
func (j *Job) Run(ctx context.Context, runID string) (Summary, error) {
	summary := Summary{RunID: runID, Stage: StageRead, Started: time.Now()}
	finish := func(err error) (Summary, error) {
		summary.Duration = time.Since(summary.Started)
		return summary, err
	}

	records, err := catalog.ReadMoviesFile(j.opts.MoviesCSV)
	if err != nil {
		return finish(fmt.Errorf("read movies: %w", err))
	}
	ratings, err := catalog.ReadRatingsFile(j.opts.RatingsCSV)
	if err != nil {
		return finish(fmt.Errorf("read ratings: %w", err))
	}
	summary.Movies = len(records)
	summary.Ratings = len(ratings)
	j.logger.WithFields(logrus.Fields{
		"movies":  summary.Movies,
		"ratings": summary.Ratings,
	}).Info("CSV files loaded")

	summary.Stage = StageConnect
	loader, closeLoader, err := j.open(ctx)
	if err != nil {
		return finish(fmt.Errorf("connect store: %w", err))
	}
	defer closeLoader()

	summary.Stage = StageEnrich
	enriched, stats, err := j.enricher.Run(ctx, records)
	summary.Enrichment = stats
	if err != nil {
		return finish(err)
	}
	j.logger.WithFields(logrus.Fields{
		"first_try":  stats.FirstTry,
		"fallback":   stats.Fallback,
		"unresolved": stats.Unresolved,
	}).Info("enrichment complete")

	summary.Stage = StageCoerce
	movieRows, err := coerce.Movies(enriched)
	if err != nil {
		return finish(fmt.Errorf("coerce movies: %w", err))
	}
	ratingRows, err := coerce.Ratings(ratings)
	if err != nil {
		return finish(fmt.Errorf("coerce ratings: %w", err))
	}

	summary.Stage = StageLoad
	j.logger.Info("loading ratings")
	summary.RatingsLoaded, err = loader.ReplaceRatings(ctx, ratingRows)
	if err != nil {
		return finish(fmt.Errorf("load ratings: %w", err))
	}
	if err := verify(ctx, loader, repository.TableRatings, int64(len(ratingRows))); err != nil {
		return finish(err)
	}

	j.logger.Info("loading movies")
	summary.MoviesLoaded, err = loader.ReplaceMovies(ctx, movieRows)
	if err != nil {
		return finish(fmt.Errorf("load movies: %w", err))
	}
	if err := verify(ctx, loader, repository.TableMovies, int64(len(movieRows))); err != nil {
		return finish(err)
	}

	summary.Stage = StageDone
	j.logger.WithFields(logrus.Fields{
		"ratings_loaded": summary.RatingsLoaded,
		"movies_loaded":  summary.MoviesLoaded,
	}).Info("finished")
	return finish(nil)
}

func verify(ctx context.Context, loader repository.Loader, table repository.Table, want int64) error {
	got, err := loader.Count(ctx, table)
	if err != nil {
		return fmt.Errorf("verify %s: %w", table, err)
	}
	if got != want {
		return fmt.Errorf("%w: %s has %d rows, wrote %d", ErrRowCountMismatch, table, got, want)
	}
	return nil
}
