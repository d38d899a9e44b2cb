package omdb

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/Clark-Hu/movie-etl/internal/domain"
)

type lookupState int

const (
	stateInit lookupState = iota
	stateRetrying
	stateDone
)

// Outcome describes how a lookup was resolved.
type Outcome struct {
	Result   *domain.EnrichmentResult
	Attempts int
	Fallback bool
}

// Fetcher wraps a Client with pacing, the year-less fallback and field extraction.
// Failures are logged and reported as a nil result, never returned.
type Fetcher struct {
	client  Client
	limiter Limiter
	logger  logrus.FieldLogger
}

// NewFetcher builds a Fetcher. A nil limiter disables pacing.
func NewFetcher(client Client, limiter Limiter, logger logrus.FieldLogger) *Fetcher {
	if limiter == nil {
		limiter = NoDelay
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Fetcher{client: client, limiter: limiter, logger: logger}
}

// Fetch returns the enrichment fields for title, or nil when nothing was found.
func (f *Fetcher) Fetch(ctx context.Context, title string, year *int) *domain.EnrichmentResult {
	return f.Lookup(ctx, title, year).Result
}

// Lookup runs the primary call and at most one fallback call without the year.
func (f *Fetcher) Lookup(ctx context.Context, title string, year *int) Outcome {
	var out Outcome
	log := f.logger.WithField("title", title)

	state := stateInit
	for state != stateDone {
		switch state {
		case stateInit:
			payload, err := f.call(ctx, title, year, &out)
			switch {
			case err == nil:
				out.Result = toResult(payload)
				state = stateDone
			case errors.Is(err, ErrNotFound) && year != nil:
				log.WithField("year", *year).Debug("omdb: not found with year, retrying without")
				state = stateRetrying
			default:
				logFailure(log, err)
				state = stateDone
			}
		case stateRetrying:
			payload, err := f.call(ctx, title, nil, &out)
			out.Fallback = true
			if err != nil {
				logFailure(log, err)
			} else {
				out.Result = toResult(payload)
			}
			state = stateDone
		}
	}
	return out
}

// call waits for the limiter and performs one provider lookup. Only lookups
// that reach the client count as attempts.
func (f *Fetcher) call(ctx context.Context, title string, year *int, out *Outcome) (*Payload, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	out.Attempts++
	return f.client.Lookup(ctx, title, year)
}

func logFailure(log logrus.FieldLogger, err error) {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoMatch) {
		log.WithError(err).Debug("omdb: no result")
		return
	}
	log.WithError(err).Warn("omdb: lookup failed")
}
