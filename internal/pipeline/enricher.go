package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Clark-Hu/movie-etl/internal/domain"
	"github.com/Clark-Hu/movie-etl/internal/omdb"
	"github.com/Clark-Hu/movie-etl/internal/title"
)

// DefaultProgressEvery is the logging interval used when none is configured.
const DefaultProgressEvery = 500

// Resolver looks up provider metadata for a normalized title.
type Resolver interface {
	Lookup(ctx context.Context, title string, year *int) omdb.Outcome
}

// Stats counts how catalog records were resolved.
type Stats struct {
	Total      int
	FirstTry   int
	Fallback   int
	Unresolved int
}

// Enricher merges provider metadata into catalog records one at a time.
type Enricher struct {
	resolver      Resolver
	logger        logrus.FieldLogger
	progressEvery int
}

// NewEnricher builds an Enricher. progressEvery <= 0 uses DefaultProgressEvery.
func NewEnricher(resolver Resolver, progressEvery int, logger logrus.FieldLogger) *Enricher {
	if progressEvery <= 0 {
		progressEvery = DefaultProgressEvery
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Enricher{resolver: resolver, logger: logger, progressEvery: progressEvery}
}

// Run enriches records in input order and returns exactly one EnrichedMovie per
// record. Lookup failures leave the enrichment fields nil. The only error is
// context cancellation, in which case the records processed so far are returned.
func (e *Enricher) Run(ctx context.Context, records []domain.CatalogRecord) ([]domain.EnrichedMovie, Stats, error) {
	movies := make([]domain.EnrichedMovie, 0, len(records))
	var stats Stats

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return movies, stats, fmt.Errorf("enrichment interrupted after %d of %d records: %w", i, len(records), err)
		}

		movie := domain.EnrichedMovie{CatalogRecord: record}
		normalized := title.Normalize(record.Title)
		outcome := e.resolver.Lookup(ctx, normalized.SearchTitle, normalized.YearHint)

		stats.Total++
		switch {
		case outcome.Result == nil:
			stats.Unresolved++
		case outcome.Fallback:
			stats.Fallback++
			movie.Merge(*outcome.Result)
		default:
			stats.FirstTry++
			movie.Merge(*outcome.Result)
		}
		movies = append(movies, movie)

		if stats.Total%e.progressEvery == 0 {
			e.logger.WithFields(logrus.Fields{
				"processed":  stats.Total,
				"total":      len(records),
				"unresolved": stats.Unresolved,
			}).Info("enrichment progress")
		}
	}

	if err := ctx.Err(); err != nil {
		return movies, stats, fmt.Errorf("enrichment interrupted: %w", err)
	}
	return movies, stats, nil
}
