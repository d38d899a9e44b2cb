package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/Clark-Hu/movie-etl/internal/domain"
	"github.com/Clark-Hu/movie-etl/internal/store"
)

// ErrUnknownTable indicates a table name outside the output schema.
var ErrUnknownTable = errors.New("repository: unknown table")

// Table names an output table.
type Table string

const (
	TableRatings Table = "ratings"
	TableMovies  Table = "movies"
)

// Loader fully replaces the contents of the output tables. Each call is its
// own unit of work; no transaction spans both tables.
type Loader interface {
	ReplaceRatings(ctx context.Context, rows []domain.RatingRow) (int64, error)
	ReplaceMovies(ctx context.Context, rows []domain.MovieRow) (int64, error)
	Count(ctx context.Context, table Table) (int64, error)
}

// Repository aggregates the Postgres-backed table repositories.
type Repository struct {
	Movies  *MoviesRepository
	Ratings *RatingsRepository
}

var _ Loader = (*Repository)(nil)

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Movies:  &MoviesRepository{pool: pool},
		Ratings: &RatingsRepository{pool: pool},
	}
}

// ReplaceRatings implements Loader.
func (r *Repository) ReplaceRatings(ctx context.Context, rows []domain.RatingRow) (int64, error) {
	return r.Ratings.Replace(ctx, rows)
}

// ReplaceMovies implements Loader.
func (r *Repository) ReplaceMovies(ctx context.Context, rows []domain.MovieRow) (int64, error) {
	return r.Movies.Replace(ctx, rows)
}

// Count implements Loader.
func (r *Repository) Count(ctx context.Context, table Table) (int64, error) {
	switch table {
	case TableMovies:
		return r.Movies.Count(ctx)
	case TableRatings:
		return r.Ratings.Count(ctx)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
}

// Open connects to the store named by dbURL. postgres:// and postgresql://
// URLs use the pgx pool; sqlite://<path> uses an embedded SQLite file.
// The returned close function releases the connection.
func Open(ctx context.Context, dbURL string, opts store.Options) (Loader, func(), error) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	switch {
	case strings.HasPrefix(dbURL, "postgres://"), strings.HasPrefix(dbURL, "postgresql://"):
		st, err := store.New(ctx, dbURL, opts)
		if err != nil {
			return nil, nil, err
		}
		return New(st), st.Close, nil
	case strings.HasPrefix(dbURL, sqliteScheme):
		loader, err := OpenSQLite(ctx, strings.TrimPrefix(dbURL, sqliteScheme), logger)
		if err != nil {
			return nil, nil, err
		}
		return loader, func() { _ = loader.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported DB_URL scheme in %q", redact(dbURL))
	}
}

// redact drops everything after the scheme so credentials never reach logs.
func redact(dbURL string) string {
	if idx := strings.Index(dbURL, "://"); idx >= 0 {
		return dbURL[:idx+3] + "..."
	}
	return "..."
}
