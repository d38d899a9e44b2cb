package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-etl/internal/domain"
)

// RatingsRepository writes and reads the ratings table.
type RatingsRepository struct {
	pool *pgxpool.Pool
}

const createRatingsTable = `
    CREATE TABLE ratings (
        "userId"       BIGINT NOT NULL,
        "movieId"      BIGINT NOT NULL,
        rating         REAL   NOT NULL,
        unix_timestamp BIGINT NOT NULL
    )
`

var ratingColumns = []string{"userId", "movieId", "rating", "unix_timestamp"}

// Replace drops and recreates the ratings table, then bulk-copies rows into it.
func (r *RatingsRepository) Replace(ctx context.Context, rows []domain.RatingRow) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin ratings load: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DROP TABLE IF EXISTS ratings`); err != nil {
		return 0, fmt.Errorf("drop ratings: %w", err)
	}
	if _, err := tx.Exec(ctx, createRatingsTable); err != nil {
		return 0, fmt.Errorf("create ratings: %w", err)
	}

	copied, err := tx.CopyFrom(ctx, pgx.Identifier{"ratings"}, ratingColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{r.UserID, r.MovieID, r.Rating, r.UnixTimestamp}, nil
		}))
	if err != nil {
		return 0, fmt.Errorf("copy ratings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit ratings load: %w", err)
	}
	return copied, nil
}

// Count returns the number of rows in the ratings table.
func (r *RatingsRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ratings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ratings: %w", err)
	}
	return n, nil
}
