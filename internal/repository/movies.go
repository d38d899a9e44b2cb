package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-etl/internal/domain"
)

// MoviesRepository writes and reads the movies table.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const createMoviesTable = `
    CREATE TABLE movies (
        "movieId"    BIGINT   NOT NULL,
        title        TEXT     NOT NULL,
        genres       TEXT     NOT NULL,
        director     TEXT,
        plot         TEXT,
        box_office   BIGINT   NOT NULL,
        release_year SMALLINT NOT NULL,
        decade       SMALLINT NOT NULL
    )
`

var movieColumns = []string{"movieId", "title", "genres", "director", "plot", "box_office", "release_year", "decade"}

// Replace drops and recreates the movies table, then bulk-copies rows into it.
func (r *MoviesRepository) Replace(ctx context.Context, rows []domain.MovieRow) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin movies load: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DROP TABLE IF EXISTS movies`); err != nil {
		return 0, fmt.Errorf("drop movies: %w", err)
	}
	if _, err := tx.Exec(ctx, createMoviesTable); err != nil {
		return 0, fmt.Errorf("create movies: %w", err)
	}

	copied, err := tx.CopyFrom(ctx, pgx.Identifier{"movies"}, movieColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			m := rows[i]
			return []any{m.MovieID, m.Title, m.Genres, m.Director, m.Plot, m.BoxOffice, m.ReleaseYear, m.Decade}, nil
		}))
	if err != nil {
		return 0, fmt.Errorf("copy movies: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit movies load: %w", err)
	}
	return copied, nil
}

// Count returns the number of rows in the movies table.
func (r *MoviesRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM movies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}
	return n, nil
}

// All returns every movie row ordered by movieId.
func (r *MoviesRepository) All(ctx context.Context) ([]domain.MovieRow, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT "movieId", title, genres, director, plot, box_office, release_year, decade
        FROM movies
        ORDER BY "movieId"
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.MovieRow
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMovie(row scanner) (domain.MovieRow, error) {
	var movie domain.MovieRow
	err := row.Scan(
		&movie.MovieID,
		&movie.Title,
		&movie.Genres,
		&movie.Director,
		&movie.Plot,
		&movie.BoxOffice,
		&movie.ReleaseYear,
		&movie.Decade,
	)
	if err != nil {
		return domain.MovieRow{}, err
	}
	return movie, nil
}
