package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/Clark-Hu/movie-etl/internal/domain"
)

const sqliteScheme = "sqlite://"

// SQLiteLoader writes the output tables into an SQLite database file.
type SQLiteLoader struct {
	db     *sql.DB
	logger logrus.FieldLogger
}

var _ Loader = (*SQLiteLoader)(nil)

// OpenSQLite opens (creating if needed) the database at path. ":memory:"
// keeps everything in process memory.
func OpenSQLite(ctx context.Context, path string, logger logrus.FieldLogger) (*SQLiteLoader, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: empty database path")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	logger.WithField("path", path).Info("store: sqlite ready")
	return &SQLiteLoader{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (l *SQLiteLoader) Close() error {
	return l.db.Close()
}

const (
	createRatingsSQLite = `
    CREATE TABLE ratings (
        "userId"       INTEGER NOT NULL,
        "movieId"      INTEGER NOT NULL,
        rating         REAL    NOT NULL,
        unix_timestamp INTEGER NOT NULL
    )`
	insertRatingSQLite = `INSERT INTO ratings ("userId", "movieId", rating, unix_timestamp) VALUES (?, ?, ?, ?)`

	createMoviesSQLite = `
    CREATE TABLE movies (
        "movieId"    INTEGER NOT NULL,
        title        TEXT    NOT NULL,
        genres       TEXT    NOT NULL,
        director     TEXT,
        plot         TEXT,
        box_office   INTEGER NOT NULL,
        release_year INTEGER NOT NULL,
        decade       INTEGER NOT NULL
    )`
	insertMovieSQLite = `INSERT INTO movies ("movieId", title, genres, director, plot, box_office, release_year, decade) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
)

// ReplaceRatings implements Loader.
func (l *SQLiteLoader) ReplaceRatings(ctx context.Context, rows []domain.RatingRow) (int64, error) {
	return replaceSQLite(ctx, l.db, TableRatings, createRatingsSQLite, insertRatingSQLite, len(rows), func(i int) []any {
		r := rows[i]
		// float64(float32) keeps the value the REAL column would hold in Postgres.
		return []any{r.UserID, r.MovieID, float64(r.Rating), r.UnixTimestamp}
	})
}

// ReplaceMovies implements Loader.
func (l *SQLiteLoader) ReplaceMovies(ctx context.Context, rows []domain.MovieRow) (int64, error) {
	return replaceSQLite(ctx, l.db, TableMovies, createMoviesSQLite, insertMovieSQLite, len(rows), func(i int) []any {
		m := rows[i]
		return []any{m.MovieID, m.Title, m.Genres, nullString(m.Director), nullString(m.Plot), m.BoxOffice, int64(m.ReleaseYear), int64(m.Decade)}
	})
}

// Count implements Loader.
func (l *SQLiteLoader) Count(ctx context.Context, table Table) (int64, error) {
	if table != TableMovies && table != TableRatings {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	var n int64
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+string(table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// Movies returns every movie row ordered by movieId.
func (l *SQLiteLoader) Movies(ctx context.Context) ([]domain.MovieRow, error) {
	rows, err := l.db.QueryContext(ctx, `
        SELECT "movieId", title, genres, director, plot, box_office, release_year, decade
        FROM movies
        ORDER BY "movieId"`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.MovieRow
	for rows.Next() {
		var (
			movie          domain.MovieRow
			director, plot sql.NullString
		)
		if err := rows.Scan(&movie.MovieID, &movie.Title, &movie.Genres, &director, &plot,
			&movie.BoxOffice, &movie.ReleaseYear, &movie.Decade); err != nil {
			return nil, err
		}
		if director.Valid {
			movie.Director = &director.String
		}
		if plot.Valid {
			movie.Plot = &plot.String
		}
		results = append(results, movie)
	}
	return results, rows.Err()
}

func replaceSQLite(ctx context.Context, db *sql.DB, table Table, create, insert string, n int, args func(i int) []any) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin %s load: %w", table, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+string(table)); err != nil {
		return 0, fmt.Errorf("drop %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return 0, fmt.Errorf("create %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return 0, fmt.Errorf("prepare %s insert: %w", table, err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return 0, fmt.Errorf("insert %s row %d: %w", table, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit %s load: %w", table, err)
	}
	return int64(n), nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
