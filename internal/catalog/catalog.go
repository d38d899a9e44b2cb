// Package catalog reads the movie catalog and ratings CSV files.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Clark-Hu/movie-etl/internal/domain"
)

// ErrHeader is returned when a file does not start with the expected columns.
var ErrHeader = errors.New("catalog: unexpected header")

var (
	movieHeader  = []string{"movieId", "title", "genres"}
	ratingHeader = []string{"userId", "movieId", "rating", "timestamp"}
)

// ReadMoviesFile opens path and parses it as a movie catalog.
func ReadMoviesFile(path string) ([]domain.CatalogRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open movies file: %w", err)
	}
	defer f.Close()
	return ReadMovies(f)
}

// ReadMovies parses a catalog with columns movieId,title,genres.
func ReadMovies(r io.Reader) ([]domain.CatalogRecord, error) {
	var out []domain.CatalogRecord
	err := readRows(r, movieHeader, func(line int, row []string) error {
		id, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: movieId: %w", line, err)
		}
		out = append(out, domain.CatalogRecord{
			MovieID: id,
			Title:   row[1],
			Genres:  row[2],
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadRatingsFile opens path and parses it as a ratings file.
func ReadRatingsFile(path string) ([]domain.RatingRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ratings file: %w", err)
	}
	defer f.Close()
	return ReadRatings(f)
}

// ReadRatings parses ratings with columns userId,movieId,rating,timestamp.
// Empty rating or timestamp cells are kept as nil.
func ReadRatings(r io.Reader) ([]domain.RatingRecord, error) {
	var out []domain.RatingRecord
	err := readRows(r, ratingHeader, func(line int, row []string) error {
		userID, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: userId: %w", line, err)
		}
		movieID, err := strconv.ParseInt(strings.TrimSpace(row[1]), 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: movieId: %w", line, err)
		}
		rec := domain.RatingRecord{UserID: userID, MovieID: movieID}
		if v := strings.TrimSpace(row[2]); v != "" {
			rating, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("line %d: rating: %w", line, err)
			}
			rec.Rating = &rating
		}
		if v := strings.TrimSpace(row[3]); v != "" {
			ts, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("line %d: timestamp: %w", line, err)
			}
			rec.Timestamp = &ts
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func readRows(r io.Reader, header []string, fn func(line int, row []string) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(header)
	reader.ReuseRecord = true

	first, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty file", ErrHeader)
		}
		return fmt.Errorf("read header: %w", err)
	}
	for i, name := range header {
		got := strings.TrimSpace(strings.TrimPrefix(first[i], "\ufeff"))
		if got != name {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrHeader, i+1, got, name)
		}
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if err := fn(line, row); err != nil {
			return err
		}
	}
}
