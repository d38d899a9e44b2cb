// Package coerce converts enriched records into the exact column types of the
// output tables.
//
// Every numeric column is declared once in a rule table. Values pass through
// two steps: fill (a missing value becomes 0) and narrow (cast to the column
// width). narrow refuses nil and out-of-range input, so a column that skipped
// the fill step fails instead of being written as a silent zero.
package coerce

import (
	"errors"
	"fmt"
	"math"

	"github.com/Clark-Hu/movie-etl/internal/domain"
)

var (
	// ErrNullNarrowing is returned when a missing value reaches the cast step.
	ErrNullNarrowing = errors.New("coerce: cannot narrow a null value")
	// ErrOutOfRange is returned when a value does not fit its column width.
	ErrOutOfRange = errors.New("coerce: value out of range")
)

// Width is the storage type of a numeric column.
type Width int

const (
	Int64 Width = iota
	Int16
	Float32
)

func (w Width) String() string {
	switch w {
	case Int64:
		return "int64"
	case Int16:
		return "int16"
	case Float32:
		return "float32"
	default:
		return fmt.Sprintf("width(%d)", int(w))
	}
}

// value is a column value between the fill and narrow steps.
type value struct {
	i       int64
	f       float64
	isFloat bool
}

func intValue(v *int64) *value {
	if v == nil {
		return nil
	}
	return &value{i: *v}
}

func floatValue(v *float64) *value {
	if v == nil {
		return nil
	}
	return &value{f: *v, isFloat: true}
}

// rule describes how one numeric column is read, filled, narrowed and written.
type rule[S any, R any] struct {
	Column string
	Width  Width
	Read   func(S) *value
	Write  func(*R, value)
}

var movieColumns = []rule[domain.EnrichedMovie, domain.MovieRow]{
	{
		Column: "box_office",
		Width:  Int64,
		Read:   func(m domain.EnrichedMovie) *value { return intValue(m.BoxOffice) },
		Write:  func(r *domain.MovieRow, v value) { r.BoxOffice = v.i },
	},
	{
		Column: "release_year",
		Width:  Int16,
		Read:   func(m domain.EnrichedMovie) *value { return intValue(m.ReleaseYear) },
		Write:  func(r *domain.MovieRow, v value) { r.ReleaseYear = int16(v.i) },
	},
	{
		Column: "decade",
		Width:  Int16,
		Read:   func(m domain.EnrichedMovie) *value { return intValue(m.Decade) },
		Write:  func(r *domain.MovieRow, v value) { r.Decade = int16(v.i) },
	},
}

var ratingColumns = []rule[domain.RatingRecord, domain.RatingRow]{
	{
		Column: "rating",
		Width:  Float32,
		Read:   func(r domain.RatingRecord) *value { return floatValue(r.Rating) },
		Write:  func(row *domain.RatingRow, v value) { row.Rating = float32(v.f) },
	},
	{
		Column: "unix_timestamp",
		Width:  Int64,
		Read:   func(r domain.RatingRecord) *value { return intValue(r.Timestamp) },
		Write:  func(row *domain.RatingRow, v value) { row.UnixTimestamp = v.i },
	},
}

// Movies converts enriched movies into movies table rows.
func Movies(movies []domain.EnrichedMovie) ([]domain.MovieRow, error) {
	rows := make([]domain.MovieRow, 0, len(movies))
	for _, m := range movies {
		row := domain.MovieRow{
			MovieID:  m.MovieID,
			Title:    m.Title,
			Genres:   m.Genres,
			Director: m.Director,
			Plot:     m.Plot,
		}
		if err := apply(movieColumns, m, &row); err != nil {
			return nil, fmt.Errorf("movie %d: %w", m.MovieID, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Ratings converts rating records into ratings table rows, renaming
// timestamp to unix_timestamp.
func Ratings(ratings []domain.RatingRecord) ([]domain.RatingRow, error) {
	rows := make([]domain.RatingRow, 0, len(ratings))
	for i, r := range ratings {
		row := domain.RatingRow{UserID: r.UserID, MovieID: r.MovieID}
		if err := apply(ratingColumns, r, &row); err != nil {
			return nil, fmt.Errorf("rating %d (user %d, movie %d): %w", i, r.UserID, r.MovieID, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func apply[S any, R any](rules []rule[S, R], src S, dst *R) error {
	for _, col := range rules {
		v, err := narrow(fill(col.Read(src)), col.Width)
		if err != nil {
			return fmt.Errorf("%s: %w", col.Column, err)
		}
		col.Write(dst, v)
	}
	return nil
}

// fill replaces a missing value with 0.
func fill(v *value) *value {
	if v == nil {
		return &value{}
	}
	return v
}

// narrow checks that v is present and representable in width.
func narrow(v *value, width Width) (value, error) {
	if v == nil {
		return value{}, ErrNullNarrowing
	}
	switch width {
	case Int64:
		if v.isFloat {
			return value{}, fmt.Errorf("%w: %v is not an integer", ErrOutOfRange, v.f)
		}
		return *v, nil
	case Int16:
		if v.isFloat {
			return value{}, fmt.Errorf("%w: %v is not an integer", ErrOutOfRange, v.f)
		}
		if v.i < math.MinInt16 || v.i > math.MaxInt16 {
			return value{}, fmt.Errorf("%w: %d does not fit %s", ErrOutOfRange, v.i, width)
		}
		return *v, nil
	case Float32:
		f := v.f
		if !v.isFloat {
			f = float64(v.i)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxFloat32 {
			return value{}, fmt.Errorf("%w: %v does not fit %s", ErrOutOfRange, f, width)
		}
		return value{f: f, isFloat: true}, nil
	default:
		return value{}, fmt.Errorf("coerce: unknown width %s", width)
	}
}

// ColumnSpec names a coerced numeric column and its storage width.
type ColumnSpec struct {
	Table  string
	Column string
	Width  Width
}

// Schema lists every numeric column handled by the rule tables.
func Schema() []ColumnSpec {
	specs := make([]ColumnSpec, 0, len(movieColumns)+len(ratingColumns))
	for _, r := range movieColumns {
		specs = append(specs, ColumnSpec{Table: "movies", Column: r.Column, Width: r.Width})
	}
	for _, r := range ratingColumns {
		specs = append(specs, ColumnSpec{Table: "ratings", Column: r.Column, Width: r.Width})
	}
	return specs
}
