package coerce

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/movie-etl/internal/domain"
)

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }

func TestMoviesFillsMissingValues(t *testing.T) {
	director := "Pete Docter"
	movies := []domain.EnrichedMovie{
		{
			CatalogRecord: domain.CatalogRecord{MovieID: 1, Title: "Up (2009)", Genres: "Animation"},
			Director:      &director,
			BoxOffice:     i64(293004164),
			ReleaseYear:   i64(2009),
			Decade:        i64(2000),
		},
		{CatalogRecord: domain.CatalogRecord{MovieID: 2, Title: "Unknown (1901)", Genres: "Drama"}},
	}

	rows, err := Movies(movies)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, domain.MovieRow{
		MovieID:     1,
		Title:       "Up (2009)",
		Genres:      "Animation",
		Director:    &director,
		BoxOffice:   293004164,
		ReleaseYear: 2009,
		Decade:      2000,
	}, rows[0])

	assert.Nil(t, rows[1].Director)
	assert.Nil(t, rows[1].Plot)
	assert.Zero(t, rows[1].BoxOffice)
	assert.Zero(t, rows[1].ReleaseYear)
	assert.Zero(t, rows[1].Decade)
}

func TestMoviesLargeBoxOfficeKeepsPrecision(t *testing.T) {
	rows, err := Movies([]domain.EnrichedMovie{{BoxOffice: i64(math.MaxInt64)}})
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), rows[0].BoxOffice)
}

func TestMoviesRejectsOverflow(t *testing.T) {
	_, err := Movies([]domain.EnrichedMovie{{
		CatalogRecord: domain.CatalogRecord{MovieID: 7},
		ReleaseYear:   i64(40000),
	}})
	require.ErrorIs(t, err, ErrOutOfRange)
	assert.Contains(t, err.Error(), "release_year")
	assert.Contains(t, err.Error(), "movie 7")
}

func TestRatings(t *testing.T) {
	rows, err := Ratings([]domain.RatingRecord{
		{UserID: 1, MovieID: 1, Rating: f64(4.5), Timestamp: i64(964982703)},
		{UserID: 2, MovieID: 3},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.RatingRow{UserID: 1, MovieID: 1, Rating: 4.5, UnixTimestamp: 964982703}, rows[0])
	assert.Equal(t, domain.RatingRow{UserID: 2, MovieID: 3}, rows[1])
}

func TestRatingsRejectsNaN(t *testing.T) {
	_, err := Ratings([]domain.RatingRecord{{Rating: f64(math.NaN())}})
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestNarrowRefusesNull(t *testing.T) {
	for _, width := range []Width{Int64, Int16, Float32} {
		_, err := narrow(nil, width)
		assert.ErrorIs(t, err, ErrNullNarrowing, "width %s", width)
	}
}

func TestNarrowRefusesFloatIntoIntegerColumn(t *testing.T) {
	_, err := narrow(floatValue(f64(1.5)), Int16)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestSchema(t *testing.T) {
	want := []ColumnSpec{
		{Table: "movies", Column: "box_office", Width: Int64},
		{Table: "movies", Column: "release_year", Width: Int16},
		{Table: "movies", Column: "decade", Width: Int16},
		{Table: "ratings", Column: "rating", Width: Float32},
		{Table: "ratings", Column: "unix_timestamp", Width: Int64},
	}
	assert.Equal(t, want, Schema())
}
