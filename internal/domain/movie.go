package domain

// CatalogRecord is one row of the input movie catalog.
type CatalogRecord struct {
	MovieID int64
	Title   string
	Genres  string
}

// EnrichmentResult contains the provider fields extracted for a single title.
// Zero numeric values mean "unknown".
type EnrichmentResult struct {
	Director    *string
	Plot        *string
	BoxOffice   int64
	ReleaseYear int
}

// EnrichedMovie is a catalog record merged with provider metadata.
// Nil numeric fields were never populated and are filled during coercion.
type EnrichedMovie struct {
	CatalogRecord
	Director    *string
	Plot        *string
	BoxOffice   *int64
	ReleaseYear *int64
	Decade      *int64
}

// Merge copies the provider fields onto the movie and derives the decade bucket.
func (m *EnrichedMovie) Merge(result EnrichmentResult) {
	m.Director = result.Director
	m.Plot = result.Plot

	boxOffice := result.BoxOffice
	m.BoxOffice = &boxOffice

	year := int64(result.ReleaseYear)
	m.ReleaseYear = &year

	decade := DecadeOf(year)
	m.Decade = &decade
}

// DecadeOf rounds a release year down to its decade. Unknown years map to 0.
func DecadeOf(year int64) int64 {
	if year == 0 {
		return 0
	}
	return (year / 10) * 10
}

// MovieRow is the fully typed row persisted to the movies table.
type MovieRow struct {
	MovieID     int64
	Title       string
	Genres      string
	Director    *string
	Plot        *string
	BoxOffice   int64
	ReleaseYear int16
	Decade      int16
}
