package domain

// RatingRecord is one row of the input ratings file. Empty numeric cells are nil.
type RatingRecord struct {
	UserID    int64
	MovieID   int64
	Rating    *float64
	Timestamp *int64
}

// RatingRow is the fully typed row persisted to the ratings table.
type RatingRow struct {
	UserID        int64
	MovieID       int64
	Rating        float32
	UnixTimestamp int64
}
