// Package model contains the ingest models passed from the rating list parser to the stores.
package model

import "time"

// Data sources recorded with each stored rating.
const (
	SourceHistorical = "historical"
	SourceAPI        = "api"
)

// RatingEntry is one player line of a monthly rating list.
type RatingEntry struct {
	ID         string // FIDE id
	Name       string
	Federation string // three-letter FIDE code
	Sex        string
	Title      string
	Rating     int
	BirthYear  *int
}

// Snapshot is one monthly rating list.
type Snapshot struct {
	Date    time.Time // first day of the list month, UTC
	Source  string
	Ratings []RatingEntry
}

// Month truncates t to the first day of its month in UTC.
func Month(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// IngestResult reports what a store did with a snapshot.
type IngestResult struct {
	Date       time.Time `json:"date"`
	Stored     int       `json:"stored"`
	Duplicates int       `json:"duplicates"`
	Players    int       `json:"players"`
}
