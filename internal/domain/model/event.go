package model

import "time"

// Event catalog categories used by list filters. "upcoming" is the
// conventional candidate set for recommendations.
const (
	CategoryUpcoming = "upcoming"
	CategoryPast     = "past"
	CategoryAll      = "all"
)

// Event represents a listed activity users can discover and join.
// The recommendation core only reads these fields; event lifecycle is
// owned by the event source.
type Event struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Sport      string    `json:"sport"`
	Location   string    `json:"location"`
	EventType  string    `json:"event_type"` // e.g. "tournament", "training", "social"
	StartTime  time.Time `json:"start_time"`
	IsTrending bool      `json:"is_trending"`
}

// EventFilter narrows event listings.
type EventFilter struct {
	Category string // upcoming, past, all
	Sport    string // exact sport name, empty matches all
	Location string // exact location name, empty matches all
}
