package model

// ReasonType labels why an event was recommended.
type ReasonType string

// Reason categories emitted by the scorer.
const (
	ReasonSport    ReasonType = "sport_preference"
	ReasonLocation ReasonType = "location_preference"
	ReasonTrending ReasonType = "trending"
	ReasonTime     ReasonType = "time_preference"
)

// Reason explains one contributing factor of a recommendation.
type Reason struct {
	Type        ReasonType `json:"type"`
	Description string     `json:"description"`
	Weight      float64    `json:"weight"`
}

// Recommendation is a scored, explained candidate event for a user.
// It is ephemeral: computed on demand and held only by the cache.
type Recommendation struct {
	Event      Event    `json:"event"`
	Score      float64  `json:"score"`      // [0,1]
	Reasons    []Reason `json:"reasons"`    // may be empty
	Confidence float64  `json:"confidence"` // [0,1]
}
