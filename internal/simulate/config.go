package simulate

import "time"

// Config holds configuration for the traffic simulation
type Config struct {
	BaseURL         string        // Base URL of the service
	NumUsers        int           // Number of simulated users
	NumEvents       int           // Number of catalog events to create
	NumInteractions int           // Number of interactions to generate
	TopN            int           // Number of recommendations to fetch per user
	Workers         int           // Number of concurrent workers
	Timeout         time.Duration // HTTP request timeout
	OutputFile      string        // Output file for interactions
	LogFile         string        // Log file for simulation output
	Verbose         bool          // Enable verbose logging
}

// Event represents a catalog event to be created
type Event struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Sport      string `json:"sport"`
	Location   string `json:"location"`
	EventType  string `json:"event_type"`
	StartTime  string `json:"start_time"`
	IsTrending bool   `json:"is_trending"`
}

// Interaction represents a user interaction to be submitted
type Interaction struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	EventID    string `json:"event_id"`
	Type       string `json:"type"`
	TS         string `json:"ts"`
	DurationMS int64  `json:"duration_ms,omitempty"`
}

// Recommendation represents a single scored event from the service
type Recommendation struct {
	Event      Event    `json:"event"`
	Score      float64  `json:"score"`
	Reasons    []Reason `json:"reasons"`
	Confidence float64  `json:"confidence"`
}

// Reason explains why an event was recommended
type Reason struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

// AckResponse represents the response from interaction submission
type AckResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// persona describes a simulated user's habits
type persona struct {
	UserID        string
	FavoriteSport string
	HomeLocation  string
}

// Stats holds simulation statistics
type Stats struct {
	EventsCreated          int
	InteractionsGenerated  int
	InteractionsSubmitted  int
	InteractionsSuccessful int
	InteractionsDuplicate  int
	InteractionsRejected   int
	InteractionsFailed     int
	RecommendationsFetched int
	InsightsFetched        int
	StartTime              time.Time
	EndTime                time.Time
	Duration               time.Duration
}
