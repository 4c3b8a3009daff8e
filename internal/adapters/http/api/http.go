// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/huddleapp/huddle/internal/domain/dedupe"
	"github.com/huddleapp/huddle/internal/domain/insights"
	"github.com/huddleapp/huddle/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes an interaction for async processing. Returns false on backpressure.
	Enqueue(ctx context.Context, in model.Interaction) bool

	// Read operations expose the recommendation engine.
	Recommendations(ctx context.Context, userID string, limit int) []model.Recommendation
	Insights(ctx context.Context, userID string) insights.UserInsights
	Profile(ctx context.Context, userID string) (*model.PreferenceProfile, error)
	ResetProfile(ctx context.Context, userID string) error

	// Event catalog operations.
	ListEvents(ctx context.Context, filter model.EventFilter) ([]model.Event, error)
	CreateEvent(ctx context.Context, e model.Event)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler          *HealthHandler
	statsHandler           *StatsHandler
	interactionsHandler    *InteractionsHandler
	recommendationsHandler *RecommendationsHandler
	insightsHandler        *InsightsHandler
	profileHandler         *ProfileHandler
	eventsHandler          *EventsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:          NewHealthHandler(),
		statsHandler:           NewStatsHandler(statsProvider),
		interactionsHandler:    NewInteractionsHandler(deps),
		recommendationsHandler: NewRecommendationsHandler(deps),
		insightsHandler:        NewInsightsHandler(deps),
		profileHandler:         NewProfileHandler(deps),
		eventsHandler:          NewEventsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/interactions", MetricsMiddleware(s.interactionsHandler.HandlePostInteraction, "interactions"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandleEvents, "events"))
	mux.HandleFunc("/recommendations/", MetricsMiddleware(s.recommendationsHandler.HandleGetRecommendations, "recommendations"))
	mux.HandleFunc("/insights/", MetricsMiddleware(s.insightsHandler.HandleGetInsights, "insights"))
	mux.HandleFunc("/profile/", MetricsMiddleware(s.profileHandler.HandleProfile, "profile"))
}

// interactionRequest mirrors the wire schema for POST /interactions.
type interactionRequest struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	EventID    string            `json:"event_id"`
	Type       string            `json:"type"`
	TS         string            `json:"ts"`
	DurationMS int64             `json:"duration_ms"`
	Metadata   map[string]string `json:"metadata"`
}

func (in interactionRequest) validate() error {
	switch {
	case strings.TrimSpace(in.UserID) == "":
		return errors.New("missing user_id")
	case strings.TrimSpace(in.EventID) == "":
		return errors.New("missing event_id")
	case strings.TrimSpace(in.Type) == "":
		return errors.New("missing type")
	}
	if !model.InteractionType(in.Type).Valid() {
		return errors.New("unknown interaction type")
	}
	if in.TS != "" {
		if _, err := time.Parse(time.RFC3339, in.TS); err != nil {
			return errors.New("invalid ts; must be RFC3339")
		}
	}
	return nil
}

// toModel converts the validated request. The timestamp stays zero when
// absent; the store stamps it on record.
func (in interactionRequest) toModel() model.Interaction {
	var ts time.Time
	if in.TS != "" {
		ts, _ = time.Parse(time.RFC3339, in.TS)
	}
	return model.Interaction{
		ID:       in.ID,
		UserID:   in.UserID,
		EventID:  in.EventID,
		Type:     model.InteractionType(in.Type),
		TS:       ts,
		Duration: time.Duration(in.DurationMS) * time.Millisecond,
		Metadata: in.Metadata,
	}
}

// eventRequest mirrors the wire schema for POST /events.
type eventRequest struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Sport      string `json:"sport"`
	Location   string `json:"location"`
	EventType  string `json:"event_type"`
	StartTime  string `json:"start_time"`
	IsTrending bool   `json:"is_trending"`
}

func (e eventRequest) validate() error {
	switch {
	case strings.TrimSpace(e.Title) == "":
		return errors.New("missing title")
	case strings.TrimSpace(e.StartTime) == "":
		return errors.New("missing start_time")
	}
	if _, err := time.Parse(time.RFC3339, e.StartTime); err != nil {
		return errors.New("invalid start_time; must be RFC3339")
	}
	return nil
}

func (e eventRequest) toModel() model.Event {
	start, _ := time.Parse(time.RFC3339, e.StartTime)
	return model.Event{
		ID:         e.ID,
		Title:      e.Title,
		Sport:      e.Sport,
		Location:   e.Location,
		EventType:  e.EventType,
		StartTime:  start,
		IsTrending: e.IsTrending,
	}
}

type ackResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
