// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/huddleapp/huddle/internal/domain/model"
)

// EventDependencies defines the interface for event catalog access.
type EventDependencies interface {
	ListEvents(ctx context.Context, filter model.EventFilter) ([]model.Event, error)
	CreateEvent(ctx context.Context, e model.Event)
}

// EventsHandler handles event catalog requests.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandleEvents handles GET and POST /events requests.
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		http.NotFound(w, r)
	}
}

// handleList handles GET /events?category=&sport=&location= requests.
func (h *EventsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.EventFilter{
		Category: q.Get("category"),
		Sport:    q.Get("sport"),
		Location: q.Get("location"),
	}
	if filter.Category == "" {
		filter.Category = model.CategoryUpcoming
	}

	events, err := h.deps.ListEvents(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// handleCreate handles POST /events requests.
func (h *EventsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	h.deps.CreateEvent(r.Context(), req.toModel())
	writeJSON(w, http.StatusCreated, ackResponse{ID: req.ID, Status: "created"})
}
