// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/huddleapp/huddle/internal/domain/model"
)

// ProfileDependencies defines the interface for profile reads and resets.
type ProfileDependencies interface {
	Profile(ctx context.Context, userID string) (*model.PreferenceProfile, error)
	ResetProfile(ctx context.Context, userID string) error
}

// ProfileHandler handles preference profile requests.
type ProfileHandler struct {
	deps ProfileDependencies
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(deps ProfileDependencies) *ProfileHandler {
	return &ProfileHandler{deps: deps}
}

// HandleProfile handles GET and DELETE /profile/{user_id} requests.
func (h *ProfileHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.profile"
	// Extract path parameter after /profile/
	userID := strings.TrimPrefix(r.URL.Path, "/profile/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	switch r.Method {
	case http.MethodGet:
		profile, err := h.deps.Profile(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	case http.MethodDelete:
		if err := h.deps.ResetProfile(r.Context(), userID); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err)
			return
		}
		writeJSON(w, http.StatusOK, ackResponse{ID: userID, Status: "reset"})
	default:
		http.NotFound(w, r)
	}
}
