// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/huddleapp/huddle/internal/domain/insights"
)

// InsightDependencies defines the interface for insight generation.
type InsightDependencies interface {
	Insights(ctx context.Context, userID string) insights.UserInsights
}

// InsightsHandler handles insight requests.
type InsightsHandler struct {
	deps InsightDependencies
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(deps InsightDependencies) *InsightsHandler {
	return &InsightsHandler{deps: deps}
}

// HandleGetInsights handles GET /insights/{user_id} requests.
func (h *InsightsHandler) HandleGetInsights(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_insights"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /insights/
	userID := strings.TrimPrefix(r.URL.Path, "/insights/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	// Generation degrades internally; it always yields a snapshot.
	snapshot := h.deps.Insights(r.Context(), userID)
	writeJSON(w, http.StatusOK, snapshot)
}
