package scoring

import (
	"context"
	"sort"
	"time"

	"github.com/huddleapp/huddle/internal/domain/model"
	"github.com/huddleapp/huddle/pkg/logger"
	"github.com/huddleapp/huddle/pkg/metrics"
)

// Fallback list constants: a degraded trending-only recommendation when
// the primary pipeline cannot run.
const (
	fallbackScore      = 0.5
	fallbackConfidence = 0.3
)

// ProfileSource loads (or lazily creates) a user's preference profile.
type ProfileSource interface {
	ProfileFor(ctx context.Context, userID string) (*model.PreferenceProfile, error)
}

// EventLister supplies candidate events.
type EventLister interface {
	List(ctx context.Context, filter model.EventFilter) ([]model.Event, error)
}

// HistorySource reads a user's interaction log, used for the novelty factor.
type HistorySource interface {
	ForUser(ctx context.Context, userID string) ([]model.Interaction, error)
}

// Cache memoizes a user's full ranked recommendation list.
type Cache interface {
	Get(userID string) ([]model.Recommendation, bool)
	Put(userID string, recs []model.Recommendation)
}

// Recommender runs the ranked-recommendation pipeline: cache check,
// candidate scoring, stable sort, cache fill.
type Recommender struct {
	scorer   *Scorer
	profiles ProfileSource
	events   EventLister
	history  HistorySource
	cache    Cache
	logger   logger.Logger
}

// RecommenderOption applies a configuration option to the Recommender.
type RecommenderOption func(*Recommender)

// WithRecommenderLogger sets a custom logger.
func WithRecommenderLogger(l logger.Logger) RecommenderOption {
	return func(r *Recommender) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRecommender wires the pipeline dependencies.
func NewRecommender(scorer *Scorer, profiles ProfileSource, events EventLister, history HistorySource, cache Cache, opts ...RecommenderOption) *Recommender {
	r := &Recommender{
		scorer:   scorer,
		profiles: profiles,
		events:   events,
		history:  history,
		cache:    cache,
		logger:   logger.Get().Named("recommender"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recommend returns the user's top recommendations. limit=0 yields an
// empty list; a limit beyond the candidate set yields all candidates.
// Failures in the primary pipeline degrade to a trending-only list
// rather than propagating an error.
func (r *Recommender) Recommend(ctx context.Context, userID string, limit int) []model.Recommendation {
	start := time.Now()
	defer func() {
		metrics.RecordRecommendationLatency(float64(time.Since(start).Milliseconds()))
	}()

	if limit < 0 {
		limit = 0
	}

	if ranked, ok := r.cache.Get(userID); ok {
		metrics.RecordCacheHit()
		return truncate(ranked, limit)
	}
	metrics.RecordCacheMiss()

	ranked, err := r.compute(ctx, userID)
	if err != nil {
		metrics.RecordRecommendationFallback()
		r.logger.Warn(ctx, "recommendation pipeline degraded to trending-only",
			logger.String("userID", userID),
			logger.Error(err),
		)
		return truncate(r.trendingFallback(ctx), limit)
	}

	// Cache the full sorted list, not the truncated slice, so later
	// requests with larger limits stay cache hits.
	r.cache.Put(userID, ranked)
	return truncate(ranked, limit)
}

// compute scores every upcoming candidate against the user's profile.
func (r *Recommender) compute(ctx context.Context, userID string) ([]model.Recommendation, error) {
	profile, err := r.profiles.ProfileFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	candidates, err := r.events.List(ctx, model.EventFilter{Category: model.CategoryUpcoming})
	if err != nil {
		return nil, err
	}

	seen := r.seenEvents(ctx, userID)

	ranked := make([]model.Recommendation, 0, len(candidates))
	for _, event := range candidates {
		novel := !seen[event.ID]
		ranked = append(ranked, r.scorer.Evaluate(ctx, userID, profile, event, novel))
	}

	// Stable: ties keep candidate source order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}

// seenEvents returns the set of event ids the user already interacted
// with. History failures only cost the novelty signal.
func (r *Recommender) seenEvents(ctx context.Context, userID string) map[string]bool {
	history, err := r.history.ForUser(ctx, userID)
	if err != nil {
		r.logger.Warn(ctx, "interaction history unavailable; treating all candidates as novel",
			logger.String("userID", userID),
			logger.Error(err),
		)
		return map[string]bool{}
	}

	seen := make(map[string]bool, len(history))
	for _, in := range history {
		seen[in.EventID] = true
	}
	return seen
}

// trendingFallback builds the degraded list: trending upcoming events at
// a flat score. An unreachable event source yields an empty list.
func (r *Recommender) trendingFallback(ctx context.Context) []model.Recommendation {
	candidates, err := r.events.List(ctx, model.EventFilter{Category: model.CategoryUpcoming})
	if err != nil {
		r.logger.Error(ctx, "event source unreachable during fallback", logger.Error(err))
		return []model.Recommendation{}
	}

	out := make([]model.Recommendation, 0, len(candidates))
	for _, event := range candidates {
		if !event.IsTrending {
			continue
		}
		out = append(out, model.Recommendation{
			Event: event,
			Score: fallbackScore,
			Reasons: []model.Reason{{
				Type:        model.ReasonTrending,
				Description: "Trending in your community",
				Weight:      trendingReasonWeight,
			}},
			Confidence: fallbackConfidence,
		})
	}
	return out
}

func truncate(recs []model.Recommendation, limit int) []model.Recommendation {
	if limit > len(recs) {
		limit = len(recs)
	}
	out := make([]model.Recommendation, limit)
	copy(out, recs[:limit])
	return out
}
