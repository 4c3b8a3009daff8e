// Package scoring turns a preference profile and a candidate event into
// a scored, explained recommendation.
package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/huddleapp/huddle/internal/domain/model"
)

// Factor weights. They sum to 1 so the composed score stays in [0,1]
// as long as every factor is pre-clamped.
const (
	sportWeight     = 0.30
	locationWeight  = 0.20
	eventTypeWeight = 0.15
	socialWeight    = 0.15
	timeWeight      = 0.10
	trendingWeight  = 0.05
	noveltyWeight   = 0.05
)

// Reason emission thresholds and factor constants.
const (
	sportReasonThreshold    = 0.7
	locationReasonThreshold = 0.6
	timeReasonThreshold     = 0.7
	trendingReasonWeight    = 0.8

	trendingFactorHigh = 1.0
	trendingFactorLow  = 0.5
	noveltyFactorNew   = 1.0
	noveltyFactorSeen  = 0.3

	// noReasonConfidence is returned when no factor crossed a threshold.
	noReasonConfidence = 0.3
)

// Data-quality coverage targets: a profile that has observed this many
// distinct sports/locations/time slots counts as fully covered.
const (
	qualitySportTarget    = 5
	qualityLocationTarget = 3
	qualitySlotTarget     = 10

	qualitySportShare    = 0.4
	qualityLocationShare = 0.3
	qualitySlotShare     = 0.3
)

// SocialScorer supplies the social affinity factor for a user/event pair.
// The default implementation is a neutral constant; a social-graph
// collaborator can be plugged in here.
type SocialScorer func(ctx context.Context, userID string, event model.Event) float64

// NeutralSocialScorer returns the neutral prior regardless of input.
func NeutralSocialScorer(context.Context, string, model.Event) float64 {
	return model.NeutralPreference
}

// Scorer composes the per-factor preference signals into recommendations.
type Scorer struct {
	social SocialScorer
}

// ScorerOption applies a configuration option to the Scorer.
type ScorerOption func(*Scorer)

// WithSocialScorer replaces the neutral social factor.
func WithSocialScorer(s SocialScorer) ScorerOption {
	return func(sc *Scorer) {
		if s != nil {
			sc.social = s
		}
	}
}

// NewScorer creates a scorer with configuration options.
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{social: NeutralSocialScorer}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate produces the full recommendation for one candidate event.
// novel reports whether the user has no prior interaction with it.
func (s *Scorer) Evaluate(ctx context.Context, userID string, profile *model.PreferenceProfile, event model.Event, novel bool) model.Recommendation {
	reasons := s.Reasons(profile, event)
	return model.Recommendation{
		Event:      event,
		Score:      s.Score(ctx, userID, profile, event, novel),
		Reasons:    reasons,
		Confidence: s.Confidence(reasons, profile),
	}
}

// Score computes the weighted factor sum, clamped to [0,1].
func (s *Scorer) Score(ctx context.Context, userID string, profile *model.PreferenceProfile, event model.Event, novel bool) float64 {
	trending := trendingFactorLow
	if event.IsTrending {
		trending = trendingFactorHigh
	}
	novelty := noveltyFactorSeen
	if novel {
		novelty = noveltyFactorNew
	}

	score := sportWeight*clamp01(preference(profile.Sports, event.Sport)) +
		locationWeight*clamp01(preference(profile.Locations, event.Location)) +
		eventTypeWeight*clamp01(preference(profile.EventTypes, event.EventType)) +
		timeWeight*clamp01(s.timeFactor(profile, event)) +
		socialWeight*clamp01(s.social(ctx, userID, event)) +
		trendingWeight*trending +
		noveltyWeight*novelty

	return clamp01(score)
}

// Reasons emits an explanation for every factor that crosses its
// threshold. A recommendation may legitimately carry no reasons.
func (s *Scorer) Reasons(profile *model.PreferenceProfile, event model.Event) []model.Reason {
	reasons := make([]model.Reason, 0, 4)

	if p := preference(profile.Sports, event.Sport); p > sportReasonThreshold {
		reasons = append(reasons, model.Reason{
			Type:        model.ReasonSport,
			Description: fmt.Sprintf("You frequently engage with %s events", event.Sport),
			Weight:      p,
		})
	}
	if p := preference(profile.Locations, event.Location); p > locationReasonThreshold {
		reasons = append(reasons, model.Reason{
			Type:        model.ReasonLocation,
			Description: fmt.Sprintf("Near your preferred area %s", event.Location),
			Weight:      p,
		})
	}
	if event.IsTrending {
		reasons = append(reasons, model.Reason{
			Type:        model.ReasonTrending,
			Description: "Trending in your community",
			Weight:      trendingReasonWeight,
		})
	}
	if p := s.timeFactor(profile, event); p > timeReasonThreshold {
		reasons = append(reasons, model.Reason{
			Type:        model.ReasonTime,
			Description: "Matches the times you are usually active",
			Weight:      p,
		})
	}

	return reasons
}

// Confidence estimates how much evidence backs the reasons: the mean
// reason weight scaled by profile data quality, capped at 1.
func (s *Scorer) Confidence(reasons []model.Reason, profile *model.PreferenceProfile) float64 {
	if len(reasons) == 0 {
		return noReasonConfidence
	}

	var sum float64
	for _, r := range reasons {
		sum += r.Weight
	}
	mean := sum / float64(len(reasons))
	return math.Min(1, mean*s.DataQuality(profile))
}

// DataQuality rewards profiles with broad observed coverage, independent
// of per-entry strength.
func (s *Scorer) DataQuality(profile *model.PreferenceProfile) float64 {
	return math.Min(1, float64(len(profile.Sports))/qualitySportTarget)*qualitySportShare +
		math.Min(1, float64(len(profile.Locations))/qualityLocationTarget)*qualityLocationShare +
		math.Min(1, float64(len(profile.TimeSlots))/qualitySlotTarget)*qualitySlotShare
}

// timeFactor reads the learned activity level for the event's start slot.
func (s *Scorer) timeFactor(profile *model.PreferenceProfile, event model.Event) float64 {
	return profile.SlotPreference(model.TimeSlot{
		Hour:      event.StartTime.Hour(),
		DayOfWeek: event.StartTime.Weekday(),
	})
}

// preference reads a score map, defaulting to the neutral prior.
func preference(scores map[string]float64, key string) float64 {
	if v, ok := scores[key]; ok {
		return v
	}
	return model.NeutralPreference
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
