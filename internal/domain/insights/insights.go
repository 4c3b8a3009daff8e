// Package insights derives point-in-time analytics snapshots from a
// user's interaction log and preference profile.
//
// Every sub-analysis is a pure function of those two inputs. Failures
// loading either input degrade to partial or empty results; generation
// never fails.
package insights

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/huddleapp/huddle/internal/domain/model"
	"github.com/huddleapp/huddle/pkg/logger"
	"github.com/huddleapp/huddle/pkg/metrics"
)

// Analysis thresholds and constants. The achievement heuristic is a
// fixed threshold, not a statistical model.
const (
	trendBucket          = 7 * 24 * time.Hour
	trendChangeThreshold = 5.0 // percent

	strengthThreshold    = 0.7
	improvementThreshold = 0.3

	patternMinOccurrences = 5
	patternHighImpact     = 20
	patternMediumImpact   = 10

	peakTimesLimit = 5

	preferredEventTypeThreshold = 0.6

	influenceShareWeight   = 3
	influenceCommentWeight = 2
	influenceReactWeight   = 1
	influenceCap           = 100

	goalCount       = 3
	goalTargetJoins = 5
	goalDeadline    = 30 * 24 * time.Hour

	achievementThreshold   = 8
	achievementTarget      = 10
	achievementETA         = 7 * 24 * time.Hour
	achievementProbability = 0.8
)

// Trend directions.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// Impact tiers for engagement patterns.
const (
	ImpactHigh   = "high"
	ImpactMedium = "medium"
	ImpactLow    = "low"
)

// Collaboration styles derived from interaction mix.
const (
	StyleConnector    = "Connector"
	StyleCommunicator = "Communicator"
	StyleParticipant  = "Participant"
)

// Trend compares activity across consecutive weekly buckets.
type Trend struct {
	Metric        string  `json:"metric"`
	ChangePercent float64 `json:"change_percent"`
	Direction     string  `json:"direction"`
}

// Pattern describes a recurring interaction type.
type Pattern struct {
	Type   model.InteractionType `json:"type"`
	Count  int                   `json:"count"`
	Impact string                `json:"impact"`
}

// PeakTime is a high-activity (day, hour) bucket.
type PeakTime struct {
	model.TimeSlot
	Count int `json:"count"`
}

// EventTypePreference pairs an event type with its learned score.
type EventTypePreference struct {
	EventType string  `json:"event_type"`
	Score     float64 `json:"score"`
}

// Goal is a suggested engagement target.
type Goal struct {
	Title    string    `json:"title"`
	Sport    string    `json:"sport"`
	Target   int       `json:"target"`
	Deadline time.Time `json:"deadline"`
}

// AchievementForecast predicts an imminent milestone.
type AchievementForecast struct {
	Name        string    `json:"name"`
	ETA         time.Time `json:"eta"`
	Probability float64   `json:"probability"`
}

// UserInsights is the full analytics snapshot for one user.
type UserInsights struct {
	UserID              string                `json:"user_id"`
	PerformanceTrends   []Trend               `json:"performance_trends"`
	StrengthAreas       []string              `json:"strength_areas"`
	ImprovementAreas    []string              `json:"improvement_areas"`
	EngagementPatterns  []Pattern             `json:"engagement_patterns"`
	PeakActivityTimes   []PeakTime            `json:"peak_activity_times"`
	PreferredEventTypes []EventTypePreference `json:"preferred_event_types"`
	InfluenceScore      float64               `json:"influence_score"`
	CollaborationStyle  string                `json:"collaboration_style"`
	SuggestedGoals      []Goal                `json:"suggested_goals"`
	NextAchievements    []AchievementForecast `json:"next_achievements"`
	GeneratedAt         time.Time             `json:"generated_at"`
}

// HistorySource reads a user's interaction log.
type HistorySource interface {
	ForUser(ctx context.Context, userID string) ([]model.Interaction, error)
}

// ProfileSource loads a user's preference profile.
type ProfileSource interface {
	ProfileFor(ctx context.Context, userID string) (*model.PreferenceProfile, error)
}

// Generator derives insights from the two stores.
type Generator struct {
	history  HistorySource
	profiles ProfileSource
	clock    clockwork.Clock
	logger   logger.Logger
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithClock sets the clock used for bucketing and deadlines.
func WithClock(c clockwork.Clock) Option {
	return func(g *Generator) {
		if c != nil {
			g.clock = c
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGenerator wires the generator dependencies.
func NewGenerator(history HistorySource, profiles ProfileSource, opts ...Option) *Generator {
	g := &Generator{
		history:  history,
		profiles: profiles,
		clock:    clockwork.NewRealClock(),
		logger:   logger.Get().Named("insights"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds the snapshot. A failing store costs only the analyses
// that depend on it; the caller always receives a usable snapshot.
func (g *Generator) Generate(ctx context.Context, userID string) UserInsights {
	now := g.clock.Now()

	interactions, err := g.history.ForUser(ctx, userID)
	if err != nil {
		g.logger.Warn(ctx, "interaction log unavailable; insights will be partial",
			logger.String("userID", userID),
			logger.Error(err),
		)
		interactions = nil
	}

	profile, err := g.profiles.ProfileFor(ctx, userID)
	if err != nil {
		g.logger.Warn(ctx, "profile unavailable; insights will be partial",
			logger.String("userID", userID),
			logger.Error(err),
		)
		profile = model.NewPreferenceProfile(userID, now)
	}

	counts := countByType(interactions)

	snapshot := UserInsights{
		UserID:              userID,
		PerformanceTrends:   performanceTrends(interactions, now),
		StrengthAreas:       strengthAreas(profile),
		ImprovementAreas:    improvementAreas(profile),
		EngagementPatterns:  engagementPatterns(counts),
		PeakActivityTimes:   peakActivityTimes(interactions),
		PreferredEventTypes: preferredEventTypes(profile),
		InfluenceScore:      influenceScore(counts),
		CollaborationStyle:  collaborationStyle(counts),
		SuggestedGoals:      suggestedGoals(profile, now),
		NextAchievements:    nextAchievements(counts, now),
		GeneratedAt:         now,
	}

	metrics.RecordInsightGenerated()
	return snapshot
}

func countByType(interactions []model.Interaction) map[model.InteractionType]int {
	counts := make(map[model.InteractionType]int)
	for _, in := range interactions {
		counts[in.Type]++
	}
	return counts
}

// performanceTrends compares the most recent weekly bucket against the
// previous one. Fewer than two populated buckets yields no trend.
func performanceTrends(interactions []model.Interaction, now time.Time) []Trend {
	buckets := make(map[int]int)
	for _, in := range interactions {
		age := now.Sub(in.TS)
		if age < 0 {
			continue
		}
		buckets[int(age/trendBucket)]++
	}

	populated := 0
	for _, c := range buckets {
		if c > 0 {
			populated++
		}
	}
	if populated < 2 {
		return []Trend{}
	}

	current := float64(buckets[0])
	previous := float64(buckets[1])
	if previous == 0 {
		return []Trend{}
	}

	change := (current - previous) / previous * 100
	direction := TrendStable
	switch {
	case change > trendChangeThreshold:
		direction = TrendImproving
	case change < -trendChangeThreshold:
		direction = TrendDeclining
	}

	return []Trend{{
		Metric:        "weekly_activity",
		ChangePercent: change,
		Direction:     direction,
	}}
}

func strengthAreas(profile *model.PreferenceProfile) []string {
	out := make([]string, 0)
	for sport, score := range profile.Sports {
		if score > strengthThreshold {
			out = append(out, sport)
		}
	}
	sort.Strings(out)
	return out
}

func improvementAreas(profile *model.PreferenceProfile) []string {
	out := make([]string, 0)
	if profile.Social.MentorshipInterest < improvementThreshold {
		out = append(out, "mentorship")
	}
	if profile.Social.TeamParticipation < improvementThreshold {
		out = append(out, "team participation")
	}
	return out
}

func engagementPatterns(counts map[model.InteractionType]int) []Pattern {
	out := make([]Pattern, 0)
	for _, t := range []model.InteractionType{
		model.InteractionView,
		model.InteractionParticipate,
		model.InteractionReact,
		model.InteractionComment,
		model.InteractionShare,
		model.InteractionBookmark,
		model.InteractionSkip,
		model.InteractionComplete,
	} {
		count := counts[t]
		if count <= patternMinOccurrences {
			continue
		}
		impact := ImpactLow
		switch {
		case count > patternHighImpact:
			impact = ImpactHigh
		case count > patternMediumImpact:
			impact = ImpactMedium
		}
		out = append(out, Pattern{Type: t, Count: count, Impact: impact})
	}
	return out
}

func peakActivityTimes(interactions []model.Interaction) []PeakTime {
	buckets := make(map[model.TimeSlot]int)
	for _, in := range interactions {
		slot := model.TimeSlot{Hour: in.TS.Hour(), DayOfWeek: in.TS.Weekday()}
		buckets[slot]++
	}

	out := make([]PeakTime, 0, len(buckets))
	for slot, count := range buckets {
		out = append(out, PeakTime{TimeSlot: slot, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].Hour < out[j].Hour
	})
	if len(out) > peakTimesLimit {
		out = out[:peakTimesLimit]
	}
	return out
}

func preferredEventTypes(profile *model.PreferenceProfile) []EventTypePreference {
	out := make([]EventTypePreference, 0)
	for eventType, score := range profile.EventTypes {
		if score > preferredEventTypeThreshold {
			out = append(out, EventTypePreference{EventType: eventType, Score: score})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].EventType < out[j].EventType
	})
	return out
}

func influenceScore(counts map[model.InteractionType]int) float64 {
	score := float64(influenceShareWeight*counts[model.InteractionShare] +
		influenceCommentWeight*counts[model.InteractionComment] +
		influenceReactWeight*counts[model.InteractionReact])
	return math.Min(influenceCap, score)
}

func collaborationStyle(counts map[model.InteractionType]int) string {
	participates := counts[model.InteractionParticipate]
	comments := counts[model.InteractionComment]
	shares := counts[model.InteractionShare]

	switch {
	case shares > comments && shares > participates:
		return StyleConnector
	case comments > participates:
		return StyleCommunicator
	default:
		return StyleParticipant
	}
}

func suggestedGoals(profile *model.PreferenceProfile, now time.Time) []Goal {
	type ranked struct {
		sport string
		score float64
	}
	sports := make([]ranked, 0, len(profile.Sports))
	for sport, score := range profile.Sports {
		sports = append(sports, ranked{sport: sport, score: score})
	}
	sort.Slice(sports, func(i, j int) bool {
		if sports[i].score != sports[j].score {
			return sports[i].score > sports[j].score
		}
		return sports[i].sport < sports[j].sport
	})
	if len(sports) > goalCount {
		sports = sports[:goalCount]
	}

	out := make([]Goal, 0, len(sports))
	for _, s := range sports {
		out = append(out, Goal{
			Title:    fmt.Sprintf("Join %d %s events", goalTargetJoins, s.sport),
			Sport:    s.sport,
			Target:   goalTargetJoins,
			Deadline: now.Add(goalDeadline),
		})
	}
	return out
}

func nextAchievements(counts map[model.InteractionType]int, now time.Time) []AchievementForecast {
	if counts[model.InteractionParticipate] < achievementThreshold {
		return []AchievementForecast{}
	}
	return []AchievementForecast{{
		Name:        fmt.Sprintf("%d participations", achievementTarget),
		ETA:         now.Add(achievementETA),
		Probability: achievementProbability,
	}}
}
