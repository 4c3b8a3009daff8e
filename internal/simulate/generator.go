package simulate

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/huddleapp/huddle/pkg/logger"
)

// Constants for random number generation.
const (
	interactionCaseSize = 100
)

// Catalog vocabulary the generator draws from.
var (
	sports     = []string{"basketball", "soccer", "tennis", "volleyball", "running", "cycling", "swimming", "climbing"}
	locations  = []string{"downtown", "riverside", "northside", "campus", "harbor"}
	eventTypes = []string{"tournament", "training", "social", "pickup"}
)

// Interaction mix thresholds over a 0-99 roll. Views dominate, with a
// long tail of higher-signal actions.
const (
	caseViewBelow        = 40
	caseReactBelow       = 55
	caseParticipateBelow = 70
	caseCommentBelow     = 80
	caseBookmarkBelow    = 88
	caseShareBelow       = 93
	caseSkipBelow        = 98
)

// Share of interactions that stay within a user's favorite sport.
const favoriteSportBias = 80

// randomIndex returns a random index in [0, n).
func randomIndex(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generatePersonas assigns each simulated user a favorite sport and a
// home location. Recommendation checks later lean on these habits.
func generatePersonas(config *Config) []persona {
	personas := make([]persona, config.NumUsers)
	for i := range personas {
		personas[i] = persona{
			UserID:        "user-" + strconv.Itoa(i),
			FavoriteSport: sports[i%len(sports)],
			HomeLocation:  locations[i%len(locations)],
		}
	}
	return personas
}

// generateCatalog creates the catalog events the interactions will target.
// Every sport/location pair gets coverage so each persona has something
// to interact with.
func generateCatalog(ctx context.Context, config *Config, stats *Stats) []Event {
	logger.Get().Info(ctx, "generating catalog events", logger.Int("numEvents", config.NumEvents))

	events := make([]Event, config.NumEvents)
	now := time.Now().UTC()

	for i := range events {
		sport := sports[i%len(sports)]
		location := locations[(i/len(sports))%len(locations)]
		eventType := eventTypes[i%len(eventTypes)]

		// Spread start times over the next two weeks
		start := now.Add(time.Duration(1+randomIndex(14*24)) * time.Hour)

		events[i] = Event{
			ID:         "sim-event-" + strconv.Itoa(i),
			Title:      sport + " " + eventType + " at " + location,
			Sport:      sport,
			Location:   location,
			EventType:  eventType,
			StartTime:  start.Format(time.RFC3339),
			IsTrending: randomIndex(10) == 0,
		}
	}

	stats.EventsCreated = len(events)
	return events
}

// generateInteractions synthesizes interactions for the personas against
// the catalog, biased toward each user's favorite sport.
func generateInteractions(ctx context.Context, config *Config, personas []persona, events []Event, stats *Stats) ([]Interaction, error) {
	logger.Get().Info(ctx, "generating interactions", logger.Int("numInteractions", config.NumInteractions))

	if len(personas) == 0 || len(events) == 0 {
		return nil, fmt.Errorf("need at least one user and one event")
	}

	// Index events by sport for the favorite-sport bias
	bySport := make(map[string][]int, len(sports))
	for i, e := range events {
		bySport[e.Sport] = append(bySport[e.Sport], i)
	}

	interactions := make([]Interaction, config.NumInteractions)
	now := time.Now().UTC()

	for i := range interactions {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during interaction generation: %w", ctx.Err())
		default:
		}

		p := personas[randomIndex(len(personas))]

		// Pick an event, favoring the persona's sport
		var eventIdx int
		if favorites := bySport[p.FavoriteSport]; len(favorites) > 0 && randomIndex(interactionCaseSize) < favoriteSportBias {
			eventIdx = favorites[randomIndex(len(favorites))]
		} else {
			eventIdx = randomIndex(len(events))
		}

		kind := pickInteractionType()
		in := Interaction{
			ID:      uuid.New().String(),
			UserID:  p.UserID,
			EventID: events[eventIdx].ID,
			Type:    kind,
			TS:      now.Add(-time.Duration(randomIndex(7*24)) * time.Hour).Format(time.RFC3339),
		}
		if kind == "view" {
			// Dwell time between 5s and 2min
			in.DurationMS = int64(5000 + randomIndex(115000))
		}
		interactions[i] = in
	}

	stats.InteractionsGenerated = len(interactions)
	logger.Get().Info(ctx, "generated interactions successfully", logger.Int("count", len(interactions)))

	return interactions, nil
}

// pickInteractionType rolls the interaction mix distribution.
func pickInteractionType() string {
	roll := randomIndex(interactionCaseSize)
	switch {
	case roll < caseViewBelow:
		return "view"
	case roll < caseReactBelow:
		return "react"
	case roll < caseParticipateBelow:
		return "participate"
	case roll < caseCommentBelow:
		return "comment"
	case roll < caseBookmarkBelow:
		return "bookmark"
	case roll < caseShareBelow:
		return "share"
	case roll < caseSkipBelow:
		return "skip"
	default:
		return "complete"
	}
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
