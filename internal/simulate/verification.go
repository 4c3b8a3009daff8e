package simulate

import (
	"fmt"
	"log"
)

// verifyResults sanity-checks the recommendation lists the service returned.
func verifyResults(config *Config, personas []persona, recommendations map[string][]Recommendation) error {
	log.Println("Verifying results...")

	if len(recommendations) == 0 {
		return fmt.Errorf("no recommendations to verify")
	}

	ordered := 0
	bounded := 0
	aligned := 0
	checked := 0

	byUser := make(map[string]persona, len(personas))
	for _, p := range personas {
		byUser[p.UserID] = p
	}

	for userID, recs := range recommendations {
		if len(recs) == 0 {
			continue
		}
		checked++

		if isSortedDescending(recs) {
			ordered++
		} else {
			log.Printf("Warning: recommendations for %s are not sorted by score", userID)
		}

		if scoresInBounds(recs) {
			bounded++
		} else {
			log.Printf("Warning: recommendations for %s have scores outside [0,1]", userID)
		}

		// Biased traffic should surface the persona's sport somewhere in the list
		if p, ok := byUser[userID]; ok && containsSport(recs, p.FavoriteSport) {
			aligned++
		}
	}

	if checked == 0 {
		return fmt.Errorf("all recommendation lists were empty")
	}

	log.Printf(`Verification summary (%d lists checked):
   Sorted by score: %d
   Scores in bounds: %d
   Favorite sport surfaced: %d
`, checked, ordered, bounded, aligned)

	displayTopRecommendations(personas, recommendations, config.Verbose)

	if ordered != checked {
		return fmt.Errorf("%d of %d lists were not sorted by score", checked-ordered, checked)
	}
	if bounded != checked {
		return fmt.Errorf("%d of %d lists had out-of-bounds scores", checked-bounded, checked)
	}

	log.Println("Result verification completed")
	return nil
}

// isSortedDescending reports whether scores are non-increasing.
func isSortedDescending(recs []Recommendation) bool {
	for i := 1; i < len(recs); i++ {
		if recs[i].Score > recs[i-1].Score {
			return false
		}
	}
	return true
}

// scoresInBounds reports whether all scores and confidences are within [0,1].
func scoresInBounds(recs []Recommendation) bool {
	for _, r := range recs {
		if r.Score < 0 || r.Score > 1 || r.Confidence < 0 || r.Confidence > 1 {
			return false
		}
	}
	return true
}

// containsSport reports whether any recommended event matches the sport.
func containsSport(recs []Recommendation, sport string) bool {
	for _, r := range recs {
		if r.Event.Sport == sport {
			return true
		}
	}
	return false
}

// displayTopRecommendations shows a few sample lists.
func displayTopRecommendations(personas []persona, recommendations map[string][]Recommendation, verbose bool) {
	sampleUsers := 3
	if verbose {
		sampleUsers = 10
	}

	shown := 0
	for _, p := range personas {
		recs, ok := recommendations[p.UserID]
		if !ok || len(recs) == 0 {
			continue
		}

		topN := minInt(len(recs), 3)
		log.Printf("Top %d for %s (favorite: %s):", topN, p.UserID, p.FavoriteSport)
		for i := 0; i < topN; i++ {
			r := recs[i]
			log.Printf("   %d. %s [%s] - score %.3f, confidence %.3f",
				i+1, r.Event.Title, r.Event.Sport, r.Score, r.Confidence)
		}

		shown++
		if shown >= sampleUsers {
			break
		}
	}
}
