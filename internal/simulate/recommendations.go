package simulate

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// retrieveRecommendations fetches recommendation lists for all personas concurrently.
func retrieveRecommendations(ctx context.Context, config *Config, personas []persona, stats *Stats) (map[string][]Recommendation, error) {
	log.Printf("Retrieving recommendations for %d users with %d workers...", len(personas), config.Workers)

	client := newHTTPClient(config.Timeout)

	// Results storage
	results := make([][]Recommendation, len(personas))
	var (
		retrieved int64
		failed    int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	// Create worker pool
	workerCount := minInt(config.Workers, len(personas))
	userChan := make(chan int, workerCount*WorkerChannelMultiplier) // Send indices instead of IDs
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for index := range userChan {
				select {
				case <-ctx.Done():
					return
				default:
					userID := personas[index].UserID
					recs, err := retrieveSingleList(client, config.BaseURL, userID, config.TopN)

					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							log.Printf("Failed to get recommendations for %s: %v", userID, err)
						}
					} else {
						results[index] = recs
						atomic.AddInt64(&retrieved, 1)
					}

					// Progress reporting
					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&retrieved) + atomic.LoadInt64(&failed)
						ret := atomic.LoadInt64(&retrieved)
						fail := atomic.LoadInt64(&failed)

						log.Printf("Recommendations: %d/%d retrieved (success: %d, failed: %d)",
							total, len(personas), ret, fail)
					}
				}
			}
		}(i)
	}

	// Send persona indices to workers
	go func() {
		defer close(userChan)
		for i := range personas {
			select {
			case <-ctx.Done():
				return
			case userChan <- i:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Collect non-failed lists keyed by user
	byUser := make(map[string][]Recommendation, len(personas))
	for i, recs := range results {
		if recs != nil {
			byUser[personas[i].UserID] = recs
		}
	}

	// Update stats
	stats.RecommendationsFetched = len(byUser)

	log.Printf(`Recommendation retrieval completed:
   Retrieved: %d
   Failed: %d
`, len(byUser), int(atomic.LoadInt64(&failed)))

	return byUser, nil
}

// retrieveSingleList fetches the recommendation list for one user.
func retrieveSingleList(client *HTTPClient, baseURL, userID string, limit int) ([]Recommendation, error) {
	url := fmt.Sprintf("%s/recommendations/%s?limit=%d", baseURL, userID, limit)

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var recs []Recommendation
	if err := unmarshalJSON(body, &recs); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return recs, nil
}

// fetchInsights pulls an insight report for a sample of users to confirm
// the generator produces output once interactions have been processed.
func fetchInsights(ctx context.Context, config *Config, personas []persona, stats *Stats) error {
	sample := minInt(len(personas), config.TopN)
	log.Printf("Fetching insights for %d users...", sample)

	client := newHTTPClient(config.Timeout)
	fetched := 0

	for i := 0; i < sample; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during insight retrieval: %w", ctx.Err())
		default:
		}

		userID := personas[i].UserID
		url := fmt.Sprintf("%s/insights/%s", config.BaseURL, userID)

		resp, err := client.Get(url)
		if err != nil {
			log.Printf("Failed to get insights for %s: %v", userID, err)
			continue
		}
		body, err := readResponseBody(resp)
		if err != nil || resp.StatusCode != StatusOK {
			log.Printf("Insight fetch for %s failed (status %d)", userID, resp.StatusCode)
			continue
		}

		var report map[string]interface{}
		if err := unmarshalJSON(body, &report); err != nil {
			log.Printf("Failed to parse insights for %s: %v", userID, err)
			continue
		}
		fetched++
	}

	stats.InsightsFetched = fetched
	log.Printf("Retrieved insights for %d users", fetched)
	return nil
}
