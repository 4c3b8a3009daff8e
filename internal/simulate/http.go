package simulate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(url string) (*http.Response, error) {
	return c.client.Get(url)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(url string, body interface{}) (*http.Response, error) {
	jsonData, err := marshalJSON(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// marshalJSON marshals a struct to JSON
func marshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// unmarshalJSON unmarshals JSON to a struct
func unmarshalJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// createCatalog pushes the generated events into the service catalog.
func createCatalog(ctx context.Context, config *Config, events []Event) error {
	log.Printf("Creating %d catalog events...", len(events))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/events"

	for _, event := range events {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during catalog creation: %w", ctx.Err())
		default:
		}

		resp, err := client.Post(url, event)
		if err != nil {
			return fmt.Errorf("failed to create event %s: %w", event.ID, err)
		}
		_, _ = readResponseBody(resp)
		if resp.StatusCode != StatusCreated {
			return fmt.Errorf("event creation for %s failed with status %d", event.ID, resp.StatusCode)
		}
	}

	log.Printf("Catalog ready: %d events", len(events))
	return nil
}

// submitInteractions submits interactions concurrently using worker pools
func submitInteractions(ctx context.Context, config *Config, interactions []Interaction, stats *Stats) error {
	log.Printf("Submitting %d interactions with %d workers...", len(interactions), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/interactions"

	// Counters for statistics
	var (
		successful int64
		duplicate  int64
		rejected   int64
		failed     int64
		submitted  int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	// Create worker pool
	workerCount := minInt(config.Workers, len(interactions))
	interactionChan := make(chan Interaction, workerCount*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for in := range interactionChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleInteraction(client, url, in)

					// Update counters
					atomic.AddInt64(&submitted, 1)
					switch result {
					case "success":
						atomic.AddInt64(&successful, 1)
					case "duplicate":
						atomic.AddInt64(&duplicate, 1)
					case "rejected":
						atomic.AddInt64(&rejected, 1)
					case "failed":
						atomic.AddInt64(&failed, 1)
					}

					// Progress reporting
					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&submitted)
						succ := atomic.LoadInt64(&successful)
						dup := atomic.LoadInt64(&duplicate)
						rej := atomic.LoadInt64(&rejected)
						fail := atomic.LoadInt64(&failed)

						if config.Verbose {
							log.Printf("Progress: %d/%d submitted (success: %d, duplicate: %d, rejected: %d, failed: %d)",
								total, len(interactions), succ, dup, rej, fail)
						} else {
							fmt.Printf("\rSubmitted: %d/%d (success: %d, duplicate: %d, rejected: %d, failed: %d)",
								total, len(interactions), succ, dup, rej, fail)
						}
					}
				}
			}
		}(i)
	}

	// Send interactions to workers
	go func() {
		defer close(interactionChan)
		for _, in := range interactions {
			select {
			case <-ctx.Done():
				return
			case interactionChan <- in:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Final progress report
	if !config.Verbose {
		fmt.Println() // New line after progress indicator
	}

	// Update stats
	stats.InteractionsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.InteractionsSuccessful = int(atomic.LoadInt64(&successful))
	stats.InteractionsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.InteractionsRejected = int(atomic.LoadInt64(&rejected))
	stats.InteractionsFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`Interaction submission completed:
   Successful: %d
   Duplicate: %d
   Rejected: %d
   Failed: %d
`, stats.InteractionsSuccessful, stats.InteractionsDuplicate, stats.InteractionsRejected, stats.InteractionsFailed)

	return nil
}

// submitSingleInteraction submits a single interaction and returns the result
func submitSingleInteraction(client *HTTPClient, url string, in Interaction) string {
	resp, err := client.Post(url, in)
	if err != nil {
		return "failed"
	}
	defer resp.Body.Close()

	// Read response body
	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	// Parse response based on status code
	switch resp.StatusCode {
	case StatusAccepted:
		// Accepted - new interaction
		var ack AckResponse
		if err := unmarshalJSON(body, &ack); err == nil && ack.Status == "accepted" {
			return "success"
		}
		return "success" // Assume success for 202 even if parsing fails
	case StatusOK:
		// OK - duplicate interaction
		var ack AckResponse
		if err := unmarshalJSON(body, &ack); err == nil && ack.Duplicate {
			return "duplicate"
		}
		return "duplicate" // Assume duplicate for 200 even if parsing fails
	case StatusTooManyRequests:
		// Queue full - retryable
		return "rejected"
	default:
		// Error
		return "failed"
	}
}
