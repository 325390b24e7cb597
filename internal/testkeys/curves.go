package testkeys

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// retrieveCurves fetches the stored curves for every object concurrently.
func retrieveCurves(ctx context.Context, config *Config, objects []ObjectSpec, stats *Stats) (map[string][]Curve, error) {
	log.Printf("Retrieving curves for %d objects with %d workers...", len(objects), config.Workers)

	client := newHTTPClient(config.Timeout)

	// Results storage
	results := make([][]Curve, len(objects))
	var (
		retrieved int64
		failed    int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	// Create worker pool
	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for index := range indexChan {
				select {
				case <-ctx.Done():
					return
				default:
					objectID := objects[index].ObjectID
					curves, err := retrieveObjectCurves(ctx, client, config.BaseURL, objectID)

					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							log.Printf("Failed to get curves for %s: %v", objectID, err)
						}
					} else {
						results[index] = curves
						atomic.AddInt64(&retrieved, 1)
					}

					// Progress reporting
					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&retrieved) + atomic.LoadInt64(&failed)
						ret := atomic.LoadInt64(&retrieved)
						fail := atomic.LoadInt64(&failed)

						log.Printf("Curves: %d/%d retrieved (success: %d, failed: %d)",
							total, len(objects), ret, fail)
					}
				}
			}
		}()
	}

	// Send object indices to workers
	go func() {
		defer close(indexChan)
		for i := range objects {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Collect successful results keyed by object id
	curvesByObject := make(map[string][]Curve, len(objects))
	keyframes := 0
	for i, curves := range results {
		if curves == nil {
			continue
		}
		curvesByObject[objects[i].ObjectID] = curves
		stats.CurvesRetrieved += len(curves)
		for _, c := range curves {
			keyframes += len(c.Keyframes)
		}
	}
	stats.KeyframesStored = keyframes

	log.Printf(`Curve retrieval completed:
   Objects: %d
   Curves: %d
   Keyframes: %d
   Failed: %d
`, len(curvesByObject), stats.CurvesRetrieved, keyframes, int(atomic.LoadInt64(&failed)))

	return curvesByObject, nil
}

// retrieveObjectCurves retrieves the curves for a single object.
func retrieveObjectCurves(ctx context.Context, client *HTTPClient, baseURL, objectID string) ([]Curve, error) {
	url := fmt.Sprintf("%s/v1/objects/%s/curves", baseURL, objectID)

	resp, err := client.Get(ctx, url)
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

	var curves []Curve
	if err := unmarshalJSON(body, &curves); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return curves, nil
}
