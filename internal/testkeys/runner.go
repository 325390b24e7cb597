package testkeys

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/keyloop/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete keying load test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting keyloop load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("objects", config.NumObjects),
		logger.Int("requests", config.NumRequests),
		logger.Float64("cyclicRatio", config.CyclicRatio),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate and register objects
	objects := generateObjects(ctx, config)
	if err := registerObjects(ctx, config, objects, stats); err != nil {
		return fmt.Errorf("object registration failed: %w", err)
	}

	// Step 3: Configure cycle ranges on a fraction of the objects
	cyclic, err := configureCycles(ctx, config, objects, stats)
	if err != nil {
		return fmt.Errorf("cycle configuration failed: %w", err)
	}

	// Step 4: Generate keyframe requests
	requests, err := generateRequests(ctx, config, objects, cyclic, stats)
	if err != nil {
		return fmt.Errorf("request generation failed: %w", err)
	}

	// Step 5: Submit requests concurrently
	if err := submitRequests(ctx, config, requests, stats); err != nil {
		return fmt.Errorf("request submission failed: %w", err)
	}

	// Step 6: Wait for the queue to drain
	logger.Get().Info(ctx, "waiting for requests to be processed")
	time.Sleep(ProcessingDrainDelay)

	// Step 7: Retrieve stored curves concurrently
	curves, err := retrieveCurves(ctx, config, objects, stats)
	if err != nil {
		return fmt.Errorf("curve retrieval failed: %w", err)
	}

	// Step 8: Verify results
	if err := verifyCurves(config, curves, cyclic); err != nil {
		return fmt.Errorf("curve verification failed: %w", err)
	}

	// Step 9: Save requests to file
	if err := saveRequestsToFile(ctx, config, requests); err != nil {
		logger.Get().Warn(ctx, "failed to save requests to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// registerObjects registers every generated object with the service.
func registerObjects(ctx context.Context, config *Config, objects []ObjectSpec, stats *Stats) error {
	logger.Get().Info(ctx, "registering objects", logger.Int("count", len(objects)))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/v1/objects"

	for _, ob := range objects {
		resp, err := client.Post(ctx, url, ob)
		if err != nil {
			return fmt.Errorf("failed to register object %s: %w", ob.ObjectID, err)
		}
		body, err := readResponseBody(resp)
		if err != nil {
			return fmt.Errorf("failed to read response for %s: %w", ob.ObjectID, err)
		}
		if resp.StatusCode != StatusCreated {
			return fmt.Errorf("object %s: HTTP %d: %s", ob.ObjectID, resp.StatusCode, string(body))
		}
		stats.ObjectsCreated++
	}

	logger.Get().Info(ctx, "registered objects", logger.Int("count", stats.ObjectsCreated))
	return nil
}

// configureCycles configures the cycle range on the leading fraction of
// objects and returns the per-object cyclic flags.
func configureCycles(ctx context.Context, config *Config, objects []ObjectSpec, stats *Stats) (map[string]bool, error) {
	cyclicCount := int(float64(len(objects)) * config.CyclicRatio)
	logger.Get().Info(ctx, "configuring cycles",
		logger.Int("count", cyclicCount),
		logger.Float64("start", cycleRangeStart),
		logger.Float64("end", cycleRangeEnd))

	client := newHTTPClient(config.Timeout)
	cyclic := make(map[string]bool, len(objects))

	for i, ob := range objects {
		if i >= cyclicCount {
			break
		}
		url := fmt.Sprintf("%s/v1/objects/%s/cycle", config.BaseURL, ob.ObjectID)
		payload := map[string]float64{"start": cycleRangeStart, "end": cycleRangeEnd}

		resp, err := client.Post(ctx, url, payload)
		if err != nil {
			return nil, fmt.Errorf("failed to configure cycle for %s: %w", ob.ObjectID, err)
		}
		body, err := readResponseBody(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to read response for %s: %w", ob.ObjectID, err)
		}
		if resp.StatusCode != StatusOK {
			return nil, fmt.Errorf("cycle for %s: HTTP %d: %s", ob.ObjectID, resp.StatusCode, string(body))
		}
		cyclic[ob.ObjectID] = true
		stats.CyclesConfigured++
	}

	return cyclic, nil
}

// saveRequestsToFile saves the generated requests to a JSON file.
func saveRequestsToFile(ctx context.Context, config *Config, requests []KeyRequest) error {
	if len(requests) == 0 {
		return fmt.Errorf("no requests to save")
	}

	// Determine output filename
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_requests_" + timestamp + ".json"
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write requests to file
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	// Write JSON array
	if _, err := file.WriteString("[\n"); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}

	for i, req := range requests {
		jsonData, err := marshalJSON(req)
		if err != nil {
			return fmt.Errorf("failed to marshal request %d: %w", i, err)
		}

		if _, err := file.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write request %d: %w", i, err)
		}

		// Add comma except for last request
		if i < len(requests)-1 {
			if _, err := file.WriteString(","); err != nil {
				return fmt.Errorf("failed to write comma: %w", err)
			}
		}
		_, _ = file.WriteString("\n")
	}

	if _, err := file.WriteString("]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}

	logger.Get().Info(ctx, "requests saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var acceptRate, requestsPerSecond float64

	if stats.RequestsSubmitted > 0 {
		acceptRate = float64(stats.RequestsAccepted) / float64(stats.RequestsSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.RequestsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("objectsCreated", stats.ObjectsCreated),
		logger.Int("cyclesConfigured", stats.CyclesConfigured),
		logger.Int("requestsGenerated", stats.RequestsGenerated),
		logger.Int("requestsSubmitted", stats.RequestsSubmitted),
		logger.Int("requestsAccepted", stats.RequestsAccepted),
		logger.Int("requestsDropped", stats.RequestsDropped),
		logger.Int("requestsFailed", stats.RequestsFailed),
		logger.Int("curvesRetrieved", stats.CurvesRetrieved),
		logger.Int("keyframesStored", stats.KeyframesStored),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
