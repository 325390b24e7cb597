package testkeys

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/okian/keyloop/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	frameCaseDivisor   = 8
	setCaseDivisor     = 10
)

// Cycle range used for cyclic objects: frames [1, 20).
const (
	cycleRangeStart = 1.0
	cycleRangeEnd   = 20.0
)

// Constants for frame generation ranges.
const (
	inRangeMin   = 1.0
	inRangeSpan  = 19.0
	aheadMin     = 20.0
	aheadSpan    = 40.0
	farAheadMin  = 60.0
	farAheadSpan = 200.0
	behindMin    = -19.0
	behindSpan   = 19.0
	farBehindMin = -200.0
	farBehindSpan = 180.0
)

// Constants for frame distribution cases.
const (
	caseInRange      = 0
	caseInRangeAgain = 1
	caseInRangeThird = 2
	caseAhead        = 3
	caseFarAhead     = 4
	caseBehind       = 5
	caseFarBehind    = 6
	caseBoundary     = 7
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateObjects creates the object registration payloads with unique ids.
func generateObjects(ctx context.Context, config *Config) []ObjectSpec {
	logger.Get().Info(ctx, "generating objects", logger.Int("numObjects", config.NumObjects))

	objects := make([]ObjectSpec, config.NumObjects)
	for i := 0; i < config.NumObjects; i++ {
		objects[i] = ObjectSpec{
			ObjectID: "ob_" + strconv.Itoa(i) + "_" + uuid.New().String()[:8],
			Location: [3]float64{getRandomFloat() * 10, getRandomFloat() * 10, getRandomFloat() * 10},
			Rotation: [3]float64{getRandomFloat(), getRandomFloat(), getRandomFloat()},
			Scale:    [3]float64{1, 1, 1},
		}
	}

	return objects
}

// generateRequests creates the specified number of keyframe requests spread
// across the registered objects.
func generateRequests(ctx context.Context, config *Config, objects []ObjectSpec, cyclic map[string]bool, stats *Stats) ([]KeyRequest, error) {
	logger.Get().Info(ctx, "generating keyframe requests", logger.Int("numRequests", config.NumRequests))

	requests := make([]KeyRequest, config.NumRequests)

	// Generate requests concurrently
	type requestResult struct {
		index   int
		request KeyRequest
		err     error
	}

	resultChan := make(chan requestResult, config.NumRequests)

	// Use worker pool for request generation
	workerCount := minInt(config.Workers, config.NumRequests)
	requestsPerWorker := config.NumRequests / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * requestsPerWorker
		end := start + requestsPerWorker
		if worker == workerCount-1 {
			end = config.NumRequests // Last worker gets remaining requests
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- requestResult{index: i, err: ctx.Err()}
					return
				default:
					ob := objects[i%len(objects)]
					req := generateSingleRequest(i, ob.ObjectID, cyclic[ob.ObjectID])
					resultChan <- requestResult{index: i, request: req, err: nil}
				}
			}
		}(start, end)
	}

	// Collect results
	for i := 0; i < config.NumRequests; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during request generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate request %d: %w", result.index, result.err)
			}
			requests[result.index] = result.request
		}
	}

	stats.RequestsGenerated = len(requests)
	logger.Get().Info(ctx, "generated requests successfully", logger.Int("count", len(requests)))

	return requests, nil
}

// generateSingleRequest creates a single keyframe request for the given
// object. Cyclic objects get cycle-aware requests with frames scattered
// outside the range so the wrap path is exercised.
func generateSingleRequest(index int, objectID string, isCyclic bool) KeyRequest {
	frame := generateVariedFrame(isCyclic)
	set := generateKeyingSet()

	// Current timestamp in RFC3339 format
	timestamp := time.Now().UTC().Format(time.RFC3339)

	// Generate unique request ID
	requestID := "req_" + strconv.FormatInt(int64(index), 10) + "_" + strconv.FormatInt(time.Now().Unix(), 10) + "_" + uuid.New().String()[:8]

	return KeyRequest{
		RequestID:  requestID,
		ObjectID:   objectID,
		Set:        set,
		Frame:      frame,
		CycleAware: isCyclic,
		TS:         timestamp,
	}
}

// generateVariedFrame creates a frame with varied distribution. Cyclic
// objects receive out-of-range and boundary frames alongside in-range
// ones; non-cyclic objects stay in range.
func generateVariedFrame(isCyclic bool) float64 {
	if !isCyclic {
		return inRangeMin + getRandomFloat()*inRangeSpan
	}

	randNum, _ := rand.Int(rand.Reader, big.NewInt(frameCaseDivisor))
	switch randNum.Int64() {
	case caseInRange, caseInRangeAgain, caseInRangeThird:
		// In-range frames (1 - 20) - most common
		return inRangeMin + getRandomFloat()*inRangeSpan
	case caseAhead:
		// Frames past the end (20 - 60)
		return aheadMin + getRandomFloat()*aheadSpan
	case caseFarAhead:
		// Far ahead, several cycles out (60 - 260)
		return farAheadMin + getRandomFloat()*farAheadSpan
	case caseBehind:
		// Negative frames just before the range (-19 - 0)
		return behindMin + getRandomFloat()*behindSpan
	case caseFarBehind:
		// Far behind, several cycles back (-200 - -20)
		return farBehindMin + getRandomFloat()*farBehindSpan
	case caseBoundary:
		// The end boundary itself; wraps to the start
		return cycleRangeEnd
	default:
		return inRangeMin + getRandomFloat()*inRangeSpan
	}
}

// generateKeyingSet picks a keying set with Location weighted heaviest.
func generateKeyingSet() string {
	randNum, _ := rand.Int(rand.Reader, big.NewInt(setCaseDivisor))
	switch randNum.Int64() {
	case 0, 1, 2, 3:
		return "Location"
	case 4, 5:
		return "Rotation"
	case 6:
		return "Scale"
	case 7, 8:
		return "LocRotScale"
	default:
		return "VisualLocation"
	}
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
