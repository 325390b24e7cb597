package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/keyloop/internal/testkeys"
)

// Default configuration constants.
const (
	defaultNumObjects  = 100
	defaultNumRequests = 10000
	defaultCyclicRatio = 0.5
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numObjects  = flag.Int("objects", defaultNumObjects, "Number of objects to register")
		numRequests = flag.Int("requests", defaultNumRequests, "Number of keyframe requests to generate and submit")
		cyclicRatio = flag.Float64("cyclic", defaultCyclicRatio, "Fraction of objects configured with a cycle range")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile  = flag.String("output", "", "Output file for generated requests (default: generated_requests_TIMESTAMP.json)")
		logFile     = flag.String("log", "", "Log file for test output (default: test_log_TIMESTAMP.log)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testkeys.ShowHelp()
		return
	}

	// Setup logging
	if err := testkeys.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	// Create test configuration
	config := &testkeys.Config{
		BaseURL:     *baseURL,
		NumObjects:  *numObjects,
		NumRequests: *numRequests,
		CyclicRatio: *cyclicRatio,
		Workers:     *workers,
		Timeout:     *timeout,
		OutputFile:  *outputFile,
		LogFile:     *logFile,
		Verbose:     *verbose,
	}

	// Run the test
	if err := testkeys.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		return
	}
}
