package testkeys

import "time"

// Config holds configuration for the keying load test
type Config struct {
	BaseURL     string        // Base URL of the service
	NumObjects  int           // Number of objects to register
	NumRequests int           // Number of keyframe requests to generate
	CyclicRatio float64       // Fraction of objects configured as cyclic
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	OutputFile  string        // Output file for generated requests
	LogFile     string        // Log file for test output
	Verbose     bool          // Enable verbose logging
}

// ObjectSpec represents an object registration payload
type ObjectSpec struct {
	ObjectID string     `json:"object_id"`
	Location [3]float64 `json:"location"`
	Rotation [3]float64 `json:"rotation"`
	Scale    [3]float64 `json:"scale"`
}

// KeyRequest represents a keyframe insertion request to be submitted
type KeyRequest struct {
	RequestID  string  `json:"request_id"`
	ObjectID   string  `json:"object_id"`
	Set        string  `json:"set"`
	Frame      float64 `json:"frame"`
	Mode       string  `json:"mode,omitempty"`
	CycleAware bool    `json:"cycle_aware"`
	TS         string  `json:"ts"`
}

// Keyframe represents one stored key inside a curve
type Keyframe struct {
	Time  float64 `json:"time"`
	Value float64 `json:"value"`
}

// Curve represents one stored channel curve returned by the service
type Curve struct {
	Channel          string     `json:"channel"`
	Cyclic           bool       `json:"cyclic"`
	RangeStart       float64    `json:"range_start,omitempty"`
	RangeEnd         float64    `json:"range_end,omitempty"`
	HasCycleModifier bool       `json:"has_cycle_modifier"`
	Keyframes        []Keyframe `json:"keyframes"`
}

// AckResponse represents the response from request submission
type AckResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
}

// Stats holds test statistics
type Stats struct {
	ObjectsCreated    int
	CyclesConfigured  int
	RequestsGenerated int
	RequestsSubmitted int
	RequestsAccepted  int
	RequestsDropped   int
	RequestsFailed    int
	CurvesRetrieved   int
	KeyframesStored   int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
