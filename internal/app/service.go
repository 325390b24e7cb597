package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	requestqueue "github.com/okian/keyloop/internal/adapters/mq/queue"
	workerpool "github.com/okian/keyloop/internal/adapters/mq/worker"
	repository "github.com/okian/keyloop/internal/adapters/repository"
	"github.com/okian/keyloop/internal/domain/channel"
	"github.com/okian/keyloop/internal/domain/curve"
	"github.com/okian/keyloop/internal/domain/cycle"
	"github.com/okian/keyloop/internal/domain/model"
	"github.com/okian/keyloop/internal/domain/rig"
	"github.com/okian/keyloop/internal/domain/types"
	"github.com/okian/keyloop/pkg/logger"
	"github.com/okian/keyloop/pkg/metrics"
)

// Service implements the API dependencies for the keying system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store        repository.Store
	registry     *rig.Registry
	evaluator    *rig.Evaluator
	engine       *Engine
	requestQueue requestqueue.Queue
	workerPool   *workerpool.Pool

	// Configuration
	workerCount       int
	queueSize         int
	epsilon           float64
	forceVisual       bool
	maxCurvesPerQuery int

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the request queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithEpsilon sets the keyframe time tolerance for new curves.
func WithEpsilon(eps float64) Option {
	return func(s *Service) {
		if eps > 0 {
			s.epsilon = eps
		}
	}
}

// WithForceVisualKeying makes every insertion sample the constraint
// resolved world transform, regardless of the request mode.
func WithForceVisualKeying(force bool) Option {
	return func(s *Service) {
		s.forceVisual = force
	}
}

// WithMaxCurvesPerQuery caps how many curves a single Curves call
// returns. Zero or negative means no cap.
func WithMaxCurvesPerQuery(max int) Option {
	return func(s *Service) {
		if max > 0 {
			s.maxCurvesPerQuery = max
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2, // Default to 2x CPU cores
		queueSize:   10000,                // Default queue size
		epsilon:     0.01,                 // Default key time tolerance
		stopCh:      make(chan struct{}),
		logger:      nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting keying service...")

	// Initialize components
	s.store = repository.NewActionStore(ctx,
		repository.WithEpsilon(s.epsilon),
	)
	s.registry = rig.NewRegistry()
	s.evaluator = rig.NewEvaluator()
	s.engine = NewEngine(s.logger.Named("engine"))
	s.requestQueue = requestqueue.NewInMemoryQueue(
		requestqueue.WithCapacity(s.queueSize),
		requestqueue.WithBufferSize(s.queueSize),
	)

	// Create and start worker pool; the service itself is the keyer.
	s.workerPool = workerpool.NewPool(s.workerCount, s.requestQueue, s)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "keying service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Float64("epsilon", s.epsilon),
		logger.Bool("forceVisual", s.forceVisual),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping keying service...")

	// Stop worker pool
	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	// Close queue
	if q, ok := s.requestQueue.(*requestqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	// Signal cleanup loop to stop
	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "keying service stopped")
}

// AddObject registers an object so keying requests can resolve it.
func (s *Service) AddObject(ctx context.Context, o *rig.Object) {
	s.registry.Add(o)
	s.logger.Debug(ctx, "registered object", logger.String("objectID", o.ID))
}

// Object returns a registered object by id.
func (s *Service) Object(ctx context.Context, id string) (*rig.Object, error) {
	return s.registry.Get(id)
}

// RemoveObject drops an object and its stored action.
func (s *Service) RemoveObject(ctx context.Context, id string) {
	s.registry.Remove(id)
	s.store.Remove(ctx, id)
}

// ConfigureCycle marks the object's action as cyclic over [start, end].
// A degenerate range is accepted here; insertions against it fail with
// ErrDegenerateRange until the range is corrected.
func (s *Service) ConfigureCycle(ctx context.Context, objectID string, start, end float64) error {
	r := cycle.Range{Start: start, End: end}
	if err := s.store.ConfigureCycle(ctx, objectID, r); err != nil {
		return err
	}
	s.logger.Info(ctx, "configured cycle",
		logger.String("objectID", objectID),
		logger.Float64("start", start),
		logger.Float64("end", end),
	)
	return nil
}

// Key applies one keying request synchronously: resolve the keying
// set, sample each channel's value, and insert into the per-channel
// curves. Workers call this for queued requests.
func (s *Service) Key(ctx context.Context, req model.KeyRequest) error {
	start := time.Now()
	defer func() {
		metrics.RecordInsertionLatency(float64(time.Since(start).Milliseconds()))
	}()

	set, err := channel.ResolveSet(req.Set)
	if err != nil {
		metrics.RecordInsertionError()
		return fmt.Errorf("key request %s: %w", req.RequestID, err)
	}

	ob, err := s.registry.Get(req.ObjectID)
	if err != nil {
		metrics.RecordInsertionError()
		return fmt.Errorf("key request %s: %w", req.RequestID, err)
	}

	visual := req.Mode == model.ModeVisual || set.ForceVisual || s.forceVisual

	for _, kind := range set.Channels {
		value, err := s.evaluator.ValueAt(ob, kind, visual)
		if err != nil {
			metrics.RecordEvaluationError()
			return fmt.Errorf("key request %s: %w", req.RequestID, err)
		}

		err = s.store.Apply(ctx, req.ObjectID, kind, func(c *curve.Curve) error {
			res, insertErr := s.engine.InsertSample(ctx, c, req.Frame, value, req.CycleAware)
			if insertErr != nil {
				return insertErr
			}
			s.logger.Debug(ctx, "inserted keyframe",
				logger.String("objectID", req.ObjectID),
				logger.String("channel", kind.String()),
				logger.Float64("frame", res.Frame),
				logger.Bool("wrapped", res.Wrapped),
				logger.Bool("overwrote", res.Overwrote),
			)
			return nil
		})
		if err != nil {
			return fmt.Errorf("key request %s on %s: %w", req.RequestID, kind, err)
		}
	}

	return nil
}

// Enqueue submits a keying request for asynchronous processing. A
// missing request id is assigned here so the caller can correlate
// logs.
func (s *Service) Enqueue(ctx context.Context, req model.KeyRequest) (string, bool) {
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}

	ok := s.requestQueue.Enqueue(ctx, req)
	if !ok {
		s.logger.Warn(ctx, "request queue full, dropping request",
			logger.String("requestID", req.RequestID),
			logger.String("objectID", req.ObjectID),
		)
		return req.RequestID, false
	}

	metrics.UpdateQueueSize(s.requestQueue.Len(ctx))
	return req.RequestID, true
}

// Curves returns the stored curves for an object in API form.
func (s *Service) Curves(ctx context.Context, objectID string) ([]types.CurveEntry, error) {
	records, err := s.store.Curves(ctx, objectID)
	if err != nil {
		return nil, err
	}

	if s.maxCurvesPerQuery > 0 && len(records) > s.maxCurvesPerQuery {
		s.logger.Debug(ctx, "truncating curve query result",
			logger.String("objectID", objectID),
			logger.Int("total", len(records)),
			logger.Int("returned", s.maxCurvesPerQuery),
		)
		records = records[:s.maxCurvesPerQuery]
	}

	entries := make([]types.CurveEntry, len(records))
	for i, rec := range records {
		entry := types.CurveEntry{
			Channel:          rec.Channel.String(),
			Cyclic:           rec.Cyclic,
			HasCycleModifier: rec.HasCycleModifier,
			Keyframes:        make([]types.KeyframeEntry, len(rec.Keyframes)),
		}
		if rec.UseFrameRange {
			entry.RangeStart = rec.Range.Start
			entry.RangeEnd = rec.Range.End
		}
		for j, k := range rec.Keyframes {
			entry.Keyframes[j] = types.KeyframeEntry{Time: k.Time, Value: k.Value}
		}
		entries[i] = entry
	}

	return entries, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"epsilon":     s.epsilon,
		"forceVisual": s.forceVisual,
	}

	if s.started {
		queueLen := s.requestQueue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["objects"] = s.registry.Len()
		stats["actions"] = s.store.Count(ctx)
		stats["curves"] = s.store.CurveCount(ctx)

		// Update metrics
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}
