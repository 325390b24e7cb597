package repository

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/keyloop/internal/domain/channel"
	"github.com/okian/keyloop/internal/domain/curve"
	"github.com/okian/keyloop/internal/domain/cycle"
	"github.com/okian/keyloop/pkg/metrics"
)

// In-memory Store implementation.
//
// One action per object, one curve per channel kind. The store mutex
// guards the action map; each action carries its own mutex so
// insertions into the same action are serialized while different
// objects proceed in parallel. That gives the insertion engine the
// exclusive curve access it assumes.

const defaultStoreEpsilon = 0.01

// action groups the curves of one object together with the cyclic
// configuration new curves inherit.
type action struct {
	mu     sync.Mutex
	curves map[channel.Kind]*curve.Curve

	cyclic        bool
	frameRange    cycle.Range
	useFrameRange bool
}

// ActionStore implements Store with in-memory actions.
type ActionStore struct {
	mu         sync.RWMutex
	actions    map[string]*action
	epsilon    float64
	curveTotal atomic.Int64
}

// NewActionStore creates an empty action store with configuration
// options.
func NewActionStore(ctx context.Context, opts ...Option) *ActionStore {
	s := &ActionStore{
		actions: make(map[string]*action),
		epsilon: defaultStoreEpsilon,
	}

	for _, opt := range opts {
		opt(s)
	}

	metrics.UpdateStoreActions(0)
	metrics.UpdateStoreCurves(0)

	return s
}

// getOrCreateAction returns the action for objectID, creating it on
// first use.
func (s *ActionStore) getOrCreateAction(objectID string) *action {
	s.mu.RLock()
	a, ok := s.actions[objectID]
	s.mu.RUnlock()
	if ok {
		return a
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok = s.actions[objectID]; ok {
		return a
	}
	a = &action{curves: make(map[channel.Kind]*curve.Curve)}
	s.actions[objectID] = a
	metrics.UpdateStoreActions(len(s.actions))
	return a
}

// curveFor returns the action's curve for kind, creating it with the
// action's cyclic configuration on first use. Caller holds a.mu.
func (s *ActionStore) curveFor(a *action, kind channel.Kind) *curve.Curve {
	if c, ok := a.curves[kind]; ok {
		return c
	}

	opts := []curve.Option{curve.WithEpsilon(s.epsilon)}
	if a.cyclic {
		opts = append(opts, curve.WithCyclic())
	}
	if a.useFrameRange {
		opts = append(opts, curve.WithFrameRange(a.frameRange))
	}

	c := curve.New(opts...)
	a.curves[kind] = c
	metrics.UpdateStoreCurves(int(s.curveTotal.Add(1)))
	return c
}

// Apply runs fn against the curve for (objectID, kind) with exclusive
// access.
func (s *ActionStore) Apply(ctx context.Context, objectID string, kind channel.Kind, fn func(c *curve.Curve) error) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreApplyLatency(float64(time.Since(start).Milliseconds()))
	}()

	a := s.getOrCreateAction(objectID)

	a.mu.Lock()
	defer a.mu.Unlock()

	return fn(s.curveFor(a, kind))
}

// ConfigureCycle marks the object's action as cyclic over r, updating
// existing curves and the template for future ones.
func (s *ActionStore) ConfigureCycle(ctx context.Context, objectID string, r cycle.Range) error {
	a := s.getOrCreateAction(objectID)

	a.mu.Lock()
	defer a.mu.Unlock()

	a.cyclic = true
	a.frameRange = r
	a.useFrameRange = true

	for _, c := range a.curves {
		c.SetCyclic(true)
		c.SetFrameRange(r)
	}
	return nil
}

// Curves returns snapshots of all curves stored for the object.
func (s *ActionStore) Curves(ctx context.Context, objectID string) ([]CurveRecord, error) {
	s.mu.RLock()
	a, ok := s.actions[objectID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	records := make([]CurveRecord, 0, len(a.curves))
	for kind, c := range a.curves {
		r, useRange := c.FrameRange()
		records = append(records, CurveRecord{
			Channel:          kind,
			Cyclic:           c.Cyclic(),
			Range:            r,
			UseFrameRange:    useRange,
			HasCycleModifier: c.HasCycleModifier(),
			Keyframes:        c.Keyframes(),
		})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Channel < records[j].Channel
	})

	return records, nil
}

// Remove drops the object's action and all its curves.
func (s *ActionStore) Remove(ctx context.Context, objectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.actions[objectID]
	if !ok {
		return
	}
	delete(s.actions, objectID)
	metrics.UpdateStoreActions(len(s.actions))
	metrics.UpdateStoreCurves(int(s.curveTotal.Add(int64(-len(a.curves)))))
}

// Count returns the number of actions tracked by the store.
func (s *ActionStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.actions)
}

// CurveCount returns the number of curves across all actions.
func (s *ActionStore) CurveCount(ctx context.Context) int {
	return int(s.curveTotal.Load())
}
