// Package service provides the core keying service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"

	"github.com/okian/keyloop/internal/domain/curve"
	"github.com/okian/keyloop/internal/domain/cycle"
	"github.com/okian/keyloop/pkg/logger"
	"github.com/okian/keyloop/pkg/metrics"
)

// InsertResult reports what a single insertion did to the curve.
type InsertResult struct {
	// Frame is the effective time the sample was stored at, after any
	// cyclic remap.
	Frame float64
	// Wrapped is true when the remap moved the frame.
	Wrapped bool
	// Overwrote is true when an existing key absorbed the sample
	// instead of a new key being inserted.
	Overwrote bool
	// FellBack is true when a cycle-aware insertion degraded to a
	// plain one because the curve's cyclic setup was incomplete.
	FellBack bool
	// ModifierAttached is true when this insertion attached the cycles
	// modifier.
	ModifierAttached bool
}

// Engine applies samples to curves, remapping cycle-aware insertions
// into the curve's frame range.
//
// The engine holds no per-curve state; the caller provides exclusive
// access to the curve, normally through the store's Apply.
type Engine struct {
	logger logger.Logger
}

// NewEngine creates an insertion engine.
func NewEngine(log logger.Logger) *Engine {
	if log == nil {
		log = logger.Get().Named("engine")
	}
	return &Engine{logger: log}
}

// InsertSample stores value on c at frame.
//
// With cycleAware set and the curve fully configured for cycling, the
// frame is first remapped into the curve's range and the cycles
// modifier is attached. A cyclic curve whose authoritative range is
// degenerate rejects the insertion with ErrDegenerateRange. A cyclic
// curve without an authoritative range falls back to plain insertion
// with a warning, matching what an animator would expect from a half
// configured rig.
func (e *Engine) InsertSample(ctx context.Context, c *curve.Curve, frame, value float64, cycleAware bool) (InsertResult, error) {
	res := InsertResult{Frame: frame}

	if cycleAware && c.Cyclic() {
		r, authoritative := c.FrameRange()
		switch {
		case authoritative && !r.Valid():
			metrics.RecordInsertionError()
			return res, fmt.Errorf("insert at frame %g into range [%g, %g]: %w",
				frame, r.Start, r.End, curve.ErrDegenerateRange)
		case c.State() == curve.CyclicConfigured:
			remapped, err := cycle.Remap(frame, r)
			if err != nil {
				metrics.RecordInsertionError()
				return res, err
			}
			res.Wrapped = remapped != frame
			res.Frame = remapped
			metrics.RecordCycleRemap(res.Wrapped)
		default:
			// Cyclic flag set but no authoritative range to remap
			// into. Key at the raw frame rather than failing.
			res.FellBack = true
			metrics.RecordCyclicFallback()
			e.logger.Warn(ctx, "cyclic curve has no authoritative frame range, inserting at raw frame",
				logger.Float64("frame", frame),
			)
		}
	}

	before := c.Len()
	c.Upsert(res.Frame, value)
	res.Overwrote = c.Len() == before

	if res.Overwrote {
		metrics.RecordKeyframeOverwritten()
	} else {
		metrics.RecordKeyframeInserted()
	}

	if cycleAware && c.State() == curve.CyclicConfigured {
		if !c.HasCycleModifier() {
			c.EnsureCycleModifier()
			res.ModifierAttached = true
			metrics.RecordModifierAttached()
		}
	}

	return res, nil
}
