// Package repository defines the action store interface and errors.
package repository

import (
	"context"

	"github.com/okian/keyloop/internal/domain/channel"
	"github.com/okian/keyloop/internal/domain/curve"
	"github.com/okian/keyloop/internal/domain/cycle"
)

// CurveRecord is a read-only snapshot of one stored curve.
type CurveRecord struct {
	Channel          channel.Kind
	Cyclic           bool
	Range            cycle.Range
	UseFrameRange    bool
	HasCycleModifier bool
	Keyframes        []curve.Keyframe
}

// Store provides read/write access to the animation state, one action
// per object.
type Store interface {
	// Apply runs fn against the curve for (objectID, kind), creating
	// the action and curve on first use. Calls against the same action
	// are serialized, so fn has exclusive access to the curve.
	Apply(ctx context.Context, objectID string, kind channel.Kind, fn func(c *curve.Curve) error) error

	// ConfigureCycle marks the object's action as cyclic over r. The
	// setting applies to existing curves and to curves created later.
	ConfigureCycle(ctx context.Context, objectID string, r cycle.Range) error

	// Curves returns snapshots of all curves stored for the object,
	// ordered by channel kind.
	// Returns ErrNotFound if the object has no action.
	Curves(ctx context.Context, objectID string) ([]CurveRecord, error)

	// Remove drops the object's action and all its curves.
	Remove(ctx context.Context, objectID string)

	// Count returns the number of actions tracked by the store.
	Count(ctx context.Context) int

	// CurveCount returns the number of curves across all actions.
	CurveCount(ctx context.Context) int
}
