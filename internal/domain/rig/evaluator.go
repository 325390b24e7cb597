package rig

import (
	"fmt"

	"github.com/okian/keyloop/internal/domain/channel"
)

// Evaluator produces the scalar value to key for a channel. In visual
// mode it resolves the constraint stack first, so a constrained object
// keys its world-space result instead of its raw property.
type Evaluator struct{}

// NewEvaluator creates a property evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// ValueAt returns the value to key for the channel on ob. With visual
// set, constraints are applied before sampling.
func (e *Evaluator) ValueAt(ob *Object, k channel.Kind, visual bool) (float64, error) {
	if ob == nil {
		return 0, fmt.Errorf("evaluate %s: %w", k, ErrUnresolvedProperty)
	}

	if !visual {
		return ob.LocalTransform().Sample(k), nil
	}

	w, err := ob.WorldTransform()
	if err != nil {
		return 0, fmt.Errorf("evaluate %s on %q: %w", k, ob.ID, err)
	}
	return w.Sample(k), nil
}
