package curve

import (
	"math"
	"sort"

	"github.com/okian/keyloop/internal/domain/cycle"
)

// defaultEpsilon is the time tolerance under which two keyframe times
// collapse into one key.
const defaultEpsilon = 0.01

// Keyframe is a stored (time, value) sample. Keyframes are owned by
// their Curve; callers always receive copies.
type Keyframe struct {
	Time  float64
	Value float64
}

// ModifierType identifies a curve modifier kind.
type ModifierType string

// ModifierCycles repeats the keyed range as extrapolation on both ends.
const ModifierCycles ModifierType = "CYCLES"

// Modifier is an extrapolation modifier attached to a Curve.
type Modifier struct {
	Type ModifierType
}

// State describes whether a curve is eligible for cycle-aware insertion.
type State int

const (
	// NonCyclic means insertions are applied at the raw frame.
	NonCyclic State = iota
	// CyclicConfigured means the curve is cyclic with an authoritative,
	// valid frame range and frames are remapped into it.
	CyclicConfigured
)

// Curve is one scalar animation channel: a sorted, duplicate-free
// sequence of keyframes plus cyclic-range metadata.
//
// A Curve does no internal locking. Concurrent mutation of the same
// Curve must be serialized by the caller; different Curves are
// independent.
type Curve struct {
	keys []Keyframe

	cyclic        bool
	useFrameRange bool
	frameRange    cycle.Range

	modifiers []Modifier
	epsilon   float64
}

// New creates an empty curve with configuration options.
func New(opts ...Option) *Curve {
	c := &Curve{
		epsilon: defaultEpsilon,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetCyclic toggles cyclic participation after construction.
func (c *Curve) SetCyclic(cyclic bool) {
	c.cyclic = cyclic
}

// SetFrameRange sets the authoritative cyclic range, mirroring
// WithFrameRange for curves that become cyclic after creation.
func (c *Curve) SetFrameRange(r cycle.Range) {
	c.frameRange = r
	c.useFrameRange = true
}

// Cyclic reports whether the curve participates in cyclic remapping.
func (c *Curve) Cyclic() bool {
	return c.cyclic
}

// FrameRange returns the configured cyclic range and whether it is
// authoritative.
func (c *Curve) FrameRange() (cycle.Range, bool) {
	return c.frameRange, c.useFrameRange
}

// State returns the insertion state of the curve. CyclicConfigured
// requires the cyclic flag, an authoritative range, and a positive span.
func (c *Curve) State() State {
	if c.cyclic && c.useFrameRange && c.frameRange.Valid() {
		return CyclicConfigured
	}
	return NonCyclic
}

// Epsilon returns the time tolerance for key identity.
func (c *Curve) Epsilon() float64 {
	return c.epsilon
}

// Len returns the number of keyframes.
func (c *Curve) Len() int {
	return len(c.keys)
}

// Keyframes returns a copy of the keyframe list, sorted ascending by
// time.
func (c *Curve) Keyframes() []Keyframe {
	out := make([]Keyframe, len(c.keys))
	copy(out, c.keys)
	return out
}

// Upsert stores a sample at time t. An existing key within epsilon of t
// has its value replaced in place; otherwise a new keyframe is inserted
// at the sorted position. The list stays strictly ascending with unique
// times.
func (c *Curve) Upsert(t, v float64) {
	// First key at or past t - epsilon; an epsilon match can only be
	// this key or none.
	i := sort.Search(len(c.keys), func(j int) bool {
		return c.keys[j].Time >= t-c.epsilon
	})

	if i < len(c.keys) && math.Abs(c.keys[i].Time-t) <= c.epsilon {
		c.keys[i].Value = v
		return
	}

	c.keys = append(c.keys, Keyframe{})
	copy(c.keys[i+1:], c.keys[i:])
	c.keys[i] = Keyframe{Time: t, Value: v}
}

// EnsureCycleModifier attaches the repeating-extrapolation modifier if
// it is not present yet. Calling it any number of times leaves exactly
// one cycles modifier on the curve.
func (c *Curve) EnsureCycleModifier() {
	if c.HasCycleModifier() {
		return
	}
	c.modifiers = append(c.modifiers, Modifier{Type: ModifierCycles})
}

// HasCycleModifier reports whether a cycles modifier is attached.
func (c *Curve) HasCycleModifier() bool {
	for _, m := range c.modifiers {
		if m.Type == ModifierCycles {
			return true
		}
	}
	return false
}

// Modifiers returns a copy of the attached modifier list.
func (c *Curve) Modifiers() []Modifier {
	out := make([]Modifier, len(c.modifiers))
	copy(out, c.modifiers)
	return out
}
