package rig

import "fmt"

// Constraint mutates a world transform during evaluation. Constraints
// are applied in stack order; each sees the output of the previous one.
type Constraint interface {
	// Apply writes the constraint's effect into t.
	Apply(t *Transform) error
}

// CopyLocation copies the target object's world location.
type CopyLocation struct {
	Target *Object
}

func (c CopyLocation) Apply(t *Transform) error {
	w, err := targetWorld("copy location", c.Target)
	if err != nil {
		return err
	}
	t.Location = w.Location
	return nil
}

// CopyRotation copies the target object's world rotation.
type CopyRotation struct {
	Target *Object
}

func (c CopyRotation) Apply(t *Transform) error {
	w, err := targetWorld("copy rotation", c.Target)
	if err != nil {
		return err
	}
	t.Rotation = w.Rotation
	return nil
}

// CopyScale copies the target object's world scale.
type CopyScale struct {
	Target *Object
}

func (c CopyScale) Apply(t *Transform) error {
	w, err := targetWorld("copy scale", c.Target)
	if err != nil {
		return err
	}
	t.Scale = w.Scale
	return nil
}

// targetWorld resolves the constraint target's world transform. A
// missing target makes the owning property unresolvable.
func targetWorld(kind string, target *Object) (Transform, error) {
	if target == nil {
		return Transform{}, fmt.Errorf("%s constraint has no target: %w", kind, ErrUnresolvedProperty)
	}
	return target.WorldTransform()
}
