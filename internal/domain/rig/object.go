// Package rig models the minimal scene objects the keying layer
// evaluates: transforms, constraints, and the registry that owns them.
//
// This is deliberately not a scene graph. It exists so visual keying has
// something real to resolve constraint-driven world values against.
package rig

import (
	"sync"

	"github.com/okian/keyloop/internal/domain/channel"
)

// Vec3 is an XYZ triple.
type Vec3 [3]float64

// Transform is a world-space transform snapshot.
type Transform struct {
	Location Vec3
	Rotation Vec3 // euler, radians
	Scale    Vec3
}

// Sample reads the channel's scalar component out of the transform.
func (t Transform) Sample(k channel.Kind) float64 {
	switch k.Property() {
	case channel.PropertyRotation:
		return t.Rotation[k.Axis()]
	case channel.PropertyScale:
		return t.Scale[k.Axis()]
	default:
		return t.Location[k.Axis()]
	}
}

// Object is an animatable scene object: a local transform plus an
// ordered constraint stack.
type Object struct {
	ID          string
	Location    Vec3
	Rotation    Vec3 // euler, radians
	Scale       Vec3
	Constraints []Constraint
}

// NewObject creates an object with identity scale.
func NewObject(id string) *Object {
	return &Object{
		ID:    id,
		Scale: Vec3{1, 1, 1},
	}
}

// LocalTransform returns the object's own transform, before constraints.
func (o *Object) LocalTransform() Transform {
	return Transform{
		Location: o.Location,
		Rotation: o.Rotation,
		Scale:    o.Scale,
	}
}

// WorldTransform applies the constraint stack in order to the local
// transform. A failing constraint aborts evaluation.
func (o *Object) WorldTransform() (Transform, error) {
	t := o.LocalTransform()
	for _, c := range o.Constraints {
		if err := c.Apply(&t); err != nil {
			return Transform{}, err
		}
	}
	return t, nil
}

// Registry holds the objects known to the service, keyed by id.
type Registry struct {
	mu      sync.RWMutex
	objects map[string]*Object
}

// NewRegistry creates an empty object registry.
func NewRegistry() *Registry {
	return &Registry{
		objects: make(map[string]*Object),
	}
}

// Add registers an object, replacing any previous object with the same id.
func (r *Registry) Add(o *Object) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects[o.ID] = o
}

// Get looks up an object by id.
func (r *Registry) Get(id string) (*Object, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.objects[id]
	if !ok {
		return nil, ErrUnknownObject
	}
	return o, nil
}

// Remove unregisters an object. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.objects, id)
}

// Len returns the number of registered objects.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}
