// Package channel enumerates the animatable property channels and the
// named keying sets that group them.
//
// Channels are a closed, typed set rather than free-form data paths, so
// keying-set resolution is a table lookup instead of string dispatch.
package channel

// Kind identifies one scalar animation channel on an object.
type Kind int

const (
	// KindUnknown is the zero value and never stored.
	KindUnknown Kind = iota
	KindLocationX
	KindLocationY
	KindLocationZ
	KindRotationX
	KindRotationY
	KindRotationZ
	KindScaleX
	KindScaleY
	KindScaleZ
)

// kindNames backs Kind.String and API serialization.
var kindNames = map[Kind]string{
	KindLocationX: "location_x",
	KindLocationY: "location_y",
	KindLocationZ: "location_z",
	KindRotationX: "rotation_x",
	KindRotationY: "rotation_y",
	KindRotationZ: "rotation_z",
	KindScaleX:    "scale_x",
	KindScaleY:    "scale_y",
	KindScaleZ:    "scale_z",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Property is the transform group a channel belongs to.
type Property int

const (
	PropertyLocation Property = iota
	PropertyRotation
	PropertyScale
)

// Property returns the transform group of the channel.
func (k Kind) Property() Property {
	switch k {
	case KindRotationX, KindRotationY, KindRotationZ:
		return PropertyRotation
	case KindScaleX, KindScaleY, KindScaleZ:
		return PropertyScale
	default:
		return PropertyLocation
	}
}

// Axis returns the component index of the channel within its property
// triple: 0 for X, 1 for Y, 2 for Z.
func (k Kind) Axis() int {
	switch k {
	case KindLocationX, KindRotationX, KindScaleX:
		return 0
	case KindLocationY, KindRotationY, KindScaleY:
		return 1
	default:
		return 2
	}
}

var (
	locationKinds = []Kind{KindLocationX, KindLocationY, KindLocationZ}
	rotationKinds = []Kind{KindRotationX, KindRotationY, KindRotationZ}
	scaleKinds    = []Kind{KindScaleX, KindScaleY, KindScaleZ}
)

// Set is a named keying set: the channels keyed together by one
// insertion request.
type Set struct {
	Name     string
	Channels []Kind

	// ForceVisual marks sets that always key the constraint-resolved
	// world value, regardless of the requested mode.
	ForceVisual bool
}

// sets is the keying-set table. Names follow the host convention of
// title-case set identifiers.
var sets = map[string]Set{
	"Location":       {Name: "Location", Channels: locationKinds},
	"Rotation":       {Name: "Rotation", Channels: rotationKinds},
	"Scale":          {Name: "Scale", Channels: scaleKinds},
	"LocRotScale":    {Name: "LocRotScale", Channels: concat(locationKinds, rotationKinds, scaleKinds)},
	"VisualLocation": {Name: "VisualLocation", Channels: locationKinds, ForceVisual: true},
	"VisualRotation": {Name: "VisualRotation", Channels: rotationKinds, ForceVisual: true},
}

func concat(groups ...[]Kind) []Kind {
	var out []Kind
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// ResolveSet looks up a keying set by name. The returned set shares the
// table's channel slice; callers must not mutate it.
func ResolveSet(name string) (Set, error) {
	s, ok := sets[name]
	if !ok {
		return Set{}, ErrUnknownSet
	}
	return s, nil
}

// SetNames returns the names of all known keying sets, unordered.
func SetNames() []string {
	out := make([]string, 0, len(sets))
	for name := range sets {
		out = append(out, name)
	}
	return out
}
