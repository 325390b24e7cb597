// Package repository defines the action store interface and errors.
package repository

// Option applies a configuration option to the ActionStore.
type Option func(*ActionStore)

// WithEpsilon sets the keyframe time tolerance applied to curves the
// store creates.
func WithEpsilon(eps float64) Option {
	return func(s *ActionStore) {
		if eps > 0 {
			s.epsilon = eps
		}
	}
}
