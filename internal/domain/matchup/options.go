// Package matchup selects which two items a voter compares next.
package matchup

import "math/rand"

// Option applies a configuration option to the Sampler.
type Option func(*Sampler)

// WithRand injects a random source, letting tests drive the sampler
// deterministically.
func WithRand(rng *rand.Rand) Option {
	return func(s *Sampler) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithResetHook registers a callback invoked on every epoch reset.
func WithResetHook(fn func()) Option {
	return func(s *Sampler) {
		s.onReset = fn
	}
}
