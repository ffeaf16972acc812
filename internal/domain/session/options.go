// Package session tracks one voter's matchup/vote cycle.
package session

import (
	"github.com/versuslab/versus/internal/domain/matchup"
)

// Option applies a configuration option to a Session.
type Option func(*Session, *[]matchup.Option)

// WithActorID sets the voter identity instead of issuing a fresh one.
func WithActorID(id string) Option {
	return func(s *Session, _ *[]matchup.Option) {
		if id != "" {
			s.actorID = id
		}
	}
}

// WithSubjectID sets whose rankings the session displays. Votes still
// belong to the actor.
func WithSubjectID(id string) Option {
	return func(s *Session, _ *[]matchup.Option) {
		if id != "" {
			s.subjectID = id
		}
	}
}

// WithKFactor overrides the rating sensitivity for this session.
func WithKFactor(k float64) Option {
	return func(s *Session, _ *[]matchup.Option) {
		if k > 0 {
			s.kFactor = k
		}
	}
}

// WithSamplerOptions forwards options to the session's sampler.
func WithSamplerOptions(opts ...matchup.Option) Option {
	return func(_ *Session, samplerOpts *[]matchup.Option) {
		*samplerOpts = append(*samplerOpts, opts...)
	}
}
