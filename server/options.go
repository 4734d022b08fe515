// File: server/options.go
// Author: momentics <momentics@gmail.com>
//
// Functional options for Server construction.

package server

import "github.com/sirupsen/logrus"

// Option customizes server initialization.
type Option func(*Server)

// WithFactory replaces the socket factory used for accepted descriptors.
func WithFactory(f Factory) Option {
	return func(s *Server) {
		s.factory = f
	}
}

// WithRawAccept overrides the native-accept step entirely. The callback
// owns the accepted descriptor; the default admission path (factory plus
// ConnFunc) is skipped.
func WithRawAccept(f RawAcceptFunc) Option {
	return func(s *Server) {
		s.rawAccept = f
	}
}

// WithBlockPolicy overrides the backend-derived blocking policy.
func WithBlockPolicy(p BlockPolicy) Option {
	return func(s *Server) {
		s.policy = p
	}
}

// WithPollTimeout bounds one Poll batch in milliseconds. Negative blocks
// indefinitely, which is the default.
func WithPollTimeout(ms int) Option {
	return func(s *Server) {
		s.timeoutMs = ms
	}
}

// WithLogger replaces the tagged logger.
func WithLogger(log *logrus.Entry) Option {
	return func(s *Server) {
		s.log = log
	}
}
