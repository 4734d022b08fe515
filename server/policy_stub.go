//go:build !linux && !darwin

// File: server/policy_stub.go
// Author: momentics <momentics@gmail.com>

package server

import "github.com/momentics/hioload-sock/api"

// defaultPolicy on platforms without a kernel readiness backend: the
// message-driven backend requires non-blocking accepted connections.
func defaultPolicy(api.Watcher) BlockPolicy {
	return AlwaysNonBlocking
}
