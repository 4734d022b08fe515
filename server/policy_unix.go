//go:build linux || darwin

// File: server/policy_unix.go
// Author: momentics <momentics@gmail.com>

package server

import (
	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/watcher"
)

// defaultPolicy derives the blocking policy from the (platform, backend)
// pair. The message-driven and kernel backends deliver readiness edge-wise
// enough that accepted connections must never block the loop; the
// bitmask-set and dynamic-array backends follow the listener's mode.
func defaultPolicy(w api.Watcher) BlockPolicy {
	switch w.(type) {
	case *watcher.Select, *watcher.Poll:
		return InheritOnAccept
	default:
		return AlwaysNonBlocking
	}
}
