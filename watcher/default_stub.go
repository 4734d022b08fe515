//go:build !linux && !darwin

// File: watcher/default_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub factory for platforms without a kernel readiness backend; the
// message-driven Notify backend remains available everywhere.

package watcher

import (
	"errors"

	"github.com/momentics/hioload-sock/api"
)

// New returns an error for unsupported platforms.
func New() (api.Watcher, error) {
	return nil, errors.New("watcher: no default backend for this platform")
}
