//go:build darwin

// File: watcher/default_darwin.go
// Author: momentics <momentics@gmail.com>

package watcher

import "github.com/momentics/hioload-sock/api"

// New returns the platform-default backend: the dynamic-array poll backend
// on darwin.
func New() (api.Watcher, error) {
	return NewPoll(), nil
}
