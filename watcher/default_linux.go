//go:build linux

// File: watcher/default_linux.go
// Author: momentics <momentics@gmail.com>

package watcher

import "github.com/momentics/hioload-sock/api"

// New returns the platform-default backend: epoll on Linux.
func New() (api.Watcher, error) {
	return NewEpoll()
}
