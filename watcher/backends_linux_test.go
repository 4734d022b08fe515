//go:build linux

// File: watcher/backends_linux_test.go
// Author: momentics <momentics@gmail.com>

package watcher_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/watcher"
)

func platformBackends(t *testing.T) map[string]api.Watcher {
	t.Helper()
	ep, err := watcher.NewEpoll()
	require.NoError(t, err)
	return map[string]api.Watcher{"epoll": ep}
}
