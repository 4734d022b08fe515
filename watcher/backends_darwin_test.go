//go:build darwin

// File: watcher/backends_darwin_test.go
// Author: momentics <momentics@gmail.com>

package watcher_test

import (
	"testing"

	"github.com/momentics/hioload-sock/api"
)

func platformBackends(t *testing.T) map[string]api.Watcher {
	t.Helper()
	return nil
}
