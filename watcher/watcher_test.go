//go:build linux || darwin

// File: watcher/watcher_test.go
// Author: momentics <momentics@gmail.com>
//
// Contract tests run against every backend available on the build target.

package watcher_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/watcher"
)

// socketpair returns a connected AF_UNIX stream pair, closed on cleanup.
func socketpair(t *testing.T) (int, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func backends(t *testing.T) map[string]api.Watcher {
	t.Helper()
	m := map[string]api.Watcher{
		"select": watcher.NewSelect(),
		"poll":   watcher.NewPoll(),
	}
	for name, w := range platformBackends(t) {
		m[name] = w
	}
	for _, w := range m {
		w := w
		t.Cleanup(func() { w.Close() })
	}
	return m
}

func TestWatchUnwatchRoundTrip(t *testing.T) {
	for name, w := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a, _ := socketpair(t)
			require.NoError(t, w.Watch(a, api.FlagRead|api.FlagWrite))
			require.Equal(t, api.FlagRead|api.FlagWrite, w.Watching(a))
			require.NoError(t, w.Unwatch(a, api.FlagsAll))
			require.Equal(t, api.Flags(0), w.Watching(a))
		})
	}
}

func TestPartialUnwatch(t *testing.T) {
	for name, w := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a, _ := socketpair(t)
			require.NoError(t, w.Watch(a, api.FlagRead|api.FlagWrite))
			require.NoError(t, w.Unwatch(a, api.FlagWrite))
			require.Equal(t, api.FlagRead, w.Watching(a))
		})
	}
}

func TestUnwatchUnknownIsNoop(t *testing.T) {
	for name, w := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, w.Unwatch(42, api.FlagsAll))
			require.Equal(t, api.Flags(0), w.Watching(42))
		})
	}
}

func TestPollReportsReadiness(t *testing.T) {
	for name, w := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a, b := socketpair(t)
			_, err := unix.Write(b, []byte("ping"))
			require.NoError(t, err)
			require.NoError(t, w.Watch(a, api.FlagRead))

			var events []int
			err = w.Poll(func(fd int, flags api.Flags) {
				events = append(events, fd)
				require.NotZero(t, flags&api.FlagRead)
			}, 1000)
			require.NoError(t, err)
			require.Equal(t, []int{a}, events)
		})
	}
}

func TestPollMergesFlagsPerDescriptor(t *testing.T) {
	for name, w := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a, b := socketpair(t)
			_, err := unix.Write(b, []byte("ping"))
			require.NoError(t, err)
			// a is now both readable and writable: exactly one callback
			// must report both conditions.
			require.NoError(t, w.Watch(a, api.FlagRead|api.FlagWrite))

			calls := 0
			err = w.Poll(func(fd int, flags api.Flags) {
				calls++
				require.Equal(t, a, fd)
				require.NotZero(t, flags&api.FlagRead)
				require.NotZero(t, flags&api.FlagWrite)
			}, 1000)
			require.NoError(t, err)
			require.Equal(t, 1, calls)
		})
	}
}

func TestPollCoversEveryReadyDescriptorOnce(t *testing.T) {
	for name, w := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a1, b1 := socketpair(t)
			a2, b2 := socketpair(t)
			for _, fd := range []int{b1, b2} {
				_, err := unix.Write(fd, []byte("x"))
				require.NoError(t, err)
			}
			require.NoError(t, w.Watch(a1, api.FlagRead))
			require.NoError(t, w.Watch(a2, api.FlagRead))

			seen := make(map[int]int)
			err := w.Poll(func(fd int, flags api.Flags) {
				seen[fd]++
			}, 1000)
			require.NoError(t, err)
			require.Equal(t, map[int]int{a1: 1, a2: 1}, seen)
		})
	}
}

func TestPollTimeoutWithoutReadiness(t *testing.T) {
	for name, w := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a, _ := socketpair(t)
			require.NoError(t, w.Watch(a, api.FlagRead))

			calls := 0
			err := w.Poll(func(int, api.Flags) { calls++ }, 20)
			require.NoError(t, err)
			require.Zero(t, calls)
		})
	}
}

func TestUnwatchedDescriptorNotReported(t *testing.T) {
	for name, w := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a, b := socketpair(t)
			_, err := unix.Write(b, []byte("x"))
			require.NoError(t, err)
			require.NoError(t, w.Watch(a, api.FlagRead))
			require.NoError(t, w.Unwatch(a, api.FlagsAll))

			calls := 0
			err = w.Poll(func(int, api.Flags) { calls++ }, 20)
			require.NoError(t, err)
			require.Zero(t, calls)
		})
	}
}

func TestUnwatchInsideCallback(t *testing.T) {
	for name, w := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a, b := socketpair(t)
			_, err := unix.Write(b, []byte("x"))
			require.NoError(t, err)
			require.NoError(t, w.Watch(a, api.FlagRead))

			err = w.Poll(func(fd int, flags api.Flags) {
				require.NoError(t, w.Unwatch(fd, api.FlagsAll))
			}, 1000)
			require.NoError(t, err)
			require.Equal(t, api.Flags(0), w.Watching(a))
		})
	}
}
