//go:build linux || darwin

// File: watcher/select_test.go
// Author: momentics <momentics@gmail.com>

package watcher_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/watcher"
)

// Removing the highest registered descriptor forces the backend to
// recompute its per-set maximum; readiness on the remaining lower
// descriptor must still be reported.
func TestSelectMaxRecomputeAfterRemoval(t *testing.T) {
	w := watcher.NewSelect()
	defer w.Close()

	low, lowPeer := socketpair(t)
	high, _ := socketpair(t)
	if high <= low {
		t.Skip("descriptor allocation not monotonic in this environment")
	}

	require.NoError(t, w.Watch(low, api.FlagRead))
	require.NoError(t, w.Watch(high, api.FlagRead))
	require.NoError(t, w.Unwatch(high, api.FlagsAll))

	_, err := unix.Write(lowPeer, []byte("x"))
	require.NoError(t, err)

	var got []int
	require.NoError(t, w.Poll(func(fd int, flags api.Flags) {
		got = append(got, fd)
	}, 1000))
	require.Equal(t, []int{low}, got)
}

func TestSelectRejectsDescriptorBeyondCeiling(t *testing.T) {
	w := watcher.NewSelect()
	defer w.Close()
	require.Error(t, w.Watch(1 << 20, api.FlagRead))
	require.Error(t, w.Watch(-1, api.FlagRead))
}

// The bitmask-set backend never reports condition flags, only
// read/write/except.
func TestSelectReportsInterestSubsetOnly(t *testing.T) {
	w := watcher.NewSelect()
	defer w.Close()

	a, b := socketpair(t)
	require.NoError(t, w.Watch(a, api.FlagsAll))
	require.Equal(t, api.FlagRead|api.FlagWrite|api.FlagExcept, w.Watching(a))

	require.NoError(t, unix.Close(b))
	require.NoError(t, w.Poll(func(fd int, flags api.Flags) {
		require.Zero(t, flags&(api.FlagError|api.FlagHangup|api.FlagInvalid))
	}, 1000))
}
