//go:build linux || darwin

// File: server/server_test.go
// Author: momentics <momentics@gmail.com>
//
// End-to-end accept/dispatch tests over the dynamic-array backend and
// loopback TCP.

package server_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/server"
	"github.com/momentics/hioload-sock/sock"
	"github.com/momentics/hioload-sock/watcher"
)

// newListener returns a non-blocking listening socket on an ephemeral
// loopback port plus its port string.
func newListener(t *testing.T) (*sock.Socket, string) {
	t.Helper()
	ln := sock.NewStream()
	require.NoError(t, ln.SetBlocking(false))
	require.NoError(t, ln.Bind("127.0.0.1", "0"))
	require.NoError(t, ln.Listen(8))
	t.Cleanup(func() { ln.Disconnect() })
	ap, err := ln.LocalAddr()
	require.NoError(t, err)
	return ln, strconv.Itoa(int(ap.Port()))
}

func dial(t *testing.T, port string) *sock.Socket {
	t.Helper()
	c := sock.NewStream()
	require.NoError(t, c.Connect("127.0.0.1", port))
	t.Cleanup(func() { c.Disconnect() })
	return c
}

func TestEchoPairScenario(t *testing.T) {
	w := watcher.NewPoll()
	defer w.Close()
	srv := server.New(w, server.WithPollTimeout(2000))

	ln, port := newListener(t)

	var childFD int
	connCalls := 0
	onConn := func(s *sock.Socket) api.Flags {
		connCalls++
		childFD = s.Descriptor()
		return api.FlagRead
	}
	require.NoError(t, srv.Listen(ln, onConn, func(s *sock.Socket, watched, signalled api.Flags) api.Flags {
		return watched
	}))

	dial(t, port)
	require.NoError(t, srv.Poll())

	require.Equal(t, 1, connCalls)
	require.Equal(t, 1, srv.NumConns())
	require.True(t, srv.Managed(childFD))
	require.Equal(t, api.FlagRead, w.Watching(childFD))
}

func TestAdmissionVeto(t *testing.T) {
	w := watcher.NewPoll()
	defer w.Close()
	srv := server.New(w, server.WithPollTimeout(2000))

	ln, port := newListener(t)

	var childFD int
	require.NoError(t, srv.Listen(ln, func(s *sock.Socket) api.Flags {
		childFD = s.Descriptor()
		return 0
	}, nil))

	dial(t, port)
	require.NoError(t, srv.Poll())

	require.Zero(t, srv.NumConns())
	require.False(t, srv.Managed(childFD))
	require.Equal(t, api.Flags(0), w.Watching(childFD))
}

func TestBatchAcceptNonBlockingListener(t *testing.T) {
	w := watcher.NewPoll()
	defer w.Close()
	srv := server.New(w, server.WithPollTimeout(2000))

	ln, port := newListener(t)

	connCalls := 0
	require.NoError(t, srv.Listen(ln, func(s *sock.Socket) api.Flags {
		connCalls++
		return api.FlagRead
	}, nil))

	for i := 0; i < 3; i++ {
		dial(t, port)
	}
	require.NoError(t, srv.Poll())

	require.Equal(t, 3, connCalls)
	require.Equal(t, 3, srv.NumConns())
}

func TestSelfRemoval(t *testing.T) {
	w := watcher.NewPoll()
	defer w.Close()
	srv := server.New(w, server.WithPollTimeout(2000))

	ln, port := newListener(t)

	var childFD int
	onConn := func(s *sock.Socket) api.Flags {
		childFD = s.Descriptor()
		return api.FlagRead
	}
	onEvent := func(s *sock.Socket, watched, signalled api.Flags) api.Flags {
		// Drain, hang up on ourselves, and ask for removal.
		buf := make([]byte, 16)
		s.Read(buf)
		s.Disconnect()
		return 0
	}
	require.NoError(t, srv.Listen(ln, onConn, onEvent))

	c := dial(t, port)
	require.NoError(t, srv.Poll()) // admission
	require.Equal(t, 1, srv.NumConns())

	_, err := c.Write([]byte("bye"))
	require.NoError(t, err)
	require.NoError(t, srv.Poll()) // dispatch + self-removal

	require.Zero(t, srv.NumConns())
	require.False(t, srv.Managed(childFD))
	require.Equal(t, api.Flags(0), w.Watching(childFD))
}

func TestEventCallbackRewatchesInterest(t *testing.T) {
	w := watcher.NewPoll()
	defer w.Close()
	srv := server.New(w, server.WithPollTimeout(2000))

	ln, port := newListener(t)

	var childFD int
	onConn := func(s *sock.Socket) api.Flags {
		childFD = s.Descriptor()
		return api.FlagRead
	}
	onEvent := func(s *sock.Socket, watched, signalled api.Flags) api.Flags {
		buf := make([]byte, 16)
		s.Read(buf)
		return api.FlagRead | api.FlagWrite
	}
	require.NoError(t, srv.Listen(ln, onConn, onEvent))

	c := dial(t, port)
	require.NoError(t, srv.Poll())

	_, err := c.Write([]byte("more"))
	require.NoError(t, err)
	require.NoError(t, srv.Poll())

	require.Equal(t, 1, srv.NumConns())
	require.Equal(t, api.FlagRead|api.FlagWrite, w.Watching(childFD))
}

func TestListenAutoListensBoundSocket(t *testing.T) {
	w := watcher.NewPoll()
	defer w.Close()
	srv := server.New(w)

	ln := sock.NewStream()
	require.NoError(t, ln.SetBlocking(false))
	require.NoError(t, ln.Bind("127.0.0.1", "0"))
	defer ln.Disconnect()

	require.NoError(t, srv.Listen(ln, func(*sock.Socket) api.Flags { return api.FlagRead }, nil))
	require.Equal(t, sock.Listening, ln.State())
	require.Equal(t, api.FlagRead, w.Watching(ln.Descriptor()))
}

func TestBlockPolicyChildModes(t *testing.T) {
	cases := []struct {
		name     string
		policy   server.BlockPolicy
		blocking bool
	}{
		{"always-non-blocking", server.AlwaysNonBlocking, false},
		{"blocking-on-accept", server.BlockingOnAccept, true},
		{"inherit-on-accept", server.InheritOnAccept, false}, // listener is non-blocking
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := watcher.NewPoll()
			defer w.Close()
			srv := server.New(w, server.WithPollTimeout(2000), server.WithBlockPolicy(tc.policy))

			ln, port := newListener(t)

			var child *sock.Socket
			require.NoError(t, srv.Listen(ln, func(s *sock.Socket) api.Flags {
				child = s
				return api.FlagRead
			}, nil))

			dial(t, port)
			require.NoError(t, srv.Poll())

			require.NotNil(t, child)
			require.Equal(t, tc.blocking, child.Blocking())
		})
	}
}
