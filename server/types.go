// File: server/types.go
// Author: momentics <momentics@gmail.com>
//
// Server state and the callback shapes of the accept/dispatch protocol.

package server

import (
	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/sock"
)

// ConnFunc decides admission of a freshly accepted connection. Its return
// value is the initial watch interest; zero vetoes, the connection is
// closed and never registered.
type ConnFunc func(s *sock.Socket) api.Flags

// EventFunc handles readiness on an admitted connection. It receives the
// currently watched interest and the newly signalled flags; its return
// value is the new interest. Returning the watched value unchanged is a
// no-op, zero requests removal, and any other value re-registers the
// descriptor with the new interest.
type EventFunc func(s *sock.Socket, watched, signalled api.Flags) api.Flags

// RawAcceptFunc overrides the native-accept step. It receives the raw
// descriptor of an accepted connection and takes over its ownership; the
// default implementation wraps the descriptor via the factory and proceeds
// to the ConnFunc.
type RawAcceptFunc func(fd int)

// Factory constructs the Socket for an accepted descriptor.
type Factory func(fd int, blocking bool) (*sock.Socket, error)

// BlockPolicy selects the blocking mode of the listener and of accepted
// connections. The default is derived from the backend.
type BlockPolicy int

const (
	// AlwaysBlocking forces the listener and accepted connections into
	// blocking mode.
	AlwaysBlocking BlockPolicy = iota
	// AlwaysNonBlocking forces both into non-blocking mode.
	AlwaysNonBlocking
	// InheritOnAccept leaves the listener alone; accepted connections
	// inherit its mode.
	InheritOnAccept
	// BlockingOnAccept leaves the listener alone; accepted connections are
	// always created blocking.
	BlockingOnAccept
)

// entry is one admitted connection: the interest currently registered with
// the watcher and the exclusively owned Socket.
type entry struct {
	flags api.Flags
	sock  *sock.Socket
}

// Server is a single-threaded, synchronous accept/dispatch loop over one
// watcher backend. Listen, Poll and Run are non-reentrant: concurrent use
// of one Server from multiple goroutines is undefined.
type Server struct {
	w     api.Watcher
	conns map[int]*entry

	// The listener is borrowed: its lifetime belongs to the caller and the
	// server never disconnects it.
	ln   *sock.Socket
	lnFD int

	factory   Factory
	rawAccept RawAcceptFunc
	onConn    ConnFunc
	onEvent   EventFunc

	policy    BlockPolicy
	timeoutMs int
	listening bool
	log       *logrus.Entry
}

// NumConns reports the number of admitted connections currently owned by
// the server.
func (s *Server) NumConns() int { return len(s.conns) }

// Managed reports whether fd is an admitted connection of this server.
func (s *Server) Managed(fd int) bool {
	_, ok := s.conns[fd]
	return ok
}

// Watcher exposes the backend, mainly for inspection in tests.
func (s *Server) Watcher() api.Watcher { return s.w }
