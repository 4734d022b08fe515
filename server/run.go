// File: server/run.go
// Author: momentics <momentics@gmail.com>
//
// The dispatch loop: one readiness batch per Poll, listener readiness
// feeding the accept path and every other descriptor feeding the per-event
// callback.

package server

import (
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/sock"
)

// Poll processes one readiness batch: it blocks inside the watcher until
// readiness or the configured timeout, then dispatches every reported
// descriptor. Calling Poll before Listen is a programming error.
func (s *Server) Poll() error {
	if !s.listening {
		panic("server: Poll called before Listen")
	}
	return s.w.Poll(s.dispatch, s.timeoutMs)
}

// Run loops Poll indefinitely, yielding the thread between batches. It
// returns the first poll error; there is no in-band cancellation — closing
// the watched descriptors is the way to wind a server down.
func (s *Server) Run() error {
	if !s.listening {
		panic("server: Run called before Listen")
	}
	for {
		if err := s.Poll(); err != nil {
			return err
		}
		runtime.Gosched()
	}
}

// dispatch routes one ready descriptor. Descriptors not managed by this
// server are silently ignored.
func (s *Server) dispatch(fd int, signalled api.Flags) {
	if fd == s.lnFD {
		s.acceptBatch()
		return
	}

	ent, ok := s.conns[fd]
	if !ok {
		return
	}

	next := ent.flags
	if s.onEvent != nil {
		next = s.onEvent(ent.sock, ent.flags, signalled)
	}

	// A hangup, a zero return, or a callback that disconnected the socket
	// itself all release the connection.
	if signalled&api.FlagHangup != 0 || next == 0 || ent.sock.State() == sock.Unconnected {
		if err := s.w.Unwatch(fd, api.FlagsAll); err != nil {
			s.log.WithError(err).WithField("fd", fd).Debug("unwatch failed")
		}
		delete(s.conns, fd)
		_ = ent.sock.Disconnect()
		s.log.WithField("fd", fd).Debug("connection released")
		return
	}

	if next != ent.flags {
		if err := s.w.Unwatch(fd, api.FlagsAll); err != nil {
			s.log.WithError(err).WithField("fd", fd).Debug("unwatch failed")
		}
		if err := s.w.Watch(fd, next); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{"fd": fd, "flags": next.String()}).Debug("rewatch failed")
			delete(s.conns, fd)
			_ = ent.sock.Disconnect()
			return
		}
		ent.flags = next
	}
}
