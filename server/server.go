// File: server/server.go
// Author: momentics <momentics@gmail.com>
//
// Construction, listener registration, and the accept/admission path.

package server

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/sock"
)

// New builds a Server over the given backend. The zero configuration uses
// the backend-derived blocking policy, the default socket factory, and an
// unbounded poll timeout.
func New(w api.Watcher, opts ...Option) *Server {
	s := &Server{
		w:         w,
		conns:     make(map[int]*entry),
		lnFD:      -1,
		factory:   defaultFactory,
		policy:    defaultPolicy(w),
		timeoutMs: -1,
		log:       logrus.NewEntry(logrus.StandardLogger()).WithField("tag", "sockserver"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// defaultFactory wraps accepted descriptors as stream Sockets.
func defaultFactory(fd int, blocking bool) (*sock.Socket, error) {
	return sock.FromDescriptor(fd, sock.Stream, blocking)
}

// Listen borrows ln as the listening socket and registers it with the
// watcher for read readiness. The socket must be bound; a merely bound
// socket is put into listening mode here. At least one of onConn and
// onEvent must be non-nil; passing neither is a programming error.
func (s *Server) Listen(ln *sock.Socket, onConn ConnFunc, onEvent EventFunc) error {
	if onConn == nil && onEvent == nil {
		panic("server: Listen requires a connection or event callback")
	}
	switch ln.State() {
	case sock.Bound:
		if err := ln.Listen(0); err != nil {
			return err
		}
	case sock.Listening:
	default:
		panic("server: Listen requires a bound socket")
	}

	switch s.policy {
	case AlwaysBlocking:
		if err := ln.SetBlocking(true); err != nil {
			return err
		}
	case AlwaysNonBlocking:
		if err := ln.SetBlocking(false); err != nil {
			return err
		}
	}

	s.ln = ln
	s.lnFD = ln.Descriptor()
	s.onConn = onConn
	s.onEvent = onEvent

	if err := s.w.Watch(s.lnFD, api.FlagRead); err != nil {
		return err
	}
	s.listening = true
	s.log.WithField("fd", s.lnFD).Debug("listener registered")
	return nil
}

// acceptBatch drains the listener: a blocking listener admits exactly one
// connection per readiness report, a non-blocking one admits until
// would-block.
func (s *Server) acceptBatch() {
	for {
		nfd, err := s.ln.Accept()
		if err != nil {
			if !errors.Is(err, sock.ErrWouldBlock) {
				s.log.WithError(err).Debug("accept failed")
			}
			return
		}
		if s.rawAccept != nil {
			s.rawAccept(nfd)
		} else {
			s.admit(nfd)
		}
		if s.ln.Blocking() {
			return
		}
	}
}

// admit wraps the accepted descriptor, asks the connection callback for the
// initial interest, and registers the connection. A zero return vetoes:
// the connection is dropped and never registered.
func (s *Server) admit(nfd int) {
	c, err := s.factory(nfd, s.childBlocking())
	if err != nil {
		s.log.WithError(err).WithField("fd", nfd).Debug("factory failed")
		return
	}

	flags := api.FlagRead
	if s.onConn != nil {
		flags = s.onConn(c)
	}
	if flags == 0 {
		s.log.WithField("fd", nfd).Debug("admission vetoed")
		_ = c.Disconnect()
		return
	}

	if err := s.w.Watch(nfd, flags); err != nil {
		s.log.WithError(err).WithField("fd", nfd).Debug("watch failed")
		_ = c.Disconnect()
		return
	}
	s.conns[nfd] = &entry{flags: flags, sock: c}
	s.log.WithFields(logrus.Fields{"fd": nfd, "flags": flags.String()}).Debug("connection admitted")
}

// childBlocking resolves the blocking mode of an accepted connection under
// the active policy.
func (s *Server) childBlocking() bool {
	switch s.policy {
	case AlwaysBlocking, BlockingOnAccept:
		return true
	case AlwaysNonBlocking:
		return false
	default:
		return s.ln.Blocking()
	}
}
