// File: sock/sock.go
// Author: momentics <momentics@gmail.com>
//
// Socket: one native descriptor, a small lifecycle state machine, and
// blocking/non-blocking I/O on top of the address resolver.

package sock

import (
	"fmt"
	"net/netip"
	"runtime"

	"golang.org/x/sys/unix"
)

// defaultBacklog is used when Listen is invoked implicitly.
const defaultBacklog = 128

// Socket owns exactly one native descriptor at a time. Ownership transfers
// only through Accept (a fresh descriptor is wrapped into a new Socket) or
// Disconnect (the descriptor is closed). A Socket value is not safe for
// concurrent use.
type Socket struct {
	fd       int
	kind     Kind
	state    State
	blocking bool
	onError  ErrorFunc
}

// NewStream returns an unconnected stream Socket in blocking mode.
func NewStream() *Socket { return newSocket(Stream) }

// NewDatagram returns an unconnected datagram Socket in blocking mode.
func NewDatagram() *Socket { return newSocket(Datagram) }

func newSocket(kind Kind) *Socket {
	s := &Socket{fd: -1, kind: kind, blocking: true}
	// Best-effort descriptor cleanup if the owner leaks the Socket. The
	// finalizer never propagates close failures.
	runtime.SetFinalizer(s, func(s *Socket) { _ = s.Disconnect() })
	return s
}

// FromDescriptor wraps an already-connected native descriptor, as produced
// by Accept, into an owning Socket and applies the requested blocking mode.
func FromDescriptor(fd int, kind Kind, blocking bool) (*Socket, error) {
	s := newSocket(kind)
	if err := sysSetBlocking(fd, blocking); err != nil {
		sysClose(fd)
		return nil, &Error{Sock: s, Errno: toErrno(err), Desc: "set blocking mode: " + err.Error()}
	}
	s.fd = fd
	s.blocking = blocking
	s.state = Connected
	return s, nil
}

// Descriptor returns the native descriptor, -1 when unconnected.
func (s *Socket) Descriptor() int { return s.fd }

// Kind returns the transport of the Socket.
func (s *Socket) Kind() Kind { return s.kind }

// State returns the current lifecycle state.
func (s *Socket) State() State { return s.state }

// Blocking reports the blocking mode, pending or applied.
func (s *Socket) Blocking() bool { return s.blocking }

// OnError registers the error-handling callback. A true return from the
// callback retries the failing operation; false abandons it.
func (s *Socket) OnError(fn ErrorFunc) { s.onError = fn }

// requireState panics when the Socket is not in one of the allowed states.
// Lifecycle misuse is a programming error, not a recoverable condition.
func (s *Socket) requireState(op string, allowed ...State) {
	for _, st := range allowed {
		if s.state == st {
			return
		}
	}
	panic(fmt.Sprintf("sock: %s called on a %s socket", op, s.state))
}

// Bind resolves host:service with the passive intent and binds the first
// candidate that accepts a descriptor. Legal only from Unconnected. All
// candidates failing surfaces the error of the last attempt.
func (s *Socket) Bind(host, service string) error {
	s.requireState("Bind", Unconnected)
	for {
		s.state = LookingUpHost
		cands, err := Resolve(host, service, FamilyAny, s.kind, true)
		if err != nil {
			s.state = Unconnected
			if retry, ferr := s.resolveError(err); !retry {
				return ferr
			}
			continue
		}
		s.state = Connecting
		errno, ok := s.attempt(cands, sysBind)
		if ok {
			s.state = Bound
			return nil
		}
		s.state = Unconnected
		if retry, ferr := s.handleError("bind", errno); !retry {
			return ferr
		}
	}
}

// Connect resolves host:service and connects to the first reachable
// candidate. Legal only from Unconnected and only on a blocking Socket:
// asynchronous connect is out of scope, so connecting a non-blocking
// Socket is a programming error.
func (s *Socket) Connect(host, service string) error {
	s.requireState("Connect", Unconnected)
	if !s.blocking {
		panic("sock: Connect requires a blocking socket")
	}
	for {
		s.state = LookingUpHost
		cands, err := Resolve(host, service, FamilyAny, s.kind, false)
		if err != nil {
			s.state = Unconnected
			if retry, ferr := s.resolveError(err); !retry {
				return ferr
			}
			continue
		}
		s.state = Connecting
		errno, ok := s.attempt(cands, sysConnect)
		if ok {
			s.state = Connected
			return nil
		}
		s.state = Unconnected
		if retry, ferr := s.handleError("connect", errno); !retry {
			return ferr
		}
	}
}

// attempt walks the candidate list in order, creating a descriptor and
// applying op until one candidate succeeds. On failure the errno of the
// last attempted candidate is reported.
func (s *Socket) attempt(cands []Candidate, op func(int, Candidate) error) (unix.Errno, bool) {
	errno := unix.EADDRNOTAVAIL
	for _, c := range cands {
		fd, err := sysSocket(c, s.blocking)
		if err != nil {
			errno = toErrno(err)
			continue
		}
		if err := op(fd, c); err != nil {
			errno = toErrno(err)
			sysClose(fd)
			continue
		}
		s.fd = fd
		return 0, true
	}
	return errno, false
}

// resolveError maps a resolution failure onto the platform error path.
func (s *Socket) resolveError(err error) (retry bool, ferr error) {
	desc := err.Error()
	if s.onError != nil && s.onError(s, unix.EADDRNOTAVAIL, desc) {
		return true, nil
	}
	return false, &Error{Sock: s, Errno: unix.EADDRNOTAVAIL, Desc: desc}
}

// Listen marks the bound descriptor for incoming-connection queuing. Legal
// only from Bound.
func (s *Socket) Listen(backlog int) error {
	s.requireState("Listen", Bound)
	if backlog <= 0 {
		backlog = defaultBacklog
	}
	for {
		if err := sysListen(s.fd, backlog); err != nil {
			if retry, ferr := s.handleError("listen", toErrno(err)); !retry {
				return ferr
			}
			continue
		}
		s.state = Listening
		return nil
	}
}

// Accept dequeues one pending connection and returns its raw descriptor.
// Ownership of the descriptor passes to the caller, normally by wrapping
// it with FromDescriptor. On a non-blocking listener with no pending
// connection, ErrWouldBlock is returned.
func (s *Socket) Accept() (int, error) {
	s.requireState("Accept", Listening)
	for {
		nfd, err := sysAccept(s.fd)
		if err == nil {
			return nfd, nil
		}
		switch errno := toErrno(err); errno {
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			return -1, ErrWouldBlock
		default:
			if retry, ferr := s.handleError("accept", errno); !retry {
				return -1, ferr
			}
		}
	}
}

// Read fills p from the descriptor. A blocking Socket loops until p is
// full, the peer closes, or a non-recoverable error occurs. A non-blocking
// Socket transfers what is available and returns the partial count; callers
// re-invoke on the next readiness.
func (s *Socket) Read(p []byte) (int, error) {
	s.requireState("Read", Connected, Bound, Listening)
	total := 0
	for total < len(p) {
		n, err := sysRead(s.fd, p[total:])
		if err != nil {
			switch errno := toErrno(err); errno {
			case unix.EINTR:
				continue
			case unix.EAGAIN:
				return total, nil
			default:
				if retry, ferr := s.handleError("read", errno); !retry {
					return total, ferr
				}
				continue
			}
		}
		if n == 0 {
			break // peer closed
		}
		total += n
	}
	return total, nil
}

// Write sends p over the descriptor. A blocking Socket loops until all of
// p is transferred or a non-recoverable error occurs. A non-blocking Socket
// transfers what the send buffer admits and returns the partial count.
func (s *Socket) Write(p []byte) (int, error) {
	s.requireState("Write", Connected, Bound, Listening)
	total := 0
	for total < len(p) {
		n, err := sysWrite(s.fd, p[total:])
		if err != nil {
			switch errno := toErrno(err); errno {
			case unix.EINTR:
				continue
			case unix.EAGAIN:
				return total, nil
			default:
				if retry, ferr := s.handleError("write", errno); !retry {
					return total, ferr
				}
				continue
			}
		}
		total += n
	}
	return total, nil
}

// Shutdown tears down one or both directions of an active connection.
func (s *Socket) Shutdown(how How) error {
	s.requireState("Shutdown", Connected, Bound, Listening)
	if err := sysShutdown(s.fd, how); err != nil {
		if _, ferr := s.handleError("shutdown", toErrno(err)); ferr != nil {
			return ferr
		}
	}
	return nil
}

// Disconnect releases the descriptor and resets the Socket to Unconnected.
// It is idempotent: disconnecting an unconnected Socket is a no-op.
func (s *Socket) Disconnect() error {
	if s.fd < 0 {
		s.state = Unconnected
		return nil
	}
	s.state = Closing
	fd := s.fd
	s.fd = -1
	err := sysClose(fd)
	s.state = Unconnected
	if err != nil {
		return &Error{Sock: s, Errno: toErrno(err), Desc: "close: " + err.Error()}
	}
	return nil
}

// Close implements io.Closer as an alias of Disconnect.
func (s *Socket) Close() error { return s.Disconnect() }

// SetBlocking toggles the descriptor's blocking mode. Without a descriptor
// only the pending flag is updated, to be applied once bound or connected.
func (s *Socket) SetBlocking(blocking bool) error {
	if s.fd >= 0 {
		if err := sysSetBlocking(s.fd, blocking); err != nil {
			if _, ferr := s.handleError("set blocking mode", toErrno(err)); ferr != nil {
				return ferr
			}
		}
	}
	s.blocking = blocking
	return nil
}

// LocalAddr queries the platform for the bound endpoint.
func (s *Socket) LocalAddr() (netip.AddrPort, error) {
	s.requireState("LocalAddr", Connected, Bound, Listening)
	ap, err := sysLocalAddr(s.fd)
	if err != nil {
		return netip.AddrPort{}, &Error{Sock: s, Errno: toErrno(err), Desc: "local address: " + err.Error()}
	}
	return ap, nil
}

// RemoteAddr queries the platform for the peer endpoint.
func (s *Socket) RemoteAddr() (netip.AddrPort, error) {
	s.requireState("RemoteAddr", Connected)
	ap, err := sysRemoteAddr(s.fd)
	if err != nil {
		return netip.AddrPort{}, &Error{Sock: s, Errno: toErrno(err), Desc: "remote address: " + err.Error()}
	}
	return ap, nil
}
