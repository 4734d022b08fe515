// File: sock/error.go
// Author: momentics <momentics@gmail.com>
//
// Platform error routing. Every recoverable platform failure funnels
// through the Socket's error callback; without one, a descriptor-carrying
// Error is surfaced to the caller.

package sock

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// ErrWouldBlock reports that a non-blocking operation cannot proceed
// without blocking. It is a flow-control condition, not a failure: Accept
// returns it when the pending-connection queue is empty, and the read/write
// loops stop early on it, returning the partial transfer count.
var ErrWouldBlock = errors.New("sock: operation would block")

// ErrorFunc decides how a platform failure on a Socket is handled. A true
// return asks the failing operation to retry; false abandons it and the
// error is surfaced to the caller.
type ErrorFunc func(s *Socket, errno unix.Errno, desc string) bool

// Error is the fatal form of a platform failure: it carries the
// originating Socket, the native error code and a translated description.
type Error struct {
	Sock  *Socket
	Errno unix.Errno
	Desc  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("sock: %s (errno %d)", e.Desc, int(e.Errno))
}

// Unwrap exposes the errno so callers can match with errors.Is.
func (e *Error) Unwrap() error { return e.Errno }

// handleError routes a platform failure through the registered callback.
// It reports whether the surrounding operation should retry; when it should
// not, err carries the surfaced Error.
func (s *Socket) handleError(op string, errno unix.Errno) (retry bool, err error) {
	desc := op + ": " + errno.Error()
	if s.onError != nil && s.onError(s, errno, desc) {
		return true, nil
	}
	return false, &Error{Sock: s, Errno: errno, Desc: desc}
}

// toErrno unpacks the unix.Errno from a syscall error, EIO when the error
// carries no errno at all.
func toErrno(err error) unix.Errno {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return errno
	}
	return unix.EIO
}
