//go:build linux || darwin

// File: watcher/poll_unix.go
// Author: momentics <momentics@gmail.com>
//
// Dynamic-array backend over poll(2). Registrations live in a slice kept
// sorted by descriptor for binary-search lookup; insertion marks the slice
// unsorted and re-sorting is deferred to the next lookup, trading insertion
// cost for amortized lookup cost. No descriptor ceiling.

package watcher

import (
	"sort"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-sock/api"
)

// Poll is the dynamic-array backend. It reports the full flag set,
// including error, hangup and invalid conditions.
type Poll struct {
	fds    []unix.PollFd
	sorted bool
}

// NewPoll returns an empty dynamic-array backend.
func NewPoll() *Poll {
	return &Poll{sorted: true}
}

func pollEvents(flags api.Flags) int16 {
	var ev int16
	if flags&api.FlagRead != 0 {
		ev |= unix.POLLIN
	}
	if flags&api.FlagWrite != 0 {
		ev |= unix.POLLOUT
	}
	if flags&api.FlagExcept != 0 {
		ev |= unix.POLLPRI
	}
	return ev
}

func pollFlags(revents int16) api.Flags {
	var flags api.Flags
	if revents&unix.POLLIN != 0 {
		flags |= api.FlagRead
	}
	if revents&unix.POLLOUT != 0 {
		flags |= api.FlagWrite
	}
	if revents&unix.POLLPRI != 0 {
		flags |= api.FlagExcept
	}
	if revents&unix.POLLERR != 0 {
		flags |= api.FlagError
	}
	if revents&unix.POLLHUP != 0 {
		flags |= api.FlagHangup
	}
	if revents&unix.POLLNVAL != 0 {
		flags |= api.FlagInvalid
	}
	return flags
}

// lookup sorts lazily, then binary-searches for fd.
func (w *Poll) lookup(fd int) (int, bool) {
	if !w.sorted {
		sort.Slice(w.fds, func(i, j int) bool { return w.fds[i].Fd < w.fds[j].Fd })
		w.sorted = true
	}
	i := sort.Search(len(w.fds), func(i int) bool { return w.fds[i].Fd >= int32(fd) })
	return i, i < len(w.fds) && w.fds[i].Fd == int32(fd)
}

func (w *Poll) Watch(fd int, flags api.Flags) error {
	w.fds = append(w.fds, unix.PollFd{Fd: int32(fd), Events: pollEvents(flags)})
	w.sorted = false
	return nil
}

func (w *Poll) Unwatch(fd int, flags api.Flags) error {
	i, ok := w.lookup(fd)
	if !ok {
		return nil
	}
	w.fds[i].Events &^= pollEvents(flags)
	if w.fds[i].Events == 0 {
		// Ordered removal keeps the slice sorted.
		w.fds = append(w.fds[:i], w.fds[i+1:]...)
	}
	return nil
}

func (w *Poll) Watching(fd int) api.Flags {
	i, ok := w.lookup(fd)
	if !ok {
		return 0
	}
	var flags api.Flags
	if w.fds[i].Events&unix.POLLIN != 0 {
		flags |= api.FlagRead
	}
	if w.fds[i].Events&unix.POLLOUT != 0 {
		flags |= api.FlagWrite
	}
	if w.fds[i].Events&unix.POLLPRI != 0 {
		flags |= api.FlagExcept
	}
	return flags
}

func (w *Poll) Poll(cb api.EventFunc, timeoutMs int) error {
	n, err := unix.Poll(w.fds, timeoutMs)
	if err == unix.EINTR {
		return nil
	}
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	// Snapshot the ready set before dispatch: cb may watch or unwatch
	// descriptors, which mutates w.fds underneath an open iteration.
	type readyEntry struct {
		fd    int
		flags api.Flags
	}
	ready := make([]readyEntry, 0, n)
	for i := range w.fds {
		if w.fds[i].Revents != 0 {
			ready = append(ready, readyEntry{int(w.fds[i].Fd), pollFlags(w.fds[i].Revents)})
		}
	}
	for _, r := range ready {
		cb(r.fd, r.flags)
	}
	return nil
}

func (w *Poll) Close() error {
	w.fds = nil
	w.sorted = true
	return nil
}
