//go:build linux

// File: watcher/epoll_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7) backend: O(1) registration and removal, no descriptor
// ceiling. Interest bookkeeping lives in a map because the kernel table
// cannot be queried back.

package watcher

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-sock/api"
)

// epollBatch bounds the events drained per Poll call.
const epollBatch = 128

// Epoll is the kernel-notification backend.
type Epoll struct {
	epfd     int
	interest map[int]api.Flags
}

// NewEpoll creates an epoll instance.
func NewEpoll() (*Epoll, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &Epoll{epfd: epfd, interest: make(map[int]api.Flags)}, nil
}

func epollEvents(flags api.Flags) uint32 {
	var ev uint32
	if flags&api.FlagRead != 0 {
		ev |= unix.EPOLLIN
	}
	if flags&api.FlagWrite != 0 {
		ev |= unix.EPOLLOUT
	}
	if flags&api.FlagExcept != 0 {
		ev |= unix.EPOLLPRI
	}
	return ev
}

func epollFlags(events uint32) api.Flags {
	var flags api.Flags
	if events&unix.EPOLLIN != 0 {
		flags |= api.FlagRead
	}
	if events&unix.EPOLLOUT != 0 {
		flags |= api.FlagWrite
	}
	if events&unix.EPOLLPRI != 0 {
		flags |= api.FlagExcept
	}
	if events&unix.EPOLLERR != 0 {
		flags |= api.FlagError
	}
	if events&unix.EPOLLHUP != 0 {
		flags |= api.FlagHangup
	}
	return flags
}

func (w *Epoll) Watch(fd int, flags api.Flags) error {
	ev := unix.EpollEvent{Events: epollEvents(flags), Fd: int32(fd)}
	if err := unix.EpollCtl(w.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return err
	}
	w.interest[fd] = flags & api.InterestMask
	return nil
}

func (w *Epoll) Unwatch(fd int, flags api.Flags) error {
	cur, ok := w.interest[fd]
	if !ok {
		return nil
	}
	next := cur &^ flags
	if next == 0 {
		if err := unix.EpollCtl(w.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
			return err
		}
		delete(w.interest, fd)
		return nil
	}
	ev := unix.EpollEvent{Events: epollEvents(next), Fd: int32(fd)}
	if err := unix.EpollCtl(w.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return err
	}
	w.interest[fd] = next
	return nil
}

func (w *Epoll) Watching(fd int) api.Flags {
	return w.interest[fd]
}

func (w *Epoll) Poll(cb api.EventFunc, timeoutMs int) error {
	var events [epollBatch]unix.EpollEvent
	n, err := unix.EpollWait(w.epfd, events[:], timeoutMs)
	if err == unix.EINTR {
		return nil
	}
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		cb(int(events[i].Fd), epollFlags(events[i].Events))
	}
	return nil
}

func (w *Epoll) Close() error {
	w.interest = nil
	return unix.Close(w.epfd)
}
