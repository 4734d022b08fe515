// File: watcher/notify.go
// Author: momentics <momentics@gmail.com>
//
// Message-driven backend. Readiness is not discovered by a kernel wait but
// delivered asynchronously through Notify, the shape a Windows-style
// message pump produces. Notifications queue up in a FIFO and are drained
// as one batch per Poll, merged per descriptor so the callback still runs
// exactly once per ready descriptor.

package watcher

import (
	"errors"
	"sync"
	"time"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-sock/api"
)

// ErrClosed reports use of a watcher after Close.
var ErrClosed = errors.New("watcher: closed")

// conditionMask covers the flags delivered regardless of registered
// interest.
const conditionMask = api.FlagError | api.FlagHangup | api.FlagInvalid

type notification struct {
	fd    int
	flags api.Flags
}

// Notify adapts asynchronous readiness notifications into the Watcher
// contract. Unlike the other backends it is safe to call Notify from a
// goroutine other than the polling one; Watch/Unwatch/Poll still belong to
// the owner.
type Notify struct {
	mu       sync.Mutex
	interest map[int]api.Flags
	pending  *queue.Queue
	wake     chan struct{}
	closed   bool
}

// NewNotify returns an empty message-driven backend.
func NewNotify() *Notify {
	return &Notify{
		interest: make(map[int]api.Flags),
		pending:  queue.New(),
		wake:     make(chan struct{}, 1),
	}
}

// Notify delivers a readiness notification for fd. Notifications for
// unregistered descriptors are dropped, and readiness bits the registration
// did not ask for are masked out; error-class conditions always pass.
func (w *Notify) Notify(fd int, flags api.Flags) {
	w.mu.Lock()
	cur, ok := w.interest[fd]
	if !ok || w.closed {
		w.mu.Unlock()
		return
	}
	deliver := flags & (cur | conditionMask)
	if deliver == 0 {
		w.mu.Unlock()
		return
	}
	w.pending.Add(notification{fd: fd, flags: deliver})
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Notify) Watch(fd int, flags api.Flags) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.interest[fd] = flags & api.InterestMask
	return nil
}

func (w *Notify) Unwatch(fd int, flags api.Flags) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	cur, ok := w.interest[fd]
	if !ok {
		return nil
	}
	next := cur &^ flags
	if next == 0 {
		delete(w.interest, fd)
		return nil
	}
	w.interest[fd] = next
	return nil
}

func (w *Notify) Watching(fd int) api.Flags {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.interest[fd]
}

// drain empties the FIFO, merging notifications per descriptor in
// first-seen order and re-checking registration, so descriptors unwatched
// after a notification was queued are not dispatched.
func (w *Notify) drain() []notification {
	w.mu.Lock()
	defer w.mu.Unlock()

	var order []notification
	index := make(map[int]int)
	for w.pending.Length() > 0 {
		n := w.pending.Remove().(notification)
		if _, ok := w.interest[n.fd]; !ok {
			continue
		}
		if i, ok := index[n.fd]; ok {
			order[i].flags |= n.flags
			continue
		}
		index[n.fd] = len(order)
		order = append(order, n)
	}
	return order
}

func (w *Notify) Poll(cb api.EventFunc, timeoutMs int) error {
	var timeout <-chan time.Time
	if timeoutMs >= 0 {
		timer := time.NewTimer(time.Duration(timeoutMs) * time.Millisecond)
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		w.mu.Lock()
		closed := w.closed
		w.mu.Unlock()
		if closed {
			return ErrClosed
		}

		if batch := w.drain(); len(batch) > 0 {
			for _, n := range batch {
				cb(n.fd, n.flags)
			}
			return nil
		}

		select {
		case <-w.wake:
		case <-timeout:
			return nil
		}
	}
}

func (w *Notify) Close() error {
	w.mu.Lock()
	w.closed = true
	w.interest = make(map[int]api.Flags)
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return nil
}
