// File: fake/watcher.go
// Author: momentics <momentics@gmail.com>

// Package fake provides test doubles for the api contracts.
package fake

import "github.com/momentics/hioload-sock/api"

// Event is one scripted readiness report.
type Event struct {
	Fd    int
	Flags api.Flags
}

// Watcher is a scripted api.Watcher: tests queue readiness with Ready and
// each Poll drains the queued batch. Registration calls are recorded.
type Watcher struct {
	Interest  map[int]api.Flags
	Watched   []Event // every Watch call, in order
	Unwatched []Event // every Unwatch call, in order

	queue []Event
}

// NewWatcher returns an empty scripted watcher.
func NewWatcher() *Watcher {
	return &Watcher{Interest: make(map[int]api.Flags)}
}

// Ready queues a readiness event for the next Poll.
func (w *Watcher) Ready(fd int, flags api.Flags) {
	w.queue = append(w.queue, Event{Fd: fd, Flags: flags})
}

func (w *Watcher) Watch(fd int, flags api.Flags) error {
	w.Watched = append(w.Watched, Event{Fd: fd, Flags: flags})
	w.Interest[fd] = flags & api.InterestMask
	return nil
}

func (w *Watcher) Unwatch(fd int, flags api.Flags) error {
	w.Unwatched = append(w.Unwatched, Event{Fd: fd, Flags: flags})
	cur, ok := w.Interest[fd]
	if !ok {
		return nil
	}
	if next := cur &^ flags; next != 0 {
		w.Interest[fd] = next
	} else {
		delete(w.Interest, fd)
	}
	return nil
}

func (w *Watcher) Watching(fd int) api.Flags {
	return w.Interest[fd]
}

func (w *Watcher) Poll(cb api.EventFunc, timeoutMs int) error {
	batch := w.queue
	w.queue = nil
	for _, ev := range batch {
		cb(ev.Fd, ev.Flags)
	}
	return nil
}

func (w *Watcher) Close() error {
	w.queue = nil
	w.Interest = make(map[int]api.Flags)
	return nil
}
