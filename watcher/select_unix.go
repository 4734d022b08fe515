//go:build linux || darwin

// File: watcher/select_unix.go
// Author: momentics <momentics@gmail.com>
//
// Bitmask-set backend over select(2). Descriptors live in three fixed-size
// bitmask sets, so the backend is bounded by the platform descriptor
// ceiling and only ever reports read/write/except readiness.

package watcher

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-sock/api"
)

// fdSetSize is the descriptor ceiling of one unix.FdSet.
var fdSetSize = func() int {
	var s unix.FdSet
	return len(s.Bits) * int(unsafe.Sizeof(s.Bits[0])) * 8
}()

var selectBankFlags = [3]api.Flags{api.FlagRead, api.FlagWrite, api.FlagExcept}

// selectBank is one bitmask set plus the highest descriptor it holds.
type selectBank struct {
	set unix.FdSet
	max int // -1 when the set is empty
}

// Select is the bitmask-set backend. The highest registered descriptor is
// tracked per set so Poll never scans the full ceiling; the maximum is
// recomputed by a downward linear scan only when the previous maximum is
// removed.
type Select struct {
	banks [3]selectBank
}

// NewSelect returns an empty bitmask-set backend.
func NewSelect() *Select {
	w := &Select{}
	for i := range w.banks {
		w.banks[i].max = -1
	}
	return w
}

func (w *Select) Watch(fd int, flags api.Flags) error {
	if fd < 0 || fd >= fdSetSize {
		return unix.EINVAL
	}
	for i := range w.banks {
		if flags&selectBankFlags[i] == 0 {
			continue
		}
		w.banks[i].set.Set(fd)
		if fd > w.banks[i].max {
			w.banks[i].max = fd
		}
	}
	return nil
}

func (w *Select) Unwatch(fd int, flags api.Flags) error {
	if fd < 0 || fd >= fdSetSize {
		return unix.EINVAL
	}
	for i := range w.banks {
		b := &w.banks[i]
		if flags&selectBankFlags[i] == 0 || !b.set.IsSet(fd) {
			continue
		}
		b.set.Clear(fd)
		if fd == b.max {
			b.max = -1
			for j := fd - 1; j >= 0; j-- {
				if b.set.IsSet(j) {
					b.max = j
					break
				}
			}
		}
	}
	return nil
}

func (w *Select) Watching(fd int) api.Flags {
	if fd < 0 || fd >= fdSetSize {
		return 0
	}
	var flags api.Flags
	for i := range w.banks {
		if w.banks[i].set.IsSet(fd) {
			flags |= selectBankFlags[i]
		}
	}
	return flags
}

func (w *Select) Poll(cb api.EventFunc, timeoutMs int) error {
	// select(2) mutates its sets in place, so Poll works on copies; the
	// registration table stays intact and cb may mutate it freely.
	read, write, except := w.banks[0].set, w.banks[1].set, w.banks[2].set

	nfd := 0
	for i := range w.banks {
		if w.banks[i].max+1 > nfd {
			nfd = w.banks[i].max + 1
		}
	}

	var tv *unix.Timeval
	if timeoutMs >= 0 {
		t := unix.NsecToTimeval(int64(timeoutMs) * 1e6)
		tv = &t
	}

	n, err := unix.Select(nfd, &read, &write, &except, tv)
	if err == unix.EINTR {
		return nil
	}
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	ready := [3]*unix.FdSet{&read, &write, &except}
	for fd := 0; fd < nfd; fd++ {
		var flags api.Flags
		for i, set := range ready {
			if set.IsSet(fd) {
				flags |= selectBankFlags[i]
			}
		}
		if flags != 0 {
			cb(fd, flags)
		}
	}
	return nil
}

func (w *Select) Close() error {
	for i := range w.banks {
		w.banks[i].set.Zero()
		w.banks[i].max = -1
	}
	return nil
}
