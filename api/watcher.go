// File: api/watcher.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral readiness multiplexer contract. Concrete backends live
// in the watcher package; one backend per build is the intended shape.

package api

// EventFunc is invoked by Poll exactly once per ready descriptor with the
// flags that fired for it during the current batch.
type EventFunc func(fd int, flags Flags)

// Watcher is the readiness-multiplexing contract every backend satisfies.
//
// A Watcher instance is not safe for concurrent use: registration and
// polling belong to the single goroutine that owns the instance.
type Watcher interface {
	// Watch registers interest in the given flags for fd. Registering a
	// descriptor that is already registered is undefined; callers must
	// Unwatch first.
	Watch(fd int, flags Flags) error

	// Unwatch removes the given interest bits from fd. The registration is
	// dropped entirely once no bits remain; passing FlagsAll drops it
	// unconditionally. Unwatching an unknown descriptor is a no-op.
	Unwatch(fd int, flags Flags) error

	// Watching reports the currently registered interest for fd, zero when
	// the descriptor is not registered.
	Watching(fd int) Flags

	// Poll blocks until at least one registered descriptor is ready or the
	// timeout elapses, then invokes cb once per ready descriptor. A negative
	// timeout blocks indefinitely. A timeout with no events is not an
	// error. Mutating the registration table from within cb is permitted.
	Poll(cb EventFunc, timeoutMs int) error

	// Close releases backend resources. The watcher must not be used after.
	Close() error
}
