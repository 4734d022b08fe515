// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package watcher provides the concrete readiness-multiplexing backends
// behind the api.Watcher contract: a bitmask-set backend bounded by the
// fixed descriptor ceiling, a dynamic-array backend with no ceiling, the
// Linux epoll backend, and a message-driven backend fed by asynchronous
// notifications. One backend per build target is the intended shape; New
// returns the platform default.
package watcher
