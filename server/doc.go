// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package server composes a watcher backend with a borrowed listening
// Socket: it runs the accept loop, owns the accepted connections, and
// dispatches per-descriptor readiness to user callbacks whose return
// values drive the registration table.
package server
