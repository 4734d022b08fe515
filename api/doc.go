// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package api defines the cross-package contracts of hioload-sock: the
// readiness flag set shared by every watcher backend and the Watcher
// interface all backends implement.
package api
