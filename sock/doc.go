// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package sock implements the socket lifecycle abstraction: a Socket owns
// exactly one native descriptor and exposes bind/connect/listen/read/write
// with blocking and non-blocking semantics, backed by the platform address
// resolver.
package sock
