// File: api/flags.go
// Author: momentics <momentics@gmail.com>
//
// Readiness flag bitset shared by all watcher backends.

package api

import "strings"

// Flags is a bitset of readiness conditions a descriptor can signal.
//
// FlagRead, FlagWrite and FlagExcept may be requested as interest when
// registering a descriptor. FlagError, FlagHangup and FlagInvalid are
// condition flags: backends that can observe them report them regardless
// of the registered interest. The bitmask-set backend only ever reports
// the first three.
type Flags uint32

const (
	FlagRead    Flags = 1 << iota // descriptor readable without blocking
	FlagWrite                     // descriptor writable without blocking
	FlagExcept                    // exceptional condition (urgent data)
	FlagError                     // error condition on the descriptor
	FlagHangup                    // peer hung up
	FlagInvalid                   // descriptor not open
)

// FlagsAll covers every flag, interest and condition bits alike.
const FlagsAll = FlagRead | FlagWrite | FlagExcept | FlagError | FlagHangup | FlagInvalid

// InterestMask selects the bits that are meaningful as registered interest.
const InterestMask = FlagRead | FlagWrite | FlagExcept

var flagNames = []struct {
	bit  Flags
	name string
}{
	{FlagRead, "read"},
	{FlagWrite, "write"},
	{FlagExcept, "except"},
	{FlagError, "error"},
	{FlagHangup, "hangup"},
	{FlagInvalid, "invalid"},
}

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for _, fn := range flagNames {
		if f&fn.bit != 0 {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}
