// File: sock/state.go
// Author: momentics <momentics@gmail.com>
//
// Socket lifecycle states and the closed transport/family variants.

package sock

import "fmt"

// State is the lifecycle position of a Socket.
//
// Client path: Unconnected → LookingUpHost → Connecting → Connected.
// Server path: Unconnected → LookingUpHost → Connecting → Bound → Listening.
// Closing is transient during teardown; Unconnected is both the initial and
// the terminal state. Only Bind, Connect, Listen and Disconnect move a
// Socket between states; calling any of them outside its required source
// state is a programming error and panics.
type State int

const (
	Unconnected State = iota
	LookingUpHost
	Connecting
	Connected
	Bound
	Listening
	Closing
)

func (s State) String() string {
	switch s {
	case Unconnected:
		return "unconnected"
	case LookingUpHost:
		return "looking-up-host"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Bound:
		return "bound"
	case Listening:
		return "listening"
	case Closing:
		return "closing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Kind selects the transport of a Socket. The set is closed: stream and
// datagram are the only two transports.
type Kind int

const (
	Stream Kind = iota
	Datagram
)

func (k Kind) String() string {
	if k == Datagram {
		return "datagram"
	}
	return "stream"
}

// network returns the stdlib network name used for service resolution.
func (k Kind) network() string {
	if k == Datagram {
		return "udp"
	}
	return "tcp"
}

// Family restricts address resolution and interface enumeration.
type Family int

const (
	FamilyAny Family = iota
	FamilyIPv4
	FamilyIPv6
)

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	default:
		return "any"
	}
}

// How selects the direction of a Shutdown.
type How int

const (
	ShutRead How = iota
	ShutWrite
	ShutReadWrite
)
