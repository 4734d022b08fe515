//go:build linux || darwin

// File: sock/sock_unix.go
// Author: momentics <momentics@gmail.com>
//
// Platform-specific descriptor operations for Unix-like systems.

package sock

import (
	"net/netip"

	"golang.org/x/sys/unix"
)

// sysSocket creates a close-on-exec descriptor for the candidate and applies
// the requested blocking mode. SOCK_CLOEXEC at socket(2) time is not
// portable to darwin, so the flag is set separately.
func sysSocket(c Candidate, blocking bool) (int, error) {
	fd, err := unix.Socket(c.Family, c.Type, c.Proto)
	if err != nil {
		return -1, err
	}
	unix.CloseOnExec(fd)
	if !blocking {
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(fd)
			return -1, err
		}
	}
	return fd, nil
}

func sysBind(fd int, c Candidate) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return err
	}
	return unix.Bind(fd, c.sockaddr())
}

func sysConnect(fd int, c Candidate) error {
	return unix.Connect(fd, c.sockaddr())
}

func sysListen(fd, backlog int) error {
	return unix.Listen(fd, backlog)
}

func sysAccept(fd int) (int, error) {
	nfd, _, err := unix.Accept(fd)
	if err != nil {
		return -1, err
	}
	unix.CloseOnExec(nfd)
	return nfd, nil
}

func sysRead(fd int, p []byte) (int, error)  { return unix.Read(fd, p) }
func sysWrite(fd int, p []byte) (int, error) { return unix.Write(fd, p) }

func sysShutdown(fd int, how How) error {
	var h int
	switch how {
	case ShutRead:
		h = unix.SHUT_RD
	case ShutWrite:
		h = unix.SHUT_WR
	default:
		h = unix.SHUT_RDWR
	}
	return unix.Shutdown(fd, h)
}

func sysClose(fd int) error { return unix.Close(fd) }

func sysSetBlocking(fd int, blocking bool) error {
	return unix.SetNonblock(fd, !blocking)
}

func sysLocalAddr(fd int) (netip.AddrPort, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return netip.AddrPort{}, err
	}
	return sockaddrToAddrPort(sa)
}

func sysRemoteAddr(fd int) (netip.AddrPort, error) {
	sa, err := unix.Getpeername(fd)
	if err != nil {
		return netip.AddrPort{}, err
	}
	return sockaddrToAddrPort(sa)
}

func sockaddrToAddrPort(sa unix.Sockaddr) (netip.AddrPort, error) {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(a.Addr), uint16(a.Port)), nil
	case *unix.SockaddrInet6:
		return netip.AddrPortFrom(netip.AddrFrom16(a.Addr).Unmap(), uint16(a.Port)), nil
	default:
		return netip.AddrPort{}, unix.EAFNOSUPPORT
	}
}
