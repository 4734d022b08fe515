//go:build unix && !linux && !darwin

// File: sock/sock_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub descriptor operations for unsupported platforms.

package sock

import (
	"net/netip"

	"golang.org/x/sys/unix"
)

func sysSocket(Candidate, bool) (int, error)          { return -1, unix.ENOSYS }
func sysBind(int, Candidate) error                    { return unix.ENOSYS }
func sysConnect(int, Candidate) error                 { return unix.ENOSYS }
func sysListen(int, int) error                        { return unix.ENOSYS }
func sysAccept(int) (int, error)                      { return -1, unix.ENOSYS }
func sysRead(int, []byte) (int, error)                { return 0, unix.ENOSYS }
func sysWrite(int, []byte) (int, error)               { return 0, unix.ENOSYS }
func sysShutdown(int, How) error                      { return unix.ENOSYS }
func sysClose(int) error                              { return unix.ENOSYS }
func sysSetBlocking(int, bool) error                  { return unix.ENOSYS }
func sysLocalAddr(int) (netip.AddrPort, error)        { return netip.AddrPort{}, unix.ENOSYS }
func sysRemoteAddr(int) (netip.AddrPort, error)       { return netip.AddrPort{}, unix.ENOSYS }
