// File: sock/interfaces.go
// Author: momentics <momentics@gmail.com>

package sock

import (
	"net"
	"net/netip"

	"github.com/pkg/errors"
)

// Interfaces enumerates the addresses of the machine's active network
// interfaces, filtered by family. Loopback addresses are excluded unless
// includeLoopback is set.
func Interfaces(family Family, includeLoopback bool) ([]netip.Addr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate interfaces")
	}
	var out []netip.Addr
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			addr, ok := netip.AddrFromSlice(ipnet.IP)
			if !ok {
				continue
			}
			addr = addr.Unmap()
			if addr.IsLoopback() && !includeLoopback {
				continue
			}
			switch family {
			case FamilyIPv4:
				if !addr.Is4() {
					continue
				}
			case FamilyIPv6:
				if addr.Is4() {
					continue
				}
			}
			out = append(out, addr)
		}
	}
	return out, nil
}
