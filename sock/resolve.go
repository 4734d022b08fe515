// File: sock/resolve.go
// Author: momentics <momentics@gmail.com>
//
// Address resolution glue: turns a host/service pair into an ordered list
// of concrete candidate addresses ready for socket(2).

package sock

import (
	"net"
	"net/netip"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Candidate is one resolved family/type/protocol/address tuple. Candidates
// are ephemeral: produced and consumed within a single bind or connect
// attempt, never retained.
type Candidate struct {
	Family int // AF_INET or AF_INET6
	Type   int // SOCK_STREAM or SOCK_DGRAM
	Proto  int
	Addr   netip.AddrPort
}

// sockaddr renders the candidate as the platform sockaddr for bind/connect.
func (c Candidate) sockaddr() unix.Sockaddr {
	if c.Family == unix.AF_INET6 {
		return &unix.SockaddrInet6{Port: int(c.Addr.Port()), Addr: c.Addr.Addr().As16()}
	}
	return &unix.SockaddrInet4{Port: int(c.Addr.Port()), Addr: c.Addr.Addr().As4()}
}

// Resolve produces candidate addresses for host:service, in resolution
// order. With passive set, an empty host yields the wildcard address for
// listening; without it, an empty host yields loopback. The service is a
// port number or a well-known service name.
func Resolve(host, service string, family Family, kind Kind, passive bool) ([]Candidate, error) {
	port, err := resolvePort(service, kind)
	if err != nil {
		return nil, err
	}

	addrs, err := resolveHost(host, passive)
	if err != nil {
		return nil, err
	}

	sotype := unix.SOCK_STREAM
	proto := unix.IPPROTO_TCP
	if kind == Datagram {
		sotype = unix.SOCK_DGRAM
		proto = unix.IPPROTO_UDP
	}

	var out []Candidate
	for _, addr := range addrs {
		af := unix.AF_INET
		if addr.Is6() && !addr.Is4In6() {
			if family == FamilyIPv4 {
				continue
			}
			af = unix.AF_INET6
		} else {
			if family == FamilyIPv6 {
				continue
			}
			addr = addr.Unmap()
		}
		out = append(out, Candidate{
			Family: af,
			Type:   sotype,
			Proto:  proto,
			Addr:   netip.AddrPortFrom(addr, port),
		})
	}
	if len(out) == 0 {
		return nil, errors.Errorf("resolve %q: no %s addresses", host, family)
	}
	return out, nil
}

func resolvePort(service string, kind Kind) (uint16, error) {
	if n, err := strconv.ParseUint(service, 10, 16); err == nil {
		return uint16(n), nil
	}
	port, err := net.LookupPort(kind.network(), service)
	if err != nil {
		return 0, errors.Wrapf(err, "resolve service %q", service)
	}
	return uint16(port), nil
}

func resolveHost(host string, passive bool) ([]netip.Addr, error) {
	if host == "" {
		if passive {
			return []netip.Addr{netip.IPv4Unspecified(), netip.IPv6Unspecified()}, nil
		}
		return []netip.Addr{netip.AddrFrom4([4]byte{127, 0, 0, 1}), netip.IPv6Loopback()}, nil
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return []netip.Addr{addr}, nil
	}
	ips, err := net.LookupIP(host)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve host %q", host)
	}
	addrs := make([]netip.Addr, 0, len(ips))
	for _, ip := range ips {
		if addr, ok := netip.AddrFromSlice(ip); ok {
			addrs = append(addrs, addr.Unmap())
		}
	}
	return addrs, nil
}
