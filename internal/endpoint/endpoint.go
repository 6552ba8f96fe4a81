package endpoint

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
)

// ErrUnsupportedEndpoint is returned for addresses that are neither an IP
// endpoint nor a host endpoint.
var ErrUnsupportedEndpoint = errors.New("endpoint type not supported")

// Endpoint is a logical destination: either an IPEndpoint or a HostEndpoint.
type Endpoint interface {
	net.Addr
	endpoint()
}

// IPEndpoint is a fully resolved address and port.
type IPEndpoint struct {
	Addr netip.Addr
	Port uint16
}

func (IPEndpoint) endpoint() {}

// Network implements net.Addr.
func (IPEndpoint) Network() string { return "tcp" }

func (e IPEndpoint) String() string {
	return netip.AddrPortFrom(e.Addr, e.Port).String()
}

// AddrPort returns the endpoint as a netip.AddrPort.
func (e IPEndpoint) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(e.Addr, e.Port)
}

// HostEndpoint is a hostname that still needs resolving, or a hidden-service
// name that only a proxy can resolve.
type HostEndpoint struct {
	Host string
	Port uint16
}

func (HostEndpoint) endpoint() {}

// Network implements net.Addr.
func (HostEndpoint) Network() string { return "tcp" }

func (e HostEndpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(int(e.Port)))
}

// Parse splits a "host:port" address into an IPEndpoint when host is an IP
// literal and a HostEndpoint otherwise.
func Parse(address string) (Endpoint, error) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q", portStr)
	}
	if host == "" {
		return nil, fmt.Errorf("missing host in %q", address)
	}

	if ip, err := netip.ParseAddr(host); err == nil {
		if ip.Zone() != "" {
			return nil, fmt.Errorf("zoned address %q not supported", host)
		}
		return IPEndpoint{Addr: ip.Unmap(), Port: uint16(port)}, nil
	}
	return HostEndpoint{Host: host, Port: uint16(port)}, nil
}

// FromAddr converts addr into an Endpoint. *net.TCPAddr values become
// IPEndpoints. Empty hosts, invalid or zoned IPs and any other net.Addr
// implementation are rejected with ErrUnsupportedEndpoint.
func FromAddr(addr net.Addr) (Endpoint, error) {
	switch a := addr.(type) {
	case IPEndpoint:
		if a.Addr.IsValid() && a.Addr.Zone() == "" {
			return a, nil
		}
	case HostEndpoint:
		if a.Host != "" {
			return a, nil
		}
	case *net.TCPAddr:
		if a == nil {
			break
		}
		ip, ok := netip.AddrFromSlice(a.IP)
		if !ok || a.Zone != "" || a.Port < 0 || a.Port > 0xffff {
			break
		}
		return IPEndpoint{Addr: ip.Unmap(), Port: uint16(a.Port)}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedEndpoint, addr)
}
