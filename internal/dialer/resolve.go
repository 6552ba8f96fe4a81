package dialer

import (
	"context"
	"fmt"
	"net"
	"net/netip"
)

// Resolver looks up the addresses of a hostname. *net.Resolver implements it.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

var _ Resolver = (*net.Resolver)(nil)

// resolveFirst returns the first address host resolves to. There is no
// fallback to later addresses.
func resolveFirst(ctx context.Context, r Resolver, host string) (netip.Addr, error) {
	addrs, err := r.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return netip.Addr{}, err
	}
	if len(addrs) == 0 {
		return netip.Addr{}, fmt.Errorf("%s: no addresses", host)
	}
	return addrs[0].Unmap(), nil
}

// tcpNetwork picks the socket family matching addr.
func tcpNetwork(addr netip.Addr) string {
	if addr.Unmap().Is4() {
		return "tcp4"
	}
	return "tcp6"
}
