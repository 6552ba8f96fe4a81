package endpoint

import (
	"net"

	"github.com/die-net/peerdial/internal/onion"
)

// Strategy is how a connection to an endpoint has to be established.
type Strategy int

const (
	// Direct connects straight to an IP address.
	Direct Strategy = iota + 1
	// Proxied connects through the configured SOCKS proxy.
	Proxied
	// ResolveThenConnect resolves a hostname and connects to the first result.
	ResolveThenConnect
)

func (s Strategy) String() string {
	switch s {
	case Direct:
		return "direct"
	case Proxied:
		return "proxied"
	case ResolveThenConnect:
		return "resolve"
	default:
		return "unknown"
	}
}

// Classify decides how addr must be reached. Rules apply in order:
//   - IP addresses in the OnionCat range are proxied
//   - other IP addresses are dialed directly
//   - hostnames ending in .onion are proxied
//   - other hostnames are resolved, then dialed
func Classify(addr net.Addr) (Strategy, error) {
	ep, err := FromAddr(addr)
	if err != nil {
		return 0, err
	}

	switch e := ep.(type) {
	case IPEndpoint:
		if onion.IsOnionCat(e.Addr) {
			return Proxied, nil
		}
		return Direct, nil
	case HostEndpoint:
		if onion.IsHiddenService(e.Host) {
			return Proxied, nil
		}
		return ResolveThenConnect, nil
	}
	return 0, ErrUnsupportedEndpoint
}
