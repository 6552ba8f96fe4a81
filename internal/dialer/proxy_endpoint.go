package dialer

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strconv"
	"strings"
)

// DefaultProxyPort is Tor's SOCKS port, used when the configured proxy omits
// one.
const DefaultProxyPort = 9050

// ProxyEndpoint is the address of a SOCKS5 proxy. Exactly one of Addr or Host
// is set.
type ProxyEndpoint struct {
	Addr netip.Addr
	Host string
	Port uint16
}

// Network returns the socket family to use for the proxy: tcp4 or tcp6 for an
// IP address, dual-stack tcp for a hostname.
func (p *ProxyEndpoint) Network() string {
	if p.Addr.IsValid() {
		return tcpNetwork(p.Addr)
	}
	return "tcp"
}

func (p *ProxyEndpoint) String() string {
	if p.Addr.IsValid() {
		return netip.AddrPortFrom(p.Addr, p.Port).String()
	}
	return net.JoinHostPort(p.Host, strconv.Itoa(int(p.Port)))
}

// ParseProxyEndpoint parses the configured proxy. An empty string means no
// proxy and returns nil, nil.
//
// Accepted forms:
//   - host:port, [v6]:port
//   - host, v6 or [v6] (port defaults to DefaultProxyPort)
//   - socks5://host[:port], socks5h://host[:port]
//
// Anything else is an ErrConfiguration.
func ParseProxyEndpoint(s string) (*ProxyEndpoint, error) {
	if s == "" {
		return nil, nil
	}
	p, err := parseProxyEndpoint(s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid proxy endpoint %q: %w", ErrConfiguration, s, err)
	}
	return p, nil
}

func parseProxyEndpoint(s string) (*ProxyEndpoint, error) {
	hostport := s
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(u.Scheme) {
		case "socks5", "socks5h":
		default:
			return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
		}
		if u.Path != "" && u.Path != "/" {
			return nil, errors.New("path should be empty")
		}
		if u.User != nil {
			return nil, errors.New("proxy authentication not supported")
		}
		if u.Host == "" {
			return nil, errors.New("missing host")
		}
		hostport = u.Host
	}

	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		bare := strings.TrimSuffix(strings.TrimPrefix(hostport, "["), "]")
		host, portStr = bare, strconv.Itoa(DefaultProxyPort)
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil || port == 0 {
		return nil, fmt.Errorf("invalid port %q", portStr)
	}

	if ip, err := netip.ParseAddr(host); err == nil {
		if ip.Zone() != "" {
			return nil, fmt.Errorf("zoned address %q not supported", host)
		}
		return &ProxyEndpoint{Addr: ip.Unmap(), Port: uint16(port)}, nil
	}
	if !validHostname(host) {
		return nil, fmt.Errorf("invalid host %q", host)
	}
	return &ProxyEndpoint{Host: host, Port: uint16(port)}, nil
}

func validHostname(host string) bool {
	host = strings.TrimSuffix(host, ".")
	if host == "" || len(host) > 253 {
		return false
	}
	for label := range strings.SplitSeq(host, ".") {
		if label == "" || len(label) > 63 {
			return false
		}
		for _, c := range label {
			switch {
			case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			default:
				return false
			}
		}
	}
	return true
}
