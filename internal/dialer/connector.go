package dialer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/net/proxy"

	"github.com/die-net/peerdial/internal/endpoint"
	"github.com/die-net/peerdial/internal/onion"
	"github.com/die-net/peerdial/internal/socks5"
)

var (
	_ Dialer              = (*Connector)(nil)
	_ proxy.Dialer        = (*Connector)(nil)
	_ proxy.ContextDialer = (*Connector)(nil)
)

// Connector turns logical endpoints into connected TCP sockets.
//
// It holds no mutable state; a single Connector may be used from many
// goroutines.
type Connector struct {
	cfg      Config
	resolver Resolver
	direct   Dialer
}

// New returns a Connector for cfg. cfg.Proxy may be nil, in which case hidden
// services fail with ErrConfiguration.
func New(cfg Config) *Connector {
	r := cfg.Resolver
	if r == nil {
		r = net.DefaultResolver
	}
	return &Connector{
		cfg:      cfg,
		resolver: r,
		direct:   NewDirectDialer(cfg),
	}
}

// Proxy returns the configured proxy, or nil.
func (c *Connector) Proxy() *ProxyEndpoint {
	return c.cfg.Proxy
}

// Connect establishes a connection to addr, which must be an
// endpoint.IPEndpoint, an endpoint.HostEndpoint or a *net.TCPAddr.
//
// On success the caller owns the returned connection. On failure no socket is
// left open, and the error matches one of the Err* kinds in this package via
// errors.Is. If ctx ends before the connection is established the error is
// ErrCanceled, with the context error and the underlying I/O error in the
// chain.
func (c *Connector) Connect(ctx context.Context, addr net.Addr) (net.Conn, error) {
	ep, err := endpoint.FromAddr(addr)
	if err != nil {
		return nil, err
	}
	strategy, err := endpoint.Classify(ep)
	if err != nil {
		return nil, err
	}

	var conn net.Conn
	switch strategy {
	case endpoint.Direct:
		conn, err = c.connectDirect(ctx, ep.(endpoint.IPEndpoint))
	case endpoint.Proxied:
		conn, err = c.connectProxied(ctx, ep)
	case endpoint.ResolveThenConnect:
		conn, err = c.connectResolved(ctx, ep.(endpoint.HostEndpoint))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEndpoint, addr)
	}
	if err != nil {
		release(&conn)
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ErrConfiguration) && !errors.Is(err, ErrUnsupportedEndpoint) {
			if cause := ioCause(err); cause != ctxErr {
				ctxErr = fmt.Errorf("%w: %w", ctxErr, cause)
			}
			return nil, fmt.Errorf("%w: %s %s: %w", ErrCanceled, strategy, ep, ctxErr)
		}
		return nil, err
	}
	return conn, nil
}

// DialContext parses address ("host:port") and calls Connect. Only TCP
// networks are supported; the address family is chosen from the endpoint, not
// from network.
func (c *Connector) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if !strings.HasPrefix(network, "tcp") {
		return nil, fmt.Errorf("%w: network %q", ErrUnsupportedEndpoint, network)
	}
	ep, err := endpoint.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedEndpoint, err)
	}
	return c.Connect(ctx, ep)
}

// Dial is DialContext with context.Background.
func (c *Connector) Dial(network, address string) (net.Conn, error) {
	return c.DialContext(context.Background(), network, address)
}

// The connect* helpers return whatever socket they opened alongside any
// error; Connect releases it.

func (c *Connector) connectDirect(ctx context.Context, ep endpoint.IPEndpoint) (net.Conn, error) {
	return c.dial(ctx, tcpNetwork(ep.Addr), ep.AddrPort().String())
}

func (c *Connector) connectResolved(ctx context.Context, ep endpoint.HostEndpoint) (net.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lookupCtx := ctx
	if c.cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, c.cfg.DialTimeout)
		defer cancel()
	}

	ip, err := resolveFirst(lookupCtx, c.resolver, ep.Host)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResolution, err)
	}
	return c.connectDirect(ctx, endpoint.IPEndpoint{Addr: ip, Port: ep.Port})
}

func (c *Connector) connectProxied(ctx context.Context, ep endpoint.Endpoint) (net.Conn, error) {
	p := c.cfg.Proxy
	if p == nil {
		return nil, errNoProxy
	}

	dst, err := proxiedDestination(ep)
	if err != nil {
		return nil, err
	}
	if c.cfg.StrictOnion {
		host, _, _ := net.SplitHostPort(dst)
		if !onion.IsValidV3(host) {
			return nil, fmt.Errorf("%w: invalid v3 onion address %q", ErrUnsupportedEndpoint, host)
		}
	}

	conn, err := c.dial(ctx, p.Network(), p.String())
	if err != nil {
		return nil, err
	}

	if c.cfg.NegotiationTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(c.cfg.NegotiationTimeout))
	}
	if err := socks5.Handshake(ctx, conn, dst); err != nil {
		return conn, fmt.Errorf("%w: via %s to %s: %w", ErrHandshake, p, dst, err)
	}
	if c.cfg.NegotiationTimeout > 0 {
		_ = conn.SetDeadline(time.Time{})
	}
	return conn, nil
}

func (c *Connector) dial(ctx context.Context, network, address string) (net.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conn, err := c.direct.DialContext(ctx, network, address)
	if err != nil {
		return conn, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	return conn, nil
}

// proxiedDestination is the address sent inside the CONNECT request. OnionCat
// addresses are translated back to their onion name because only the proxy
// can route them.
func proxiedDestination(ep endpoint.Endpoint) (string, error) {
	switch e := ep.(type) {
	case endpoint.HostEndpoint:
		return e.String(), nil
	case endpoint.IPEndpoint:
		if host, ok := onion.FromOnionCat(e.Addr); ok {
			return endpoint.HostEndpoint{Host: host, Port: e.Port}.String(), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedEndpoint, ep)
}
