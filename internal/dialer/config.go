package dialer

import (
	"net"
	"time"
)

type Config struct {
	// DialTimeout bounds DNS resolution and each TCP connect. Zero means no
	// limit beyond the caller's context.
	DialTimeout time.Duration
	// NegotiationTimeout bounds the SOCKS5 handshake with the proxy.
	NegotiationTimeout time.Duration
	KeepAlive          net.KeepAliveConfig

	// Proxy is the SOCKS5 proxy used for hidden services. Nil makes hidden
	// services unreachable.
	Proxy *ProxyEndpoint

	// StrictOnion rejects .onion names that are not valid v3 addresses
	// before any socket is opened.
	StrictOnion bool

	// Resolver overrides net.DefaultResolver.
	Resolver Resolver
}
