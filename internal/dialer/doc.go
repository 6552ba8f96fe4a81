// Package dialer establishes outbound stream connections to logical
// endpoints.
//
// A Connector classifies each endpoint with package endpoint and then either
// dials an IP address directly, resolves a hostname and dials the first
// address, or connects to a SOCKS5 proxy (typically Tor) and asks it to reach
// a hidden service. Every failure path closes the socket before the error is
// returned; a successfully returned net.Conn belongs to the caller.
package dialer
