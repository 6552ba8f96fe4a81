// Package socks5 provides the small SOCKS5 handshake used to reach hidden
// services through a local Tor proxy.
//
// It wraps the low-level protocol types in github.com/txthinking/socks5. Only
// anonymous (no-auth) negotiation and the CONNECT command are supported. The
// server-side helpers exist so tests can stand up a minimal proxy without
// duplicating message parsing.
package socks5
