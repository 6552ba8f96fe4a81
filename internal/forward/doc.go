// Package forward exposes a single remote endpoint as a local TCP listener.
//
// Each accepted connection gets its own outbound connection from a
// proxy.ContextDialer such as dialer.Connector, so hidden services behind a
// SOCKS5 proxy can be reached by programs that only know how to dial a plain
// host:port.
package forward
