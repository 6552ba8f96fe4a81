package testutil

import (
	"context"
	"io"
	"net"
	"testing"

	"github.com/die-net/peerdial/internal/socks5"
)

// StartSOCKS5Proxy starts a single-connection SOCKS5 proxy that never dials
// anywhere. It reports each CONNECT destination on the returned channel, then
// answers with rep. On success it echoes whatever the client sends, standing
// in for the destination.
func StartSOCKS5Proxy(t *testing.T, ctx context.Context, rep byte) (net.Listener, <-chan string, func()) {
	t.Helper()

	requests := make(chan string, 1)
	ln, wait := StartSingleAcceptServer(t, ctx, func(c net.Conn) {
		if err := socks5.ServerNegotiate(c); err != nil {
			return
		}
		req, err := socks5.ServerReadRequest(c)
		if err != nil {
			return
		}
		requests <- req.Address()

		if rep != socks5.RepSuccess {
			_ = socks5.WriteReply(c, rep, req.Atyp)
			return
		}
		if err := socks5.WriteSuccessReply(c, c.LocalAddr()); err != nil {
			return
		}
		_, _ = io.Copy(c, c)
	})

	return ln, requests, wait
}

// StartStalledSOCKS5Proxy negotiates and reads one CONNECT request, signals on
// the returned channel, and then never replies. The handler returns once the
// client closes the connection.
func StartStalledSOCKS5Proxy(t *testing.T, ctx context.Context) (net.Listener, <-chan struct{}, func()) {
	t.Helper()

	stalled := make(chan struct{})
	ln, wait := StartSingleAcceptServer(t, ctx, func(c net.Conn) {
		if err := socks5.ServerNegotiate(c); err != nil {
			return
		}
		if _, err := socks5.ServerReadRequest(c); err != nil {
			return
		}
		close(stalled)
		_, _ = io.Copy(io.Discard, c)
	})

	return ln, stalled, wait
}
