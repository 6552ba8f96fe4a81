package dialer

import (
	"errors"
	"net"
)

var errNoShutdown = errors.New("shutdown not supported")

// release is the cleanup for every failure path. It attempts a graceful
// bidirectional shutdown, closes the connection regardless of the outcome and
// clears *c. Errors are discarded. A nil or already released handle is a
// no-op.
func release(c *net.Conn) {
	if c == nil || *c == nil {
		return
	}
	conn := *c
	*c = nil

	// Shutdown fails for sockets that never connected; close anyway.
	_ = shutdown(conn)
	_ = conn.Close()
}
