//go:build !unix

package dialer

import (
	"errors"
	"net"
)

func shutdown(conn net.Conn) error {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return errNoShutdown
	}
	return errors.Join(tc.CloseRead(), tc.CloseWrite())
}
