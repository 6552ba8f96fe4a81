//go:build unix

package dialer

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

func shutdown(conn net.Conn) error {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return errNoShutdown
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return err
	}

	var serr error
	if err := raw.Control(func(fd uintptr) {
		serr = unix.Shutdown(int(fd), unix.SHUT_RDWR)
	}); err != nil {
		return err
	}
	return serr
}
