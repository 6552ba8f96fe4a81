package forward

import (
	"context"
	"fmt"
	"net"
)

// ListenTCP listens on the given network/address and applies keepAliveConfig
// to accepted TCP connections. A disabled config turns keepalives off.
func ListenTCP(ctx context.Context, network, addr string, keepAliveConfig net.KeepAliveConfig) (net.Listener, error) {
	lc := net.ListenConfig{KeepAliveConfig: keepAliveConfig}
	if !keepAliveConfig.Enable {
		lc.KeepAlive = -1
	}

	ln, err := lc.Listen(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s %s: %w", network, addr, err)
	}
	return ln, nil
}
