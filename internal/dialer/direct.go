package dialer

import (
	"context"
	"net"
)

type directDialer struct {
	cfg Config
}

// NewDirectDialer returns a Dialer that connects without any proxy, applying
// cfg's dial timeout and keepalive settings.
func NewDirectDialer(cfg Config) Dialer {
	return &directDialer{cfg: cfg}
}

func (d *directDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	dd := net.Dialer{
		Timeout:         d.cfg.DialTimeout,
		KeepAliveConfig: d.cfg.KeepAlive,
	}
	if !d.cfg.KeepAlive.Enable {
		dd.KeepAlive = -1
	}
	return dd.DialContext(ctx, network, address)
}
