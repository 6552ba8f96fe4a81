package dialer

import (
	"errors"
	"fmt"

	"github.com/die-net/peerdial/internal/endpoint"
)

// Error kinds returned by Connect. The underlying cause stays in the chain, so
// errors.Is works for both the kind and, for example, syscall.ECONNREFUSED or
// context.Canceled.
var (
	// ErrConfiguration means the proxy is required but missing, or malformed.
	ErrConfiguration = errors.New("configuration")
	// ErrUnsupportedEndpoint means the address is not an IP or host endpoint.
	ErrUnsupportedEndpoint = endpoint.ErrUnsupportedEndpoint
	// ErrResolution means a hostname did not resolve to any address.
	ErrResolution = errors.New("resolve")
	// ErrConnect means the TCP connect to the destination or proxy failed.
	ErrConnect = errors.New("connect")
	// ErrHandshake means the proxy rejected or mishandled the CONNECT request.
	ErrHandshake = errors.New("socks5 handshake")
	// ErrCanceled means the caller's context ended before the connection was
	// established.
	ErrCanceled = errors.New("canceled")
)

var errNoProxy = fmt.Errorf("%w: hidden-service destinations are unreachable without a configured proxy", ErrConfiguration)

// ioCause drops the I/O kind from an error built as "kind: ... cause", leaving
// the cause. Anything else is returned unchanged.
func ioCause(err error) error {
	u, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return err
	}
	errs := u.Unwrap()
	if len(errs) != 2 {
		return err
	}
	switch errs[0] {
	case ErrResolution, ErrConnect, ErrHandshake:
		return errs[1]
	}
	return err
}
