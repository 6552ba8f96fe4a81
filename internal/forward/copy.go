package forward

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"golang.org/x/sync/errgroup"
)

type closeWriter interface {
	CloseWrite() error
}

// CopyBidirectional copies between left and right until both directions reach
// EOF, either side fails, or ctx ends. A direction that reaches EOF half-closes
// its destination when possible. Both connections are closed on return.
func CopyBidirectional(ctx context.Context, left, right net.Conn) error {
	g, gctx := errgroup.WithContext(ctx)

	var closeOnce sync.Once
	closeBoth := func() {
		closeOnce.Do(func() {
			_ = left.Close()
			_ = right.Close()
		})
	}
	defer closeBoth()

	pipe := func(dst, src net.Conn) func() error {
		return func() error {
			_, err := io.Copy(dst, src)
			if err != nil || !HalfClose(dst) {
				closeBoth()
			}
			return err
		}
	}
	g.Go(pipe(left, right))
	g.Go(pipe(right, left))

	// If the context is canceled, ensure we close both sides to unblock Copy.
	stop := context.AfterFunc(gctx, closeBoth)
	defer stop()

	if err := g.Wait(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// HalfClose shuts down the writing side of c if it supports that.
func HalfClose(c io.Writer) bool {
	cw, ok := c.(closeWriter)
	return ok && cw.CloseWrite() == nil
}
