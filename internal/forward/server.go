package forward

import (
	"context"
	"fmt"
	"log"
	"net"

	"golang.org/x/net/proxy"
)

// Server forwards every accepted connection to Target, opening the outbound
// side with Dialer.
type Server struct {
	ctx     context.Context
	Dialer  proxy.ContextDialer
	Target  string
	Verbose bool
}

func NewServer(ctx context.Context, dialer proxy.ContextDialer, target string, verbose bool) *Server {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Server{ctx: ctx, Dialer: dialer, Target: target, Verbose: verbose}
}

// Serve accepts connections on ln until it is closed.
func (s *Server) Serve(ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}
		go func() {
			if err := s.handle(c); err != nil {
				if s.Verbose {
					log.Printf("forward: %s: %v", c.RemoteAddr(), err)
				}
			}
		}()
	}
}

func (s *Server) handle(conn net.Conn) error {
	defer conn.Close()
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	up, err := s.Dialer.DialContext(ctx, "tcp", s.Target)
	if err != nil {
		return err
	}
	defer up.Close()

	if s.Verbose {
		log.Printf("forward: %s -> %s", conn.RemoteAddr(), s.Target)
	}

	if err := CopyBidirectional(ctx, conn, up); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	return nil
}
