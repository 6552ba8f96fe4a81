package socks5

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"

	txsocks5 "github.com/txthinking/socks5"
	"golang.org/x/sync/errgroup"
)

func TestHandshake(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		wantAtyp byte
	}{
		{name: "onion", address: "abc123xyz.onion:9735", wantAtyp: txsocks5.ATYPDomain},
		{name: "ipv4", address: "127.0.0.1:80", wantAtyp: txsocks5.ATYPIPv4},
		{name: "ipv6", address: "[2001:db8::1]:443", wantAtyp: txsocks5.ATYPIPv6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clientConn, serverConn := net.Pipe()
			defer clientConn.Close()
			defer serverConn.Close()

			g := errgroup.Group{}
			g.Go(func() error {
				if err := ServerNegotiate(serverConn); err != nil {
					return err
				}

				req, err := ServerReadRequest(serverConn)
				if err != nil {
					return err
				}
				if req.Cmd != CmdConnect {
					return fmt.Errorf("unexpected command: %d", req.Cmd)
				}
				if req.Atyp != tt.wantAtyp {
					return fmt.Errorf("unexpected address type: %d", req.Atyp)
				}
				if req.Address() != tt.address {
					return fmt.Errorf("unexpected address: %s", req.Address())
				}

				return WriteSuccessReply(serverConn, &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 12345})
			})

			if err := Handshake(context.Background(), clientConn, tt.address); err != nil {
				t.Fatal(err)
			}
			if err := g.Wait(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestHandshakeRejected(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	g := errgroup.Group{}
	g.Go(func() error {
		if err := ServerNegotiate(serverConn); err != nil {
			return err
		}
		req, err := ServerReadRequest(serverConn)
		if err != nil {
			return err
		}
		return WriteReply(serverConn, 0xf0, req.Atyp)
	})

	err := Handshake(context.Background(), clientConn, "abc123xyz.onion:9735")
	if !IsReplyCode(err, 0xf0) {
		t.Fatalf("got %v want reply code 0xf0", err)
	}
	if !strings.Contains(err.Error(), "descriptor not found") {
		t.Fatalf("unexpected message: %v", err)
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

func TestServerReadRequestRejectsBind(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	g := errgroup.Group{}
	g.Go(func() error {
		if _, err := ServerReadRequest(serverConn); err == nil {
			return errors.New("BIND request accepted")
		}
		return nil
	})

	req := txsocks5.NewRequest(txsocks5.CmdBind, txsocks5.ATYPIPv4, []byte{127, 0, 0, 1}, []byte{0x00, 0x50})
	if _, err := req.WriteTo(clientConn); err != nil {
		t.Fatal(err)
	}
	rep, err := txsocks5.NewReplyFrom(clientConn)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Rep != RepCmdNotSupported {
		t.Fatalf("got reply %#02x want %#02x", rep.Rep, RepCmdNotSupported)
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

func TestHandshakeNoAcceptableMethod(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	g := errgroup.Group{}
	g.Go(func() error {
		if _, err := txsocks5.NewNegotiationRequestFrom(serverConn); err != nil {
			return err
		}
		writeNoAcceptableMethods(serverConn)
		return nil
	})

	if err := Handshake(context.Background(), clientConn, "abc123xyz.onion:9735"); err == nil {
		t.Fatal("expected error")
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

func TestHandshakeCancel(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := errgroup.Group{}
	g.Go(func() error {
		if err := ServerNegotiate(serverConn); err != nil {
			return err
		}
		if _, err := ServerReadRequest(serverConn); err != nil {
			return err
		}
		// Never reply; the client is stuck until canceled.
		cancel()
		return nil
	})

	err := Handshake(ctx, clientConn, "abc123xyz.onion:9735")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v want context.Canceled", err)
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

func TestHandshakeAlreadyCanceled(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Handshake(ctx, clientConn, "abc123xyz.onion:9735"); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v want context.Canceled", err)
	}
}

func TestClientConnectDomainTooLong(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	host := strings.Repeat("a", 250) + ".onion"
	if err := ClientConnect(clientConn, net.JoinHostPort(host, "80")); err == nil {
		t.Fatal("expected error")
	}
}
