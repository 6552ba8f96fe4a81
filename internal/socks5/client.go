package socks5

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	txsocks5 "github.com/txthinking/socks5"
)

// aLongTimeAgo is a deadline that unblocks any pending read or write at once.
var aLongTimeAgo = time.Unix(1, 0)

// Handshake negotiates anonymous access on conn, then asks the proxy to
// CONNECT to address ("host:port"). Hostnames are sent as domain names, so
// name resolution happens at the proxy.
//
// Canceling ctx aborts a blocked read or write; the returned error then wraps
// ctx.Err(). Handshake never closes conn.
func Handshake(ctx context.Context, conn net.Conn, address string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(aLongTimeAgo)
	})
	defer func() {
		if stop() {
			return
		}
		if err == nil {
			err = ctx.Err()
		} else {
			err = fmt.Errorf("%w: %w", ctx.Err(), err)
		}
	}()

	if err := ClientNegotiate(conn); err != nil {
		return err
	}
	return ClientConnect(conn, address)
}

// ClientNegotiate offers only the no-auth method.
func ClientNegotiate(conn net.Conn) error {
	if _, err := txsocks5.NewNegotiationRequest([]byte{txsocks5.MethodNone}).WriteTo(conn); err != nil {
		return fmt.Errorf("write negotiation: %w", err)
	}

	neg, err := txsocks5.NewNegotiationReplyFrom(conn)
	if err != nil {
		return fmt.Errorf("read negotiation: %w", err)
	}
	if neg.Method != txsocks5.MethodNone {
		return fmt.Errorf("unsupported negotiation method: %d", neg.Method)
	}
	return nil
}

// ClientConnect sends a CONNECT request for address and waits for the reply.
// A non-success reply is returned as a *ReplyError.
func ClientConnect(conn net.Conn, address string) error {
	atyp, dstAddr, dstPort, err := txsocks5.ParseAddress(address)
	if err != nil {
		return fmt.Errorf("parse address: %w", err)
	}
	if atyp == txsocks5.ATYPDomain {
		dstAddr = dstAddr[1:]
		if len(dstAddr) == 0 || len(dstAddr) > 255 {
			return fmt.Errorf("parse address: invalid domain length %d", len(dstAddr))
		}
	}

	if _, err := txsocks5.NewRequest(txsocks5.CmdConnect, atyp, dstAddr, dstPort).WriteTo(conn); err != nil {
		return fmt.Errorf("write request: %w", err)
	}

	rep, err := txsocks5.NewReplyFrom(conn)
	if err != nil {
		return fmt.Errorf("read reply: %w", err)
	}
	if rep.Rep != txsocks5.RepSuccess {
		return &ReplyError{Code: rep.Rep}
	}
	return nil
}

// ReplyError is a CONNECT request rejected by the proxy.
type ReplyError struct {
	Code byte
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("connect failed: %s", replyText(e.Code))
}

// IsReplyCode reports whether err is a *ReplyError carrying code.
func IsReplyCode(err error, code byte) bool {
	var re *ReplyError
	return errors.As(err, &re) && re.Code == code
}

func replyText(code byte) string {
	switch code {
	case txsocks5.RepServerFailure:
		return "general server failure"
	case txsocks5.RepNotAllowed:
		return "connection not allowed by ruleset"
	case txsocks5.RepNetworkUnreachable:
		return "network unreachable"
	case txsocks5.RepHostUnreachable:
		return "host unreachable"
	case txsocks5.RepConnectionRefused:
		return "connection refused"
	case txsocks5.RepTTLExpired:
		return "TTL expired"
	case txsocks5.RepCommandNotSupported:
		return "command not supported"
	case txsocks5.RepAddressNotSupported:
		return "address type not supported"
	// Tor extended replies for onion services.
	case 0xf0:
		return "onion service descriptor not found"
	case 0xf1:
		return "onion service descriptor invalid"
	case 0xf2:
		return "onion service introduction failed"
	case 0xf3:
		return "onion service rendezvous failed"
	case 0xf4:
		return "onion service missing client authorization"
	case 0xf5:
		return "onion service wrong client authorization"
	case 0xf6:
		return "onion service invalid address"
	case 0xf7:
		return "onion service introduction timed out"
	default:
		return fmt.Sprintf("reply code %#02x", code)
	}
}
