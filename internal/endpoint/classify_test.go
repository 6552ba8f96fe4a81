package endpoint

import (
	"errors"
	"net"
	"net/netip"
	"testing"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		addr net.Addr
		want Strategy
	}{
		{
			name: "ipv4",
			addr: IPEndpoint{Addr: netip.MustParseAddr("203.0.113.5"), Port: 8333},
			want: Direct,
		},
		{
			name: "ipv6",
			addr: IPEndpoint{Addr: netip.MustParseAddr("2001:db8::1"), Port: 8333},
			want: Direct,
		},
		{
			name: "tcp addr",
			addr: &net.TCPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 9735},
			want: Direct,
		},
		{
			name: "onioncat ip",
			addr: IPEndpoint{Addr: netip.MustParseAddr("fd87:d87e:eb43:edb1:8e4:3588:e546:35ca"), Port: 8333},
			want: Proxied,
		},
		{
			name: "onion host",
			addr: HostEndpoint{Host: "abc123xyz.onion", Port: 9735},
			want: Proxied,
		},
		{
			name: "onion host uppercase",
			addr: HostEndpoint{Host: "EXAMPLE.ONION", Port: 9735},
			want: Proxied,
		},
		{
			name: "ordinary host",
			addr: HostEndpoint{Host: "relay.example.com", Port: 8333},
			want: ResolveThenConnect,
		},
		{
			name: "onion as subdomain label",
			addr: HostEndpoint{Host: "onion.example.com", Port: 8333},
			want: ResolveThenConnect,
		},
		{
			name: "localhost",
			addr: HostEndpoint{Host: "localhost", Port: 80},
			want: ResolveThenConnect,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.addr)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %s want %s", got, tt.want)
			}
		})
	}
}

func TestClassifyUnsupported(t *testing.T) {
	t.Parallel()

	_, err := Classify(&net.UnixAddr{Name: "/run/tor/socks", Net: "unix"})
	if !errors.Is(err, ErrUnsupportedEndpoint) {
		t.Fatalf("got %v want ErrUnsupportedEndpoint", err)
	}
}

func TestStrategyString(t *testing.T) {
	t.Parallel()

	for s, want := range map[Strategy]string{
		Direct:             "direct",
		Proxied:            "proxied",
		ResolveThenConnect: "resolve",
		Strategy(0):        "unknown",
	} {
		if got := s.String(); got != want {
			t.Errorf("got %q want %q", got, want)
		}
	}
}
