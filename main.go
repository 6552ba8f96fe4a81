package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/die-net/peerdial/internal/dialer"
	"github.com/die-net/peerdial/internal/endpoint"
	"github.com/die-net/peerdial/internal/forward"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		socksEndpoint = pflag.String("socks-endpoint", defaultSocksEndpoint(), "SOCKS5 proxy for .onion destinations: host[:port] | socks5://host[:port]. Empty makes hidden services unreachable.")
		listen        = pflag.String("listen", "", "Forward connections accepted on this address (e.g. 127.0.0.1:9735) to the target. Empty pipes stdin/stdout instead.")

		dialTimeout        = pflag.Duration("dial-timeout", 10*time.Second, "Timeout for outbound DNS lookup and TCP connect")
		negotiationTimeout = pflag.Duration("negotiation-timeout", 10*time.Second, "Timeout for the SOCKS5 handshake with the proxy")
		tcpKeepAlive       = pflag.String("tcp-keepalive", "45:45:3", "TCP keepalive: on|off|keepidle:keepintvl:keepcnt")
		strictOnion        = pflag.Bool("strict-onion", false, "Reject .onion names that are not valid v3 addresses")
		verbose            = pflag.Bool("verbose", false, "Enable per-connection logging")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] host:port\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.CommandLine.SortFlags = false
	pflag.Parse()

	if pflag.NArg() != 1 {
		pflag.Usage()
		return errors.New("expected exactly one target host:port")
	}

	target, err := endpoint.Parse(pflag.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid target: %w", err)
	}

	ka, err := parseTCPKeepAlive(*tcpKeepAlive)
	if err != nil {
		return fmt.Errorf("invalid --tcp-keepalive: %w", err)
	}

	proxyEP, err := dialer.ParseProxyEndpoint(*socksEndpoint)
	if err != nil {
		return fmt.Errorf("invalid --socks-endpoint: %w", err)
	}

	connector := dialer.New(dialer.Config{
		DialTimeout:        *dialTimeout,
		NegotiationTimeout: *negotiationTimeout,
		KeepAlive:          ka,
		Proxy:              proxyEP,
		StrictOnion:        *strictOnion,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *listen == "" {
		return connectStdio(ctx, connector, target, *verbose)
	}

	g, ctx := errgroup.WithContext(ctx)

	ln, err := forward.ListenTCP(ctx, "tcp", *listen, ka)
	if err != nil {
		return fmt.Errorf("forward listen: %w", err)
	}
	srv := forward.NewServer(ctx, connector, target.String(), *verbose)
	context.AfterFunc(ctx, func() {
		_ = ln.Close()
	})

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && ctx.Err() == nil {
			return fmt.Errorf("forward serve: %w", err)
		}
		return nil
	})

	strategy, _ := endpoint.Classify(target)
	log.Printf("forwarding %s to %s (%s)", ln.Addr(), target, strategy)
	if p := connector.Proxy(); p != nil {
		log.Printf("hidden services via socks5 proxy %s", p)
	}

	err = g.Wait()
	log.Print("shutting down")
	return err
}

func connectStdio(ctx context.Context, connector *dialer.Connector, target endpoint.Endpoint, verbose bool) error {
	conn, err := connector.Connect(ctx, target)
	if err != nil {
		return err
	}
	defer conn.Close()

	if verbose {
		log.Printf("connected to %s via %s", target, conn.RemoteAddr())
	}

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	go func() {
		_, _ = io.Copy(conn, os.Stdin)
		forward.HalfClose(conn)
	}()

	if _, err := io.Copy(os.Stdout, conn); err != nil && ctx.Err() == nil {
		return fmt.Errorf("read %s: %w", target, err)
	}
	return nil
}

func parseTCPKeepAlive(s string) (net.KeepAliveConfig, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return net.KeepAliveConfig{}, errors.New("empty")
	}
	if s == "on" {
		return net.KeepAliveConfig{Enable: true}, nil
	}
	if s == "off" {
		return net.KeepAliveConfig{Enable: false}, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return net.KeepAliveConfig{}, errors.New("expected on|off|keepidle:keepintvl:keepcnt")
	}
	keepIdle, err := parsePositiveSeconds(parts[0])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepidle: %w", err)
	}
	keepIntvl, err := parsePositiveSeconds(parts[1])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepintvl: %w", err)
	}
	keepCnt, err := parsePositiveInt(parts[2])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepcnt: %w", err)
	}

	return net.KeepAliveConfig{
		Enable:   true,
		Idle:     keepIdle,
		Interval: keepIntvl,
		Count:    keepCnt,
	}, nil
}

func parsePositiveSeconds(s string) (time.Duration, error) {
	n, err := parsePositiveInt(s)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New("must be > 0")
	}
	return n, nil
}

// defaultSocksEndpoint prefers TOR_SOCKS_ENDPOINT, then a socks5 ALL_PROXY.
func defaultSocksEndpoint() string {
	if p := os.Getenv("TOR_SOCKS_ENDPOINT"); p != "" {
		return p
	}
	for _, k := range []string{"ALL_PROXY", "all_proxy"} {
		if p := os.Getenv(k); strings.HasPrefix(strings.ToLower(p), "socks5") {
			return p
		}
	}
	return ""
}
