package rosapi

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
)

// dial establishes the session transport: a plain TCP connection, or a
// TLS-wrapped one when the configuration asks for it.
//
// When no TLS configuration was supplied, peer-certificate verification is
// skipped (self-signed device certificates); see WithTLSConfig to override.
func dial(ctx context.Context, cfg *ClientConfig) (net.Conn, error) {
	addr := net.JoinHostPort(cfg.host, strconv.Itoa(cfg.Port()))
	dialer := &net.Dialer{Timeout: cfg.dialTimeout}

	if !cfg.useTLS {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", addr, err)
		}

		return conn, nil
	}

	tlsCfg := cfg.tlsConfig
	if tlsCfg == nil {
		tlsCfg = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // self-signed device certificates, documented trade-off
		}
	}

	tlsDialer := &tls.Dialer{NetDialer: dialer, Config: tlsCfg}

	conn, err := tlsDialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial tls %s: %w", addr, err)
	}

	return conn, nil
}
