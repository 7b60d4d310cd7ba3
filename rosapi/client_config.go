package rosapi

import (
	"crypto/tls"
	"errors"
	"time"

	"github.com/ispgear/rosbridge/logger"
)

// Default device-facing ports for the control-plane API.
const (
	// DefaultPort is the plaintext API port.
	DefaultPort = 8728
	// DefaultTLSPort is the TLS-wrapped API port.
	DefaultTLSPort = 8729
)

// ClientConfig represents the configuration parameters for one device session.
type ClientConfig struct {
	// host specifies the address of the remote device.
	host string

	// port specifies the TCP port number. Zero selects DefaultPort or
	// DefaultTLSPort depending on useTLS.
	port int

	// useTLS indicates whether the connection is TLS-wrapped.
	// Defaults to false (plaintext).
	useTLS bool

	// tlsConfig is the TLS client configuration used when useTLS is true.
	//
	// When nil, a configuration with InsecureSkipVerify set is used: the
	// devices this package controls commonly present self-signed
	// certificates. Callers that provision verifiable certificates should
	// supply their own configuration via WithTLSConfig.
	tlsConfig *tls.Config

	// dialTimeout bounds transport establishment. It should be between
	// 100 milliseconds and 60 seconds. Defaults to 5 seconds.
	dialTimeout time.Duration

	// readBufferSize is the size of the receiver's read buffer.
	// Defaults to 4096.
	readBufferSize int

	// logger provides a logger instance for session events and errors.
	logger logger.Logger
}

// NewClientConfig creates a session configuration for the given device host
// with optional functional options.
//
// It initializes a ClientConfig with default values and then applies the
// provided options. Returns the initialized ClientConfig and an error if any
// option rejects its value.
func NewClientConfig(host string, opts ...ClientOption) (*ClientConfig, error) {
	cfg := &ClientConfig{
		dialTimeout:    5 * time.Second,
		readBufferSize: 4096,
		logger:         logger.GetLogger(),
	}

	if err := withHost(host).apply(cfg); err != nil {
		return cfg, err
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// Host returns the configured device address.
func (cfg *ClientConfig) Host() string { return cfg.host }

// Port returns the effective TCP port, resolving the zero value to the
// default port for the configured transport security.
func (cfg *ClientConfig) Port() int {
	if cfg.port != 0 {
		return cfg.port
	}
	if cfg.useTLS {
		return DefaultTLSPort
	}
	return DefaultPort
}

// ClientOption represents a functional option for configuring a ClientConfig.
type ClientOption interface {
	apply(*ClientConfig) error
}

type clientOptFunc struct {
	name      string
	applyFunc func(*ClientConfig) error
}

func (c *clientOptFunc) apply(cfg *ClientConfig) error { return c.applyFunc(cfg) }

func newClientOptFunc(name string, f func(*ClientConfig) error) *clientOptFunc {
	return &clientOptFunc{
		name:      name,
		applyFunc: f,
	}
}

// withHost sets the device address. An error is returned if the host is
// empty or the configuration is nil.
func withHost(host string) ClientOption {
	return newClientOptFunc("withHost", func(cfg *ClientConfig) error {
		if cfg == nil {
			return ErrClientConfigNil
		}

		if host == "" {
			return errors.New("host is empty")
		}
		cfg.host = host

		return nil
	})
}

// WithPort sets the TCP port number for the session.
// It returns a ClientOption that validates the port number and updates the
// configuration. An error is returned if the port number is out of the valid
// range (0-65535) or if the configuration is nil.
//
// The default is 0, which resolves to DefaultPort or DefaultTLSPort.
func WithPort(port int) ClientOption {
	return newClientOptFunc("WithPort", func(cfg *ClientConfig) error {
		if cfg == nil {
			return ErrClientConfigNil
		}

		if port < 0 || port > 65535 {
			return errors.New("port is out of range [0, 65535]")
		}
		cfg.port = port

		return nil
	})
}

// WithTLS wraps the session transport in TLS.
//
// Unless WithTLSConfig supplies a configuration, peer-certificate
// verification is skipped: the controlled devices commonly use self-signed
// certificates. The trade-off is deliberate and overridable, not an
// oversight.
func WithTLS() ClientOption {
	return newClientOptFunc("WithTLS", func(cfg *ClientConfig) error {
		if cfg == nil {
			return ErrClientConfigNil
		}

		cfg.useTLS = true

		return nil
	})
}

// WithTLSConfig sets the TLS client configuration and implies WithTLS.
// Supplying a configuration with certificate verification enabled overrides
// the insecure default.
func WithTLSConfig(tlsCfg *tls.Config) ClientOption {
	return newClientOptFunc("WithTLSConfig", func(cfg *ClientConfig) error {
		if cfg == nil {
			return ErrClientConfigNil
		}

		if tlsCfg == nil {
			return errors.New("tls config is nil")
		}
		cfg.useTLS = true
		cfg.tlsConfig = tlsCfg

		return nil
	})
}

// WithDialTimeout sets the timeout for establishing the transport.
// An error is returned if the timeout is outside the valid range
// (0.1-60 seconds) or if the configuration is nil.
//
// The default value is 5 seconds.
func WithDialTimeout(val time.Duration) ClientOption {
	return newClientOptFunc("WithDialTimeout", func(cfg *ClientConfig) error {
		if cfg == nil {
			return ErrClientConfigNil
		}

		if val < 100*time.Millisecond || val > 60*time.Second {
			return errors.New("dial timeout out of range [0.1, 60]")
		}
		cfg.dialTimeout = val

		return nil
	})
}

// WithReadBufferSize sets the size of the receiver's read buffer.
// An error is returned if the size is outside the valid range (256-1048576)
// or if the configuration is nil.
//
// The default value is 4096.
func WithReadBufferSize(size int) ClientOption {
	return newClientOptFunc("WithReadBufferSize", func(cfg *ClientConfig) error {
		if cfg == nil {
			return ErrClientConfigNil
		}

		if size < 256 || size > 1<<20 {
			return errors.New("read buffer size out of range [256, 1048576]")
		}
		cfg.readBufferSize = size

		return nil
	})
}

// WithLogger sets the logger for the session.
// An error is returned if the configuration is nil.
//
// The default logger is the global logger instance.
func WithLogger(l logger.Logger) ClientOption {
	return newClientOptFunc("WithLogger", func(cfg *ClientConfig) error {
		if cfg == nil {
			return ErrClientConfigNil
		}

		cfg.logger = l

		return nil
	})
}
