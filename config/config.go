// Package config builds the daemon configuration from a TOML file with
// environment-variable overrides.
//
// The configuration is an explicitly constructed object handed to the
// components that need it; nothing reads ambient process state lazily.
// Validation happens at load time so a misconfigured daemon refuses to
// start instead of failing on its first request.
package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"

	"github.com/ispgear/rosbridge/logger"
)

// Duration wraps time.Duration so it can be written as "30s" in the TOML
// file and in environment overrides.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML and env values.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed

	return nil
}

// Device describes one controllable router.
type Device struct {
	// Name identifies the device in requests and in the credential store.
	Name string `toml:"name"`

	// Address is the device's host address.
	Address string `toml:"address"`

	// Port overrides the default API port when non-zero.
	Port int `toml:"port"`

	// TLS selects the TLS-wrapped API port and transport.
	TLS bool `toml:"tls"`
}

// Config is the daemon configuration.
type Config struct {
	// SocketPath is the Unix domain socket the front door listens on.
	SocketPath string `toml:"socket_path" env:"ROSBRIDGE_SOCKET"`

	// CredentialsFile is the path of the JSON credential document.
	CredentialsFile string `toml:"credentials_file" env:"ROSBRIDGE_CREDENTIALS"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `toml:"log_level" env:"ROSBRIDGE_LOG_LEVEL"`

	// RequestTimeout bounds one front-door request end to end, dialing and
	// login included. The protocol itself defines no timeouts; requests
	// race against this external deadline.
	RequestTimeout Duration `toml:"request_timeout" env:"ROSBRIDGE_REQUEST_TIMEOUT"`

	// Devices lists the controllable routers.
	Devices []Device `toml:"device"`
}

// Load reads the TOML file at path, applies environment overrides, and
// validates the result.
func Load(ctx context.Context, path string) (*Config, error) {
	cfg := &Config{
		SocketPath:     "/run/rosbridge.sock",
		RequestTimeout: Duration{30 * time.Second},
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := envconfig.Process(ctx, cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.SocketPath == "" {
		return errors.New("config: socket_path is empty")
	}

	if c.CredentialsFile == "" {
		return errors.New("config: credentials_file is empty")
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if c.RequestTimeout.Duration <= 0 {
		return errors.New("config: request_timeout must be positive")
	}

	if len(c.Devices) == 0 {
		return errors.New("config: no devices configured")
	}

	seen := make(map[string]struct{}, len(c.Devices))
	for i := range c.Devices {
		dev := &c.Devices[i]

		if dev.Name == "" {
			return fmt.Errorf("config: device #%d has no name", i+1)
		}
		if _, dup := seen[dev.Name]; dup {
			return fmt.Errorf("config: duplicate device name %q", dev.Name)
		}
		seen[dev.Name] = struct{}{}

		if dev.Address == "" {
			return fmt.Errorf("config: device %q has no address", dev.Name)
		}
		if dev.Port < 0 || dev.Port > 65535 {
			return fmt.Errorf("config: device %q port out of range [0, 65535]", dev.Name)
		}
	}

	return nil
}

// Device finds a device by name or address.
func (c *Config) Device(nameOrAddr string) (*Device, bool) {
	for i := range c.Devices {
		dev := &c.Devices[i]
		if dev.Name == nameOrAddr || dev.Address == nameOrAddr {
			return dev, true
		}
	}

	return nil, false
}

// DeviceNames returns the names of every configured device, in file order.
func (c *Config) DeviceNames() []string {
	names := make([]string, 0, len(c.Devices))
	for i := range c.Devices {
		names = append(names, c.Devices[i].Name)
	}

	return names
}

// Level returns the parsed log level.
func (c *Config) Level() logger.Level {
	level, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		return logger.InfoLevel
	}

	return level
}
