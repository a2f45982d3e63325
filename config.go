// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joeshaw/envdecode"
)

// Config is the file and environment form of the dial options. Zero values
// mean "use the default".
type Config struct {
	// Addr is http://<fingerprint>@host:port. ENV: SECURERPC_ADDR
	Addr string `toml:"addr" env:"SECURERPC_ADDR"`
	// Timeout bounds each HTTP exchange. ENV: SECURERPC_TIMEOUT
	Timeout time.Duration `toml:"timeout" env:"SECURERPC_TIMEOUT"`
	// Proxy is an http, https or socks5 proxy URL. ENV: SECURERPC_PROXY
	Proxy string `toml:"proxy" env:"SECURERPC_PROXY"`
	// Transport is "http" or, with the grpc build tag, "grpc". ENV: SECURERPC_TRANSPORT
	Transport string `toml:"transport" env:"SECURERPC_TRANSPORT"`
	// GRPCTarget overrides the host:port used by the grpc transport. ENV: SECURERPC_GRPC_TARGET
	GRPCTarget string `toml:"grpc_target" env:"SECURERPC_GRPC_TARGET"`
	// LogLevel is debug, info, warn or error. ENV: SECURERPC_LOG_LEVEL
	LogLevel string `toml:"log_level" env:"SECURERPC_LOG_LEVEL"`
}

// Load parses a TOML document.
func Load(b []byte) (*Config, error) {
	cfg := new(Config)
	if err := toml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads a TOML config file.
func LoadFile(f string) (*Config, error) {
	b, err := os.ReadFile(f)
	if err != nil {
		return nil, err
	}
	return Load(b)
}

// ApplyEnv overlays variables that are set in the environment onto cfg.
func (cfg *Config) ApplyEnv() error {
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg.Validate()
}

// FromEnv builds a Config from the environment alone.
func FromEnv() (*Config, error) {
	cfg := new(Config)
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise only fail at dial time.
func (cfg *Config) Validate() error {
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if cfg.Proxy != "" {
		if _, err := parseProxy(cfg.Proxy); err != nil {
			return err
		}
	}
	if _, err := cfg.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel, defaulting to info.
func (cfg *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if cfg.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(strings.ToLower(cfg.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	return lvl, nil
}

// Options converts the config into dial options. A proxy is installed into
// proxy when both are set.
func (cfg *Config) Options(proxy *ProxySettings) ([]DialOption, error) {
	var opts []DialOption
	if cfg.Timeout > 0 {
		opts = append(opts, WithTimeout(cfg.Timeout))
	}
	if cfg.Transport != "" {
		opts = append(opts, WithTransport(cfg.Transport))
	}
	if cfg.GRPCTarget != "" {
		opts = append(opts, WithGRPCTarget(cfg.GRPCTarget))
	}
	if proxy != nil {
		if cfg.Proxy != "" {
			if err := proxy.Set(cfg.Proxy); err != nil {
				return nil, err
			}
		}
		opts = append(opts, WithProxySettings(proxy))
	}
	return opts, nil
}
