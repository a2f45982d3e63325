// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
addr = "http://abcd@127.0.0.1:9000"
timeout = "5s"
proxy = "socks5://127.0.0.1:1080"
transport = "http"
log_level = "debug"
`

func TestLoadConfig(t *testing.T) {
	cfg, err := Load([]byte(testConfig))
	require.NoError(t, err)
	assert.Equal(t, "http://abcd@127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "socks5://127.0.0.1:1080", cfg.Proxy)
	assert.Equal(t, TransportHTTP, cfg.Transport)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoadConfigFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "securerpc.toml")
	require.NoError(t, os.WriteFile(f, []byte(testConfig), 0o600))

	cfg, err := LoadFile(f)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Timeout)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := map[string]string{
		"proxy scheme": `proxy = "ftp://host:21"`,
		"proxy host":   `proxy = "http://"`,
		"log level":    `log_level = "loud"`,
		"syntax":       `addr = `,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestConfigApplyEnv(t *testing.T) {
	t.Setenv("SECURERPC_ADDR", "http://ff@example.com:80")
	t.Setenv("SECURERPC_TIMEOUT", "2s")
	t.Setenv("SECURERPC_LOG_LEVEL", "WARN")

	cfg, err := Load([]byte(testConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "http://ff@example.com:80", cfg.Addr)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, "socks5://127.0.0.1:1080", cfg.Proxy, "unset variables keep file values")

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)
}

func TestConfigFromEnvEmpty(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Empty(t, cfg.Addr)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)
}

func TestConfigOptions(t *testing.T) {
	cfg := &Config{
		Timeout:    time.Second,
		Proxy:      "http://proxy.local:3128",
		Transport:  TransportHTTP,
		GRPCTarget: "127.0.0.1:9001",
	}
	proxy := NewProxySettings()
	opts, err := cfg.Options(proxy)
	require.NoError(t, err)
	assert.Equal(t, "http://proxy.local:3128", proxy.Get())

	o := &dialOptions{}
	for _, opt := range opts {
		opt(o)
	}
	assert.Equal(t, time.Second, o.timeout)
	assert.Equal(t, TransportHTTP, o.transport)
	assert.Equal(t, "127.0.0.1:9001", o.grpcTarget)
	assert.Same(t, proxy, o.proxy)
}
