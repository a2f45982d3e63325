// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
)

// ProxySettings is a mutable proxy choice shared by clients. A Client dialed with
// WithProxySettings resolves the proxy per request, so Set applies to existing
// clients from their next request on.
type ProxySettings struct {
	mu    sync.RWMutex
	proxy *url.URL
}

// NewProxySettings returns settings that defer to the environment until Set.
func NewProxySettings() *ProxySettings {
	return &ProxySettings{}
}

// Set installs a proxy URL (http, https or socks5). An empty string clears it.
func (p *ProxySettings) Set(raw string) error {
	var u *url.URL
	if raw != "" {
		var err error
		if u, err = parseProxy(raw); err != nil {
			return err
		}
	}
	p.mu.Lock()
	p.proxy = u
	p.mu.Unlock()
	return nil
}

// Get returns the configured proxy or "" when none is set.
func (p *ProxySettings) Get() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.proxy == nil {
		return ""
	}
	return p.proxy.String()
}

// Func is suitable for http.Transport.Proxy.
func (p *ProxySettings) Func() func(*http.Request) (*url.URL, error) {
	return func(r *http.Request) (*url.URL, error) {
		p.mu.RLock()
		u := p.proxy
		p.mu.RUnlock()
		if u == nil {
			return http.ProxyFromEnvironment(r)
		}
		return u, nil
	}
}

// Test runs discovery against addr through the candidate proxy and returns the
// version the server advertised. The current setting is not changed and no trust
// decision is made.
func (p *ProxySettings) Test(ctx context.Context, raw, addr string) (string, error) {
	proxy, err := parseProxy(raw)
	if err != nil {
		return "", err
	}
	base, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("invalid address: %w", err)
	}
	base.User = nil
	if base.Path == "" {
		base.Path = "/"
	}
	client := NewHTTPClient(defaultTimeout, http.ProxyURL(proxy))
	defer client.CloseIdleConnections()

	d, err := Discover(ctx, client, base)
	if err != nil {
		return "", fmt.Errorf("proxy %s: %w", proxy.Redacted(), err)
	}
	return d.Version, nil
}

func parseProxy(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "socks5", "socks5h":
	default:
		return nil, fmt.Errorf("invalid proxy %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid proxy %q: missing host", raw)
	}
	return u, nil
}
