// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

import (
	"bytes"
	"context"
	"crypto/ecdh"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	rpc "github.com/gorilla/rpc/v2/json2"
	"github.com/prometheus/client_golang/prometheus"
)

// Client is a connection to a pinned server. It is immutable after Dial and safe
// for concurrent use: every call draws its own nonce and derives its own key.
type Client struct {
	identity  *Identity
	server    *ServerDescriptor
	serverKey *ecdh.PublicKey

	transport Transport
	http      *http.Client
	codec     Codec
	crypto    Crypto
	log       *slog.Logger
	metrics   *metrics
}

// DialOption configures client connections
type DialOption func(*dialOptions)

type dialOptions struct {
	codec      Codec
	transport  string // "http", "grpc"
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	crypto     Crypto
	proxy      *ProxySettings
	registerer prometheus.Registerer
	grpcTarget string
}

// WithCodec sets a custom codec
func WithCodec(c Codec) DialOption {
	return func(o *dialOptions) { o.codec = c }
}

// WithTransport explicitly sets the transport type
func WithTransport(t string) DialOption {
	return func(o *dialOptions) { o.transport = t }
}

// WithHTTPClient replaces the HTTP client used for discovery and the HTTP
// transport. WithTimeout and WithProxySettings are ignored when it is set.
func WithHTTPClient(c *http.Client) DialOption {
	return func(o *dialOptions) { o.httpClient = c }
}

// WithTimeout bounds each HTTP exchange.
func WithTimeout(d time.Duration) DialOption {
	return func(o *dialOptions) { o.timeout = d }
}

// WithLogger sets the logger. Logging is discarded by default.
func WithLogger(l *slog.Logger) DialOption {
	return func(o *dialOptions) { o.logger = l }
}

// WithCrypto overrides the random source, KDF or AEAD. Unset fields keep their
// defaults.
func WithCrypto(c Crypto) DialOption {
	return func(o *dialOptions) { o.crypto = c }
}

// WithProxySettings routes HTTP traffic through the proxy held by p.
func WithProxySettings(p *ProxySettings) DialOption {
	return func(o *dialOptions) { o.proxy = p }
}

// WithRegisterer registers the client's Prometheus collectors on reg.
func WithRegisterer(reg prometheus.Registerer) DialOption {
	return func(o *dialOptions) { o.registerer = reg }
}

// WithGRPCTarget sets the host:port the grpc transport dials. It defaults to the
// host of the connection address.
func WithGRPCTarget(target string) DialOption {
	return func(o *dialOptions) { o.grpcTarget = target }
}

func (o *dialOptions) fill() {
	if o.transport == "" {
		o.transport = DefaultTransport
	}
	if o.codec == nil {
		o.codec = defaultCodec
	}
	if o.timeout <= 0 {
		o.timeout = defaultTimeout
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	o.crypto = o.crypto.withDefaults()
	if o.httpClient == nil {
		proxy := http.ProxyFromEnvironment
		if o.proxy != nil {
			proxy = o.proxy.Func()
		}
		o.httpClient = NewHTTPClient(o.timeout, proxy)
	}
}

// Server returns a copy of the pinned server descriptor.
func (c *Client) Server() ServerDescriptor {
	s := *c.server
	u := *s.URL
	s.URL = &u
	s.PublicKey = append([]byte(nil), s.PublicKey...)
	s.Features = NewFeatureSet(s.Features.List())
	return s
}

// Supports reports whether the server advertised method.
func (c *Client) Supports(method string) bool {
	return c.server.Features.Has(method)
}

// PublicKey returns the client's public key as sent in the Public-Key header.
func (c *Client) PublicKey() []byte {
	return c.identity.PublicKey()
}

// Call invokes method with positional params built from params and decodes the
// JSON-RPC result into reply. A nil reply accepts any result, including null.
// Errors returned by the server are *json2.Error.
func (c *Client) Call(ctx context.Context, method string, params, reply interface{}) error {
	body, err := c.CallRaw(ctx, method, params)
	if err != nil {
		return err
	}

	target := reply
	if target == nil {
		target = &json.RawMessage{}
	}
	if err := rpc.DecodeClientResponse(bytes.NewReader(body), target); err != nil {
		if reply == nil && errors.Is(err, rpc.ErrNullResult) {
			return nil
		}
		var rpcErr *rpc.Error
		if errors.As(err, &rpcErr) {
			return rpcErr
		}
		return fmt.Errorf("failed to decode client response: %w", err)
	}
	return nil
}

// CallRaw performs the call and returns the undecoded JSON-RPC response body.
// Methods the server did not advertise fail with *NotImplementedError before any
// network traffic.
func (c *Client) CallRaw(ctx context.Context, method string, params interface{}) ([]byte, error) {
	start := time.Now()
	if !c.server.Features.Has(method) {
		err := &NotImplementedError{Method: method}
		c.metrics.observeCall(method, start, err)
		return nil, err
	}

	log := c.log.With(slog.String("method", method), slog.String("call_id", uuid.NewString()))
	log.Debug("sending encrypted call")

	body, err := c.send(ctx, method, params)
	c.metrics.observeCall(method, start, err)
	if err != nil {
		log.Error("call failed", slog.Any("err", err))
		return nil, err
	}
	log.Debug("call completed", slog.Duration("elapsed", time.Since(start)), slog.Int("bytes", len(body)))
	return body, nil
}

func (c *Client) send(ctx context.Context, method string, params interface{}) ([]byte, error) {
	env, err := NewEnvelope(method, params)
	if err != nil {
		return nil, err
	}
	plaintext, err := c.codec.Encode(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}

	key, err := c.identity.sharedKey(c.crypto, c.serverKey)
	if err != nil {
		return nil, err
	}
	frame, err := Seal(c.crypto, key, plaintext)
	if err != nil {
		return nil, err
	}

	reply, err := c.transport.Send(ctx, &SealedRequest{
		Method:    method,
		PublicKey: c.identity.PublicKeyHex(),
		Body:      frame.Bytes(),
	})
	if err != nil {
		return nil, err
	}

	if isSealed(reply.ContentType) {
		f, err := ParseFrame(reply.Body)
		if err != nil {
			return nil, fmt.Errorf("sealed response: %w", err)
		}
		return Open(c.crypto, key, f)
	}
	if reply.ContentType != "" {
		if mt := contentType(reply.ContentType); !mt.Matches(jsonMediaType) {
			c.log.Warn("unexpected response content type", slog.String("method", method), slog.String("content_type", reply.ContentType))
		}
	}
	return reply.Body, nil
}

// discover runs discovery against the pinned base URL.
func (c *Client) discover(ctx context.Context) (*Discovery, error) {
	d, err := Discover(ctx, c.http, c.server.URL)
	c.metrics.observeDiscovery(err)
	return d, err
}

// Close releases transport resources.
func (c *Client) Close() error {
	return c.transport.Close()
}
