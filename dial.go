// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

import (
	"context"
	"fmt"
	"log/slog"
)

// Dial connects to the server at addr, an address of the form
// http://<fingerprint>@host:port. It generates the client identity, runs
// discovery and pins the server key. Any failure aborts the whole dial: a
// *Client is only ever returned fully trusted.
func Dial(ctx context.Context, addr string, opts ...DialOption) (*Client, error) {
	o := &dialOptions{}
	for _, opt := range opts {
		opt(o)
	}
	o.fill()

	newTransport, ok := lookupTransport(o.transport)
	if !ok {
		return nil, fmt.Errorf("unknown transport: %s", o.transport)
	}

	base, fingerprint, err := ParseAddress(addr)
	if err != nil {
		return nil, err
	}
	log := o.logger.With(slog.String("server", base.String()))

	identity, err := NewIdentity(o.crypto.Rand)
	if err != nil {
		return nil, err
	}

	m := newMetrics(o.registerer)
	d, err := Discover(ctx, o.httpClient, base)
	m.observeDiscovery(err)
	if err != nil {
		log.Error("discovery failed", slog.Any("err", err))
		return nil, err
	}

	serverKey, err := VerifyServerKey(fingerprint, d.PubKey)
	if err != nil {
		log.Error("server key rejected", slog.Any("err", err))
		return nil, err
	}

	t, err := newTransport(ctx, base, o)
	if err != nil {
		return nil, fmt.Errorf("%s transport: %w", o.transport, err)
	}

	log.Info("server pinned",
		slog.String("version", d.Version),
		slog.String("fingerprint", fingerprint),
		slog.Int("features", len(d.Features)),
		slog.String("transport", o.transport),
	)

	return &Client{
		identity:  identity,
		serverKey: serverKey,
		server: &ServerDescriptor{
			URL:         base,
			PublicKey:   serverKey.Bytes(),
			Fingerprint: fingerprint,
			Version:     d.Version,
			Features:    NewFeatureSet(d.Features),
		},
		transport: t,
		http:      o.httpClient,
		codec:     o.codec,
		crypto:    o.crypto,
		log:       o.logger,
		metrics:   m,
	}, nil
}
