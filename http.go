// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/elnormous/contenttype"
)

const (
	mimeJSON   = "application/json"
	mimeSealed = "application/octet-stream"

	// PublicKeyHeader carries the client's hex public key on every call.
	PublicKeyHeader = "Public-Key"

	defaultTimeout = 30 * time.Second
	maxReplySize   = 64 * 1024 * 1024
)

var (
	jsonMediaType   = contenttype.NewMediaType(mimeJSON)
	sealedMediaType = contenttype.NewMediaType(mimeSealed)
)

// NewHTTPClient creates an HTTP client with connection reuse disabled. Every call
// is an independent exchange, so there is nothing to gain from pooling. A
// non-positive timeout selects the default.
func NewHTTPClient(timeout time.Duration, proxy func(*http.Request) (*url.URL, error)) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:             proxy,
			DisableKeepAlives: true,
		},
	}
}

// CleanlyCloseBody drains and closes an HTTP response body to prevent
// HTTP/2 GOAWAY errors caused by closing bodies with unread data.
// See: https://github.com/golang/go/issues/46071
func CleanlyCloseBody(body io.ReadCloser) error {
	if body == nil {
		return nil
	}
	// Drain any remaining data to allow connection reuse
	_, _ = io.Copy(io.Discard, body)
	return body.Close()
}

type httpTransport struct {
	client *http.Client
	target string
}

func newHTTPTransport(_ context.Context, base *url.URL, o *dialOptions) (Transport, error) {
	return &httpTransport{client: o.httpClient, target: base.String()}, nil
}

// Send issues a single POST. Failures are returned as is; there is no retry.
func (t *httpTransport) Send(ctx context.Context, req *SealedRequest) (*Reply, error) {
	request, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		t.target,
		bytes.NewReader(req.Body),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Content-Type", mimeSealed)
	request.Header.Set(PublicKeyHeader, req.PublicKey)

	resp, err := t.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("failed to issue request: %w", err)
	}
	defer CleanlyCloseBody(resp.Body)

	// Return an error for any non successful status code
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return &Reply{ContentType: resp.Header.Get("Content-Type"), Body: body}, nil
}

func (t *httpTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

func contentType(s string) contenttype.MediaType {
	return contenttype.NewMediaType(s)
}

// isSealed reports whether a reply body is a frame rather than plain JSON.
func isSealed(s string) bool {
	if s == "" {
		return false
	}
	mt := contentType(s)
	return mt.Matches(sealedMediaType)
}
