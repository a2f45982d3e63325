// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	rpc "github.com/gorilla/rpc/v2/json2"
)

// discoveryPath is resolved against the base URL.
const discoveryPath = "discovery"

// Discovery is the result object of GET <base>/discovery.
type Discovery struct {
	Version  string   `json:"version"`
	Features []string `json:"features"`
	PubKey   string   `json:"pubkey"`
}

// FeatureSet holds the method names a server advertised.
type FeatureSet map[string]struct{}

// NewFeatureSet builds a set from a discovery feature list.
func NewFeatureSet(features []string) FeatureSet {
	s := make(FeatureSet, len(features))
	for _, f := range features {
		s[f] = struct{}{}
	}
	return s
}

// Has reports whether method was advertised.
func (s FeatureSet) Has(method string) bool {
	_, ok := s[method]
	return ok
}

// List returns the features in sorted order.
func (s FeatureSet) List() []string {
	out := make([]string, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// ServerDescriptor is what a Client pins at Dial time.
type ServerDescriptor struct {
	URL         *url.URL
	PublicKey   []byte
	Fingerprint string
	Version     string
	Features    FeatureSet
}

// Discover fetches the server's advertised version, features and public key. It
// performs no trust decision; see VerifyServerKey.
func Discover(ctx context.Context, client *http.Client, base *url.URL) (*Discovery, error) {
	target := base.JoinPath(discoveryPath)
	fail := func(err error) (*Discovery, error) {
		return nil, &DiscoveryError{URL: target.String(), Err: err}
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return fail(fmt.Errorf("failed to create request: %w", err))
	}
	request.Header.Set("Accept", mimeJSON)

	resp, err := client.Do(request)
	if err != nil {
		return fail(fmt.Errorf("failed to issue request: %w", err))
	}
	defer CleanlyCloseBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(&StatusError{Code: resp.StatusCode})
	}

	var d Discovery
	if err := rpc.DecodeClientResponse(resp.Body, &d); err != nil {
		return fail(fmt.Errorf("failed to decode discovery response: %w", err))
	}
	if d.Version == "" {
		return nil, ErrNoVersion
	}
	if d.PubKey == "" {
		return nil, ErrMissingPublicKey
	}
	return &d, nil
}
