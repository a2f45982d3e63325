// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

import (
	"context"
	"net/url"
	"sort"
	"sync"
)

// Transport types
const (
	TransportHTTP = "http" // POST to the base URL, default
	TransportGRPC = "grpc" // raw frames over gRPC, requires build tag
)

// DefaultTransport is the default transport type (HTTP)
const DefaultTransport = TransportHTTP

// SealedRequest is one encrypted call ready for the wire.
type SealedRequest struct {
	// Method is informational; it is also inside the ciphertext.
	Method    string
	PublicKey string
	Body      []byte
}

// Reply is the undecoded response to a SealedRequest.
type Reply struct {
	ContentType string
	Body        []byte
}

// Transport carries sealed frames to the server.
type Transport interface {
	Send(ctx context.Context, req *SealedRequest) (*Reply, error)
	Close() error
}

type transportFunc func(ctx context.Context, base *url.URL, o *dialOptions) (Transport, error)

var (
	transportsMu sync.RWMutex
	transports   = map[string]transportFunc{
		TransportHTTP: newHTTPTransport,
	}
)

// registerTransport registers a new transport (used by build tags)
func registerTransport(name string, fn transportFunc) {
	transportsMu.Lock()
	defer transportsMu.Unlock()
	transports[name] = fn
}

func lookupTransport(name string) (transportFunc, bool) {
	transportsMu.RLock()
	defer transportsMu.RUnlock()
	fn, ok := transports[name]
	return fn, ok
}

// AvailableTransports returns list of available transport types
func AvailableTransports() []string {
	transportsMu.RLock()
	defer transportsMu.RUnlock()
	result := make([]string, 0, len(transports))
	for name := range transports {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// HasTransport checks if a transport is available
func HasTransport(name string) bool {
	_, ok := lookupTransport(name)
	return ok
}
