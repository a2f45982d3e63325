// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

import (
	"errors"
	"fmt"
)

var (
	ErrNoVersion        = errors.New("securerpc: discovery result has no version")
	ErrMissingPublicKey = errors.New("securerpc: discovery result has no public key")
	ErrNoFingerprint    = errors.New("securerpc: address carries no server fingerprint")
	ErrInvalidServerKey = errors.New("securerpc: server public key is not a P-256 point")
	ErrMalformedVersion = errors.New("securerpc: malformed version")
	ErrShortFrame       = errors.New("securerpc: frame shorter than nonce and tag")
)

// DiscoveryError is returned when the discovery endpoint cannot be reached or its
// response is not a usable JSON-RPC result.
type DiscoveryError struct {
	URL string
	Err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("securerpc: discovery at %s failed: %v", e.URL, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// TrustMismatchError means the server key does not hash to the pinned fingerprint.
type TrustMismatchError struct {
	Expected string
	Actual   string
	Err      error
}

func (e *TrustMismatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("securerpc: server key cannot be checked against fingerprint %s: %v", e.Expected, e.Err)
	}
	return fmt.Sprintf("securerpc: server fingerprint %s does not match expected %s", e.Actual, e.Expected)
}

func (e *TrustMismatchError) Unwrap() error { return e.Err }

// VersionIncompatibleError reports a server older than MinimumVersion.
type VersionIncompatibleError struct {
	Actual   string
	Required string
}

func (e *VersionIncompatibleError) Error() string {
	return fmt.Sprintf("securerpc: server version %s is too old, %s is required", e.Actual, e.Required)
}

// NotImplementedError is returned, without any network traffic, for methods the
// server did not advertise.
type NotImplementedError struct {
	Method string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("securerpc: method %s not implemented by server", e.Method)
}

// StatusError carries a non-2xx HTTP status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("received status code: %d", e.Code)
}
