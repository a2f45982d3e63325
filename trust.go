// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

import (
	"crypto/ecdh"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// ParseAddress splits a connection address of the form
//
//	http://<fingerprint>@host:port
//
// into the base URL used for network calls and the pinned fingerprint. The
// returned URL never carries userinfo.
func ParseAddress(addr string) (*url.URL, string, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, "", fmt.Errorf("invalid address: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, "", fmt.Errorf("invalid address %q: scheme and host are required", addr)
	}
	var fp string
	if u.User != nil {
		fp = u.User.Username()
	}
	u.User = nil
	if u.Path == "" {
		u.Path = "/"
	}
	if fp == "" {
		return nil, "", ErrNoFingerprint
	}
	return u, strings.ToLower(fp), nil
}

// Fingerprint is the lowercase hex SHA-256 of the raw public key bytes.
func Fingerprint(pub []byte) string {
	sum := sha256.Sum256(pub)
	return hex.EncodeToString(sum[:])
}

// VerifyServerKey decodes the hex key advertised by discovery and accepts it only
// if it hashes to expected.
func VerifyServerKey(expected, pubHex string) (*ecdh.PublicKey, error) {
	expected = strings.ToLower(expected)
	raw, err := hex.DecodeString(pubHex)
	if err != nil {
		return nil, &TrustMismatchError{Expected: expected, Err: err}
	}
	actual := Fingerprint(raw)
	if actual != expected {
		return nil, &TrustMismatchError{Expected: expected, Actual: actual}
	}
	pub, err := ecdh.P256().NewPublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidServerKey, err)
	}
	return pub, nil
}
