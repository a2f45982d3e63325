// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

import (
	"crypto/ecdh"
	"encoding/hex"
	"fmt"
	"io"
)

// Identity is the client's ephemeral P-256 key pair. It lives exactly as long as
// the Client that owns it and is never persisted.
type Identity struct {
	private *ecdh.PrivateKey
}

// NewIdentity generates a fresh key pair from rand.
func NewIdentity(rand io.Reader) (*Identity, error) {
	priv, err := ecdh.P256().GenerateKey(rand)
	if err != nil {
		return nil, fmt.Errorf("failed to generate client key: %w", err)
	}
	return &Identity{private: priv}, nil
}

// PublicKey returns the uncompressed SEC1 encoding of the public key.
func (id *Identity) PublicKey() []byte {
	return id.private.PublicKey().Bytes()
}

// PublicKeyHex is the value sent in the Public-Key header.
func (id *Identity) PublicKeyHex() string {
	return hex.EncodeToString(id.PublicKey())
}

// sharedKey runs ECDH against the pinned server key and derives the symmetric key.
func (id *Identity) sharedKey(c Crypto, server *ecdh.PublicKey) ([]byte, error) {
	return SharedKey(c, id.private, server)
}
