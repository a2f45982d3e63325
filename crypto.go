// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the length of the derived AES-256 key.
	KeySize = 32
	// NonceSize is the GCM nonce length carried at the front of every frame.
	NonceSize = 12
)

// Crypto bundles the primitives the channel depends on so that tests can swap in
// a deterministic random source.
type Crypto struct {
	Rand io.Reader
	KDF  func(secret []byte) ([]byte, error)
	AEAD func(key []byte) (cipher.AEAD, error)
}

// DefaultCrypto uses crypto/rand, HKDF-SHA256 and AES-256-GCM.
func DefaultCrypto() Crypto {
	return Crypto{
		Rand: rand.Reader,
		KDF:  DeriveKey,
		AEAD: NewGCM,
	}
}

func (c Crypto) withDefaults() Crypto {
	d := DefaultCrypto()
	if c.Rand == nil {
		c.Rand = d.Rand
	}
	if c.KDF == nil {
		c.KDF = d.KDF
	}
	if c.AEAD == nil {
		c.AEAD = d.AEAD
	}
	return c
}

// DeriveKey expands an ECDH secret into a KeySize key with HKDF-SHA256, no salt
// and no info.
func DeriveKey(secret []byte) ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, nil), key); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	return key, nil
}

// NewGCM returns AES-GCM with the standard 12 byte nonce.
func NewGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// SharedKey computes the symmetric key both sides arrive at: the x-coordinate of
// priv*pub fed through c.KDF. Either side may call it with its own private key and
// the peer's public key.
func SharedKey(c Crypto, priv *ecdh.PrivateKey, pub *ecdh.PublicKey) ([]byte, error) {
	c = c.withDefaults()
	secret, err := priv.ECDH(pub)
	if err != nil {
		return nil, fmt.Errorf("ecdh: %w", err)
	}
	return c.KDF(secret)
}

// Seal encrypts plaintext under key with a fresh nonce and returns the frame.
func Seal(c Crypto, key, plaintext []byte) (*Frame, error) {
	c = c.withDefaults()
	aead, err := c.AEAD(key)
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}
	f := &Frame{}
	if _, err := io.ReadFull(c.Rand, f.Nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to read nonce: %w", err)
	}
	f.Ciphertext = aead.Seal(nil, f.Nonce[:], plaintext, nil)
	return f, nil
}

// Open authenticates and decrypts a frame.
func Open(c Crypto, key []byte, f *Frame) ([]byte, error) {
	c = c.withDefaults()
	aead, err := c.AEAD(key)
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}
	plaintext, err := aead.Open(nil, f.Nonce[:], f.Ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame: %w", err)
	}
	return plaintext, nil
}
