// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

import (
	"bytes"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKeyPair(t *testing.T) *ecdh.PrivateKey {
	t.Helper()
	k, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	return k
}

// fixedNonces returns a Crypto whose random source yields the given nonces in order.
func fixedNonces(nonces ...[]byte) Crypto {
	return Crypto{Rand: bytes.NewReader(bytes.Join(nonces, nil))}
}

func TestDeriveKeyRFC5869(t *testing.T) {
	// RFC 5869 test case 3: SHA-256, empty salt and info.
	ikm := bytes.Repeat([]byte{0x0b}, 22)
	want := "8da4e775a563c18f715f802a063c5a31b8a11f5c5ee1879ec3454e5f3c738d2d"

	key, err := DeriveKey(ikm)
	require.NoError(t, err)
	assert.Equal(t, want, hex.EncodeToString(key))
}

func TestSharedKeyAgreement(t *testing.T) {
	client := newKeyPair(t)
	server := newKeyPair(t)
	c := DefaultCrypto()

	fromClient, err := SharedKey(c, client, server.PublicKey())
	require.NoError(t, err)
	fromServer, err := SharedKey(c, server, client.PublicKey())
	require.NoError(t, err)

	assert.Len(t, fromClient, KeySize)
	assert.Equal(t, fromClient, fromServer)

	again, err := SharedKey(c, client, server.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, fromClient, again, "key must be stable for a fixed key pair")
}

func TestSharedKeyUsesXCoordinate(t *testing.T) {
	client := newKeyPair(t)
	server := newKeyPair(t)

	x, err := client.ECDH(server.PublicKey())
	require.NoError(t, err)
	require.Len(t, x, 32)

	want, err := DeriveKey(x)
	require.NoError(t, err)
	got, err := SharedKey(DefaultCrypto(), client, server.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSealOpenRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{7}, KeySize)
	plaintext := []byte(`{"jsonrpc":"2.0","method":"split","params":["a","b",1,null],"id":1}`)

	f, err := Seal(DefaultCrypto(), key, plaintext)
	require.NoError(t, err)
	assert.Len(t, f.Ciphertext, len(plaintext)+gcmTagSize)

	parsed, err := ParseFrame(f.Bytes())
	require.NoError(t, err)
	assert.Equal(t, f.Nonce, parsed.Nonce)

	got, err := Open(DefaultCrypto(), key, parsed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestSealNonceUniqueness(t *testing.T) {
	key := bytes.Repeat([]byte{1}, KeySize)
	plaintext := []byte("identical plaintext")
	n1 := bytes.Repeat([]byte{0xaa}, NonceSize)
	n2 := bytes.Repeat([]byte{0xbb}, NonceSize)

	c := fixedNonces(n1, n2, n1)
	f1, err := Seal(c, key, plaintext)
	require.NoError(t, err)
	f2, err := Seal(c, key, plaintext)
	require.NoError(t, err)
	f3, err := Seal(c, key, plaintext)
	require.NoError(t, err)

	assert.Equal(t, n1, f1.Nonce[:])
	assert.Equal(t, n2, f2.Nonce[:])
	assert.NotEqual(t, f1.Ciphertext, f2.Ciphertext)
	assert.Equal(t, f1.Ciphertext, f3.Ciphertext, "same key and nonce must be deterministic")
}

func TestOpenRejectsTampering(t *testing.T) {
	key := bytes.Repeat([]byte{3}, KeySize)
	f, err := Seal(DefaultCrypto(), key, []byte("payload"))
	require.NoError(t, err)

	f.Ciphertext[0] ^= 0xff
	_, err = Open(DefaultCrypto(), key, f)
	assert.Error(t, err)

	f.Ciphertext[0] ^= 0xff
	_, err = Open(DefaultCrypto(), bytes.Repeat([]byte{4}, KeySize), f)
	assert.Error(t, err)
}

func TestSealShortRandom(t *testing.T) {
	c := Crypto{Rand: bytes.NewReader([]byte{1, 2, 3})}
	_, err := Seal(c, bytes.Repeat([]byte{1}, KeySize), []byte("x"))
	assert.Error(t, err)
}

func TestParseFrame(t *testing.T) {
	_, err := ParseFrame(make([]byte, NonceSize+gcmTagSize-1))
	assert.ErrorIs(t, err, ErrShortFrame)

	raw := append(bytes.Repeat([]byte{9}, NonceSize), bytes.Repeat([]byte{5}, gcmTagSize+4)...)
	f, err := ParseFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, raw[:NonceSize], f.Nonce[:])
	assert.Equal(t, raw[NonceSize:], f.Ciphertext)
	assert.Equal(t, raw, f.Bytes())
}
