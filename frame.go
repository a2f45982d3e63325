// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

// gcmTagSize is the authentication tag appended by AES-GCM.
const gcmTagSize = 16

// Frame is one encrypted request body.
//
//	[12 nonce][ciphertext || 16 tag]
//
// There is no length prefix, sequence number or replay field: one frame is one
// HTTP body.
type Frame struct {
	Nonce      [NonceSize]byte
	Ciphertext []byte
}

// Bytes returns the wire encoding.
func (f *Frame) Bytes() []byte {
	buf := make([]byte, NonceSize+len(f.Ciphertext))
	copy(buf, f.Nonce[:])
	copy(buf[NonceSize:], f.Ciphertext)
	return buf
}

// ParseFrame splits a wire body into nonce and ciphertext.
func ParseFrame(b []byte) (*Frame, error) {
	if len(b) < NonceSize+gcmTagSize {
		return nil, ErrShortFrame
	}
	f := &Frame{Ciphertext: append([]byte(nil), b[NonceSize:]...)}
	copy(f.Nonce[:], b[:NonceSize])
	return f, nil
}
