// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package securerpc is a client for JSON-RPC services that accept individually
// encrypted request bodies and identify themselves by a pinned key fingerprint.
//
// # Addresses
//
// A server address carries the SHA-256 fingerprint of the server's P-256 public
// key in the userinfo position:
//
//	http://3f1c...9a@127.0.0.1:8080
//
// The fingerprint is stripped before any request is made.
//
// # Usage
//
//	client, err := securerpc.Dial(ctx, addr)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Typed call
//	tx, err := client.Transfer(ctx, &securerpc.TransferParams{...})
//
//	// Generic call, params flattened positionally
//	var cost string
//	err = client.Call(ctx, "execution_costv2", &securerpc.ExecutionCostParams{...}, &cost)
//
// # Protocol
//
// Dial generates an ephemeral client key pair, fetches GET <base>/discovery
// (version, features, server public key) and accepts the server key only if it
// hashes to the pinned fingerprint. Each call then:
//
//   - encodes {"jsonrpc":"2.0","method":m,"params":[...],"id":1}
//   - derives key = HKDF-SHA256(ECDH(client, server).x), no salt, no info
//   - seals it with AES-256-GCM under a fresh 12 byte nonce
//   - POSTs nonce||ciphertext with Content-Type application/octet-stream and the
//     client public key in the Public-Key header
//
// Responses are plain JSON-RPC. A response sent as application/octet-stream is
// treated as a frame sealed under the same key.
//
// Methods the server did not advertise fail locally with *NotImplementedError.
//
// # Architecture
//
//   - identity.go, trust.go, discovery.go, version.go: connection setup
//   - crypto.go, frame.go: key agreement and framing
//   - codec.go, params.go, methods.go, client.go: envelopes and dispatch
//   - transport.go, http.go: transport registry and the HTTP transport
//   - dial_grpc.go: gRPC transport (requires -tags grpc)
package securerpc
