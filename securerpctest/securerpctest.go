// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package securerpctest provides an in-process server that speaks the securerpc
// protocol: it answers discovery, decrypts frames with its own private key and
// records every call it receives.
package securerpctest

import (
	"crypto/ecdh"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/luxfi/securerpc"
)

// ServerErrorCode is the JSON-RPC error code used for handler failures.
const ServerErrorCode = 500

// Handler answers one decrypted call.
type Handler func(method string, params []json.RawMessage) (any, error)

// Call is a request as the server saw it after decryption.
type Call struct {
	PublicKey string
	Nonce     [securerpc.NonceSize]byte
	Plaintext []byte
	Method    string
	Params    []json.RawMessage
	ID        uint64
}

// Server is a fake remote service.
type Server struct {
	*httptest.Server

	key *ecdh.PrivateKey

	mu          sync.Mutex
	version     string
	features    []string
	advertised  string
	handler     Handler
	sealReplies bool
	calls       []Call
	posts       int
	discoveries int
	publicKeys  []string
}

// Option configures a Server
type Option func(*Server)

// WithVersion sets the advertised version. An empty string advertises none.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithFeatures replaces the advertised method list.
func WithFeatures(features ...string) Option {
	return func(s *Server) { s.features = features }
}

// WithAdvertisedKey advertises pubHex instead of the server's real key. An empty
// string advertises no key.
func WithAdvertisedKey(pubHex string) Option {
	return func(s *Server) { s.advertised = pubHex }
}

// WithHandler sets the call handler. The default returns the method name.
func WithHandler(h Handler) Option {
	return func(s *Server) { s.handler = h }
}

// WithSealedReplies makes the server encrypt responses under the call key.
func WithSealedReplies() Option {
	return func(s *Server) { s.sealReplies = true }
}

// AllFeatures is every method the typed client knows.
var AllFeatures = []string{
	securerpc.MethodDeploy,
	securerpc.MethodExecute,
	securerpc.MethodTransfer,
	securerpc.MethodJoin,
	securerpc.MethodSplit,
	securerpc.MethodDeploymentCost,
	securerpc.MethodExecutionCost,
	securerpc.MethodDecryptRecords,
	securerpc.MethodTransactionFromAuthorization,
	securerpc.MethodDeployFromAuthorization,
	securerpc.MethodUpdate,
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t testing.TB, opts ...Option) *Server {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate server key: %v", err)
	}
	s := &Server{
		key:      key,
		version:  securerpc.MinimumVersion,
		features: AllFeatures,
		handler: func(method string, _ []json.RawMessage) (any, error) {
			return method, nil
		},
	}
	s.advertised = s.PublicKeyHex()
	for _, opt := range opts {
		opt(s)
	}
	s.Server = httptest.NewServer(s)
	t.Cleanup(s.Close)
	return s
}

// PublicKeyHex is the server's real public key.
func (s *Server) PublicKeyHex() string {
	return hex.EncodeToString(s.key.PublicKey().Bytes())
}

// Fingerprint is the fingerprint of the server's real public key.
func (s *Server) Fingerprint() string {
	return securerpc.Fingerprint(s.key.PublicKey().Bytes())
}

// Addr is the connection address pinning the real key.
func (s *Server) Addr() string {
	return s.AddrWithFingerprint(s.Fingerprint())
}

// AddrWithFingerprint builds a connection address pinning fp.
func (s *Server) AddrWithFingerprint(fp string) string {
	return strings.Replace(s.URL, "://", "://"+fp+"@", 1) + "/"
}

// SetVersion changes the advertised version for later discoveries.
func (s *Server) SetVersion(v string) {
	s.mu.Lock()
	s.version = v
	s.mu.Unlock()
}

// Calls returns the decrypted calls received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Posts counts every POST, including ones that failed to decrypt.
func (s *Server) Posts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.posts
}

// Discoveries counts discovery requests.
func (s *Server) Discoveries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discoveries
}

// PublicKeysSeen lists Public-Key header values from every POST.
func (s *Server) PublicKeysSeen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.publicKeys...)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/discovery":
		s.serveDiscovery(w)
	case r.Method == http.MethodPost && r.URL.Path == "/":
		s.serveCall(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) serveDiscovery(w http.ResponseWriter) {
	s.mu.Lock()
	s.discoveries++
	result := securerpc.Discovery{
		Version:  s.version,
		Features: s.features,
		PubKey:   s.advertised,
	}
	s.mu.Unlock()
	writeJSON(w, map[string]any{"jsonrpc": "2.0", "result": result, "id": 1})
}

func (s *Server) serveCall(w http.ResponseWriter, r *http.Request) {
	pubHex := r.Header.Get(securerpc.PublicKeyHeader)
	s.mu.Lock()
	s.posts++
	s.publicKeys = append(s.publicKeys, pubHex)
	s.mu.Unlock()

	if r.Header.Get("Content-Type") != "application/octet-stream" {
		http.Error(w, "unsupported media type", http.StatusUnsupportedMediaType)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	key, err := s.callKey(pubHex)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	frame, err := securerpc.ParseFrame(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	plaintext, err := securerpc.Open(securerpc.DefaultCrypto(), key, frame)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var env struct {
		JSONRPC string            `json:"jsonrpc"`
		Method  string            `json:"method"`
		Params  []json.RawMessage `json:"params"`
		ID      uint64            `json:"id"`
	}
	if err := (securerpc.JSONCodec{}).Decode(plaintext, &env); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.calls = append(s.calls, Call{
		PublicKey: pubHex,
		Nonce:     frame.Nonce,
		Plaintext: plaintext,
		Method:    env.Method,
		Params:    env.Params,
		ID:        env.ID,
	})
	handler, seal := s.handler, s.sealReplies
	s.mu.Unlock()

	resp := map[string]any{"jsonrpc": "2.0", "id": env.ID}
	if result, err := handler(env.Method, env.Params); err != nil {
		resp["error"] = map[string]any{"code": ServerErrorCode, "message": err.Error()}
	} else {
		resp["result"] = result
	}

	if !seal {
		writeJSON(w, resp)
		return
	}
	out, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sealed, err := securerpc.Seal(securerpc.DefaultCrypto(), key, out)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(sealed.Bytes())
}

// callKey derives the key the client used, from the Public-Key header alone.
func (s *Server) callKey(pubHex string) ([]byte, error) {
	raw, err := hex.DecodeString(pubHex)
	if err != nil {
		return nil, fmt.Errorf("bad public key header: %w", err)
	}
	pub, err := ecdh.P256().NewPublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("bad public key: %w", err)
	}
	return securerpc.SharedKey(securerpc.DefaultCrypto(), s.key, pub)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
