// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// ProtocolVersion is the JSON-RPC version tag of every envelope.
const ProtocolVersion = "2.0"

// requestID is the id of every request. Each call is its own HTTP exchange, so
// responses never need correlating by id.
const requestID = 1

// Envelope is the JSON-RPC request that gets sealed.
type Envelope struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      uint64 `json:"id"`
}

// NewEnvelope flattens params into positional form.
func NewEnvelope(method string, params any) (*Envelope, error) {
	positional, err := Positional(params)
	if err != nil {
		return nil, fmt.Errorf("encode params for %s: %w", method, err)
	}
	return &Envelope{
		JSONRPC: ProtocolVersion,
		Method:  method,
		Params:  positional,
		ID:      requestID,
	}, nil
}

// Positional turns a parameter struct into a JSON-RPC positional parameter list,
// one element per exported field in declaration order. Nil pointers and maps become
// null so that optional fields never shift later positions; nil slices become an
// empty list. A []any is passed through unchanged and nil yields an empty list.
func Positional(params any) ([]any, error) {
	if params == nil {
		return []any{}, nil
	}
	if list, ok := params.([]any); ok {
		return list, nil
	}

	v := reflect.ValueOf(params)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return []any{}, nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("params must be a struct or []any, got %s", v.Kind())
	}

	t := v.Type()
	out := make([]any, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || field.Tag.Get("json") == "-" {
			continue
		}
		fv := v.Field(i)
		if fv.Kind() == reflect.Slice && fv.IsNil() {
			fv = reflect.MakeSlice(fv.Type(), 0, 0)
		}
		out = append(out, fv.Interface())
	}
	return out, nil
}

// Codec encodes envelopes before sealing.
type Codec interface {
	Encode(v interface{}) ([]byte, error)
	Decode(data []byte, v interface{}) error
}

// JSONCodec is a JSON-based codec
type JSONCodec struct{}

func (JSONCodec) Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Decode(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// defaultCodec is used when no codec is specified
var defaultCodec Codec = JSONCodec{}
