// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionalDeclarationOrder(t *testing.T) {
	got, err := Positional(&TransferParams{
		PrivateKey: "pk",
		Recipient:  "addr",
		Amount:     42,
		Function:   TransferPublic,
		Fee:        Ptr(uint64(7)),
	})
	require.NoError(t, err)
	require.Len(t, got, 8)

	assert.Equal(t, "pk", got[0])
	assert.Equal(t, "addr", got[1])
	assert.Equal(t, uint64(42), got[2])
	assert.Equal(t, TransferPublic, got[3])
	assert.Nil(t, got[4])
	assert.Nil(t, got[5])
	assert.Equal(t, uint64(7), *(got[6].(*uint64)))
	assert.Nil(t, got[7])
}

func TestEnvelopeEncoding(t *testing.T) {
	env, err := NewEnvelope(MethodSplit, &SplitParams{PrivateKey: "pk", Record: "rec", Amount: 5})
	require.NoError(t, err)

	b, err := defaultCodec.Encode(env)
	require.NoError(t, err)
	assert.Equal(t, `{"jsonrpc":"2.0","method":"split","params":["pk","rec",5,null],"id":1}`, string(b))
}

func TestEnvelopeNilOptionals(t *testing.T) {
	env, err := NewEnvelope(MethodExecutionCost, ExecutionCostParams{ProgramID: "p.aleo", Function: "main"})
	require.NoError(t, err)

	b, err := defaultCodec.Encode(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"execution_costv2","params":["p.aleo","main",[],null],"id":1}`, string(b))
}

func TestPositionalPassThrough(t *testing.T) {
	got, err := Positional(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)

	list := []any{"a", 1}
	got, err = Positional(list)
	require.NoError(t, err)
	assert.Equal(t, list, got)

	var p *SplitParams
	got, err = Positional(p)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPositionalSkipsHiddenFields(t *testing.T) {
	type params struct {
		A      string
		hidden string
		B      int `json:"-"`
		C      bool
	}
	got, err := Positional(params{A: "a", hidden: "h", B: 2, C: true})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", true}, got)
}

func TestPositionalRejectsScalars(t *testing.T) {
	_, err := Positional(5)
	assert.Error(t, err)

	_, err = NewEnvelope("x", "str")
	assert.Error(t, err)
}
