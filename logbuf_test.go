// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogBufferKeepsNewest(t *testing.T) {
	buf := NewLogBuffer(3)
	for i := 0; i < 5; i++ {
		_, err := fmt.Fprintf(buf, "line %d\n", i)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"line 2", "line 3", "line 4"}, buf.Lines())

	buf.Clear()
	assert.Empty(t, buf.Lines())
}

func TestLogBufferSplitsWrites(t *testing.T) {
	buf := NewLogBuffer(0)
	assert.Equal(t, DefaultLogLines, buf.max)

	_, err := buf.Write([]byte("a\n\nb\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, buf.Lines())
}

func TestLogBufferHandler(t *testing.T) {
	buf := NewLogBuffer(10)
	log := slog.New(buf.Handler(&slog.HandlerOptions{Level: slog.LevelDebug}))
	log.Debug("first", slog.String("method", "split"))
	log.Info("second")

	lines := buf.Lines()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "msg=first")
	assert.Contains(t, lines[0], "method=split")
	assert.Contains(t, lines[1], "level=INFO")
}

func TestLogBufferLinesIsCopy(t *testing.T) {
	buf := NewLogBuffer(2)
	_, _ = buf.Write([]byte("x\n"))
	lines := buf.Lines()
	lines[0] = "changed"
	assert.Equal(t, []string{"x"}, buf.Lines())
}
