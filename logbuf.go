// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

import (
	"bytes"
	"log/slog"
	"sync"
)

// DefaultLogLines is the capacity used when NewLogBuffer gets a non-positive size.
const DefaultLogLines = 1000

// LogBuffer keeps the most recent log lines in memory so a host application can
// show or clear them. Attach it with WithLogger(slog.New(buf.Handler(nil))).
type LogBuffer struct {
	mu    sync.Mutex
	lines []string
	max   int
}

// NewLogBuffer retains at most max lines.
func NewLogBuffer(max int) *LogBuffer {
	if max <= 0 {
		max = DefaultLogLines
	}
	return &LogBuffer{max: max}
}

// Handler returns a text handler that writes into the buffer.
func (b *LogBuffer) Handler(opts *slog.HandlerOptions) slog.Handler {
	return slog.NewTextHandler(b, opts)
}

// Write implements io.Writer. slog handlers emit one record per Write.
func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, line := range bytes.Split(bytes.TrimRight(p, "\n"), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		b.lines = append(b.lines, string(line))
	}
	if over := len(b.lines) - b.max; over > 0 {
		b.lines = append(b.lines[:0:0], b.lines[over:]...)
	}
	return len(p), nil
}

// Lines returns a copy of the retained lines, oldest first.
func (b *LogBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

// Clear drops every retained line.
func (b *LogBuffer) Clear() {
	b.mu.Lock()
	b.lines = nil
	b.mu.Unlock()
}
