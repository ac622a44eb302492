// Package logging provides leveled logging and spike tracing for spikenet.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A SpikeLogger for structured JSONL firing traces (<dir>/spikes.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace is a custom slog level below Debug for per-message logging.
// At this level, every processed stimulus and delivery is included.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Label the custom trace level
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SpikeLogger writes structured firing events to a JSONL file.
// It is safe for concurrent use across all neuron actors. A nil SpikeLogger
// is safe to use; all methods are no-ops on nil receiver.
type SpikeLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewSpikeLogger creates a spike logger writing to dir/spikes.jsonl.
// At "info" level (the default) it returns nil and no file is created.
// At "debug" or "trace" level, the file is opened for append.
// Returns nil if the file cannot be opened. All methods are nil-safe.
func NewSpikeLogger(dir string, level string) *SpikeLogger {
	lvl := ParseLevel(level)
	if lvl == slog.LevelInfo {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	path := filepath.Join(dir, "spikes.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &SpikeLogger{file: f}
}

// Spike writes one firing event as a single JSONL line.
// A "time" field is added automatically. Safe to call on nil receiver.
func (sl *SpikeLogger) Spike(neuron int, potential float32, at time.Time) {
	if sl == nil || sl.file == nil {
		return
	}

	entry := map[string]any{
		"neuron":    neuron,
		"potential": potential,
		"at":        at.UTC().Format(time.RFC3339Nano),
		"time":      time.Now().UTC().Format(time.RFC3339Nano),
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = sl.file.Write(data)
}

// Close closes the underlying file. Safe to call on nil receiver.
func (sl *SpikeLogger) Close() {
	if sl == nil || sl.file == nil {
		return
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()

	sl.file.Close()
	sl.file = nil
}
