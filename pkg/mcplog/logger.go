// Package mcplog records MCP tool calls as JSON lines.
package mcplog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// maxParamString is the longest string argument copied into an entry.
const maxParamString = 64

// Entry is one JSONL line per tool call.
type Entry struct {
	Ts          string         `json:"ts"`
	Tool        string         `json:"tool"`
	Params      map[string]any `json:"params"`
	DurationMs  int64          `json:"duration_ms"`
	InputBytes  int            `json:"input_bytes"`
	OutputBytes int            `json:"output_bytes"`
	IsError     bool           `json:"is_error"`
	Error       *string        `json:"error"`
}

// Logger appends entries to a writer. It is safe for concurrent use.
type Logger struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	enc    *json.Encoder
}

// Open appends to the file at path, creating it and its parent directories
// as needed. An empty path returns a nil Logger, which discards entries.
func Open(path string) (*Logger, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mcplog: create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("mcplog: open log file: %w", err)
	}
	l := New(f)
	l.closer = f
	return l, nil
}

// New returns a Logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{w: w, enc: json.NewEncoder(w)}
}

// Write appends entry. A nil Logger ignores it.
func (l *Logger) Write(entry Entry) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(entry)
}

// Close closes the log file opened by Open.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closer.Close()
}

// SanitizeParams copies args for logging. Source code and other long strings
// are replaced by a "<key>_len" entry holding their length.
func SanitizeParams(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if s, ok := v.(string); ok && len(s) > maxParamString {
			out[k+"_len"] = len(s)
			continue
		}
		out[k] = v
	}
	return out
}

// InputBytes is the total length of the string arguments of a call.
func InputBytes(args map[string]any) int {
	n := 0
	for _, v := range args {
		if s, ok := v.(string); ok {
			n += len(s)
		}
	}
	return n
}

// OutputBytes is the length of the text content of result.
func OutputBytes(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	n := 0
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			n += len(tc.Text)
		}
	}
	return n
}

// Now is the clock used for entry timestamps. Tests replace it.
var Now = time.Now
