package mcplog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestSanitizeParams(t *testing.T) {
	tests := []struct {
		name     string
		input    map[string]any
		wantKeys []string
		wantSkip []string
	}{
		{
			name:  "nil map",
			input: nil,
		},
		{
			name:     "short arguments pass through",
			input:    map[string]any{"target": "require", "verify": true},
			wantKeys: []string{"target", "verify"},
		},
		{
			name:     "source code is replaced by its length",
			input:    map[string]any{"code": strings.Repeat("import a from 'a';\n", 10)},
			wantKeys: []string{"code_len"},
			wantSkip: []string{"code"},
		},
		{
			name:     "nil value kept",
			input:    map[string]any{"language": nil},
			wantKeys: []string{"language"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := SanitizeParams(tc.input)
			for _, k := range tc.wantKeys {
				if _, ok := out[k]; !ok {
					t.Errorf("expected key %q in output", k)
				}
			}
			for _, k := range tc.wantSkip {
				if _, ok := out[k]; ok {
					t.Errorf("unexpected key %q in output", k)
				}
			}
		})
	}

	if got := SanitizeParams(map[string]any{"code": strings.Repeat("x", 100)})["code_len"]; got != 100 {
		t.Errorf("code_len = %v, want 100", got)
	}
}

func TestInputBytes(t *testing.T) {
	got := InputBytes(map[string]any{"code": "abc", "target": "import", "verify": true})
	if got != 9 {
		t.Errorf("got %d, want 9", got)
	}
	if got := InputBytes(nil); got != 0 {
		t.Errorf("got %d for nil args, want 0", got)
	}
}

func TestOutputBytes(t *testing.T) {
	if got := OutputBytes(nil); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
	if got := OutputBytes(mcp.NewToolResultText("const a = 1;")); got != 12 {
		t.Errorf("got %d, want 12", got)
	}
}

func TestLoggerWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.jsonl")

	logger, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	msg := "parse error"
	entries := []Entry{
		{Ts: "2026-01-02T03:04:05Z", Tool: "convert_selection", Params: map[string]any{"code_len": 120}, DurationMs: 4, InputBytes: 120, OutputBytes: 130},
		{Ts: "2026-01-02T03:04:06Z", Tool: "inspect_module", Params: map[string]any{}, DurationMs: 2, InputBytes: 40, OutputBytes: 300},
		{Ts: "2026-01-02T03:04:07Z", Tool: "convert_selection", Params: map[string]any{}, IsError: true, Error: &msg},
	}
	for _, e := range entries {
		if err := logger.Write(e); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got := readEntries(t, path)
	if len(got) != len(entries) {
		t.Fatalf("got %d lines, want %d", len(got), len(entries))
	}
	for i, e := range entries {
		if got[i].Tool != e.Tool || got[i].InputBytes != e.InputBytes || got[i].OutputBytes != e.OutputBytes {
			t.Errorf("line %d: got %+v, want %+v", i, got[i], e)
		}
	}
	if got[2].Error == nil || *got[2].Error != msg || !got[2].IsError {
		t.Errorf("line 2: error not recorded: %+v", got[2])
	}
}

func TestLoggerConcurrency(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	const goroutines = 50
	const writesEach = 10

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < writesEach; j++ {
				_ = logger.Write(Entry{Tool: "convert_selection"})
			}
		}()
	}
	wg.Wait()

	count := 0
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("torn write at line %d: %v", count+1, err)
		}
		count++
	}
	if count != goroutines*writesEach {
		t.Errorf("got %d lines, want %d", count, goroutines*writesEach)
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "mcp.jsonl")

	logger, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestNilLogger(t *testing.T) {
	logger, err := Open("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger != nil {
		t.Fatalf("expected nil logger for empty path")
	}
	if err := logger.Write(Entry{Tool: "x"}); err != nil {
		t.Errorf("Write on nil logger: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close on nil logger: %v", err)
	}
}

func readEntries(t *testing.T, path string) []Entry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var out []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("unmarshal line %q: %v", scanner.Text(), err)
		}
		out = append(out, e)
	}
	return out
}
