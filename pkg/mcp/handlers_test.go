package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/esmshift/pkg/mcplog"
	"github.com/gnana997/esmshift/pkg/parser"
	"github.com/gnana997/esmshift/pkg/transform"
)

// --- helpers ---

func testServer(t *testing.T, calls *mcplog.Logger) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pm := parser.NewParserManagerWithPoolSize(2, logger)
	t.Cleanup(func() { _ = pm.Close() })
	return NewServer(transform.New(pm, logger), "test", calls, logger)
}

func callTool(t *testing.T, s *Server, req mcp.CallToolRequest) *mcp.CallToolResult {
	t.Helper()
	var handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

	switch req.Params.Name {
	case toolConvertSelection:
		handler = s.handleConvertSelection
	case toolInspectModule:
		handler = s.handleInspectModule
	default:
		t.Fatalf("unknown tool: %s", req.Params.Name)
	}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func makeRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	var arguments any
	if args != nil {
		arguments = args
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: arguments,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

// --- tool definitions ---

func TestToolDefinitions(t *testing.T) {
	assert.Equal(t, []string{"convert_selection", "inspect_module"}, ToolNames())

	convert := convertSelectionTool()
	assert.Equal(t, "convert_selection", convert.Name)
	assert.Equal(t, []string{"code"}, convert.InputSchema.Required)
	assert.Contains(t, convert.InputSchema.Properties, "target")
	assert.Contains(t, convert.InputSchema.Properties, "language")
	assert.Contains(t, convert.InputSchema.Properties, "verify")

	inspect := inspectModuleTool()
	assert.Equal(t, "inspect_module", inspect.Name)
	assert.Equal(t, []string{"code"}, inspect.InputSchema.Required)
}

// --- convert_selection ---

func TestHandleConvertSelection(t *testing.T) {
	s := testServer(t, nil)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{
			name: "default target",
			args: map[string]any{"code": `import { foo } from "mod";`},
			want: `const { foo } = require("mod");`,
		},
		{
			name: "require target",
			args: map[string]any{"code": `import foo, { bar } from "mod";`, "target": "require"},
			want: `const { default: foo, bar } = require("mod");`,
		},
		{
			name: "dynamic import target",
			args: map[string]any{"code": `import * as foo from "mod";`, "target": "import"},
			want: `const foo = await import("mod");`,
		},
		{
			name: "typescript",
			args: map[string]any{"code": "import { a } from \"a\";\nlet x: number = a;", "language": "typescript"},
			want: "const { a } = require(\"a\");\nlet x: number = a;",
		},
		{
			name: "export expansion with verify",
			args: map[string]any{"code": `export default 1;`, "verify": true},
			want: "module.exports = {};\nmodule.exports.default = 1;",
		},
		{
			name: "nothing to convert",
			args: map[string]any{"code": "foo();\n"},
			want: "foo();\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := callTool(t, s, makeRequest(toolConvertSelection, tc.args))
			assert.False(t, result.IsError, resultText(t, result))
			assert.Equal(t, tc.want, resultText(t, result))
		})
	}
}

func TestHandleConvertSelection_Errors(t *testing.T) {
	s := testServer(t, nil)

	tests := []struct {
		name     string
		args     map[string]any
		contains string
	}{
		{"missing code", nil, "code"},
		{"syntax error", map[string]any{"code": "import {"}, "Failed to convert selection: 1:"},
		{"bad target", map[string]any{"code": "a();", "target": "amd"}, "unknown target"},
		{"bad language", map[string]any{"code": "a();", "language": "python"}, "unknown language"},
		{"strict-free unsupported export passes", map[string]any{"code": `export * from "x";`}, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := callTool(t, s, makeRequest(toolConvertSelection, tc.args))
			if tc.contains == "" {
				assert.False(t, result.IsError)
				return
			}
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tc.contains)
		})
	}
}

// --- inspect_module ---

func TestHandleInspectModule(t *testing.T) {
	s := testServer(t, nil)
	code := strings.Join([]string{
		`import a, { b } from "m";`,
		`import type { T } from "types";`,
		`export const x = 1;`,
		`export * from "all";`,
	}, "\n")

	result := callTool(t, s, makeRequest(toolInspectModule, map[string]any{"code": code, "language": "typescript"}))
	require.False(t, result.IsError, resultText(t, result))

	var decls []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &decls))
	require.Len(t, decls, 4)

	assert.Equal(t, "default-plus-named", decls[0]["shape"])
	assert.Equal(t, true, decls[0]["supported"])
	assert.Equal(t, []any{"a", "b"}, decls[0]["bindings"])

	assert.Equal(t, false, decls[1]["supported"])
	assert.Equal(t, "type-only import", decls[1]["reason"])

	assert.Equal(t, "declaration", decls[2]["shape"])
	assert.Equal(t, true, decls[2]["supported"])
	assert.Equal(t, float64(3), decls[2]["line"])

	assert.Equal(t, "re-export-all", decls[3]["shape"])
	assert.Equal(t, false, decls[3]["supported"])
}

func TestHandleInspectModule_Empty(t *testing.T) {
	s := testServer(t, nil)
	result := callTool(t, s, makeRequest(toolInspectModule, map[string]any{"code": "let a = 1;"}))
	assert.False(t, result.IsError)
	assert.Equal(t, "[]", resultText(t, result))
}

func TestHandleInspectModule_SyntaxError(t *testing.T) {
	s := testServer(t, nil)
	result := callTool(t, s, makeRequest(toolInspectModule, map[string]any{"code": "export {"}))
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Failed to inspect module")
}

// --- middleware ---

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	s := testServer(t, mcplog.New(&buf))

	orig := mcplog.Now
	mcplog.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	defer func() { mcplog.Now = orig }()

	handler := s.loggingMiddleware()(s.handleConvertSelection)
	code := strings.Repeat("import a from \"a\";\n", 5)

	result, err := handler(context.Background(), makeRequest(toolConvertSelection, map[string]any{"code": code}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	_, err = handler(context.Background(), makeRequest(toolConvertSelection, map[string]any{"code": "import {"}))
	require.NoError(t, err)

	var entries []mcplog.Entry
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var e mcplog.Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, "2026-01-02T03:04:05Z", first.Ts)
	assert.Equal(t, "convert_selection", first.Tool)
	assert.Equal(t, len(code), first.InputBytes)
	assert.Equal(t, len(resultText(t, result)), first.OutputBytes)
	assert.Equal(t, float64(len(code)), first.Params["code_len"])
	assert.NotContains(t, first.Params, "code")
	assert.False(t, first.IsError)
	assert.Nil(t, first.Error)

	assert.True(t, entries[1].IsError)
}
