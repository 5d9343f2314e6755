package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// --- convert ---

func TestConvert_File(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.js", "import foo, { bar } from \"mod\";\nfoo(bar);\n")

	res := runCLI(t, "", path)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "const { default: foo, bar } = require(\"mod\");\nfoo(bar);\n", res.stdout)
}

func TestConvert_Stdin(t *testing.T) {
	res := runCLI(t, `import { foo as bar } from "mod";`)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, `const { foo: bar } = require("mod");`, res.stdout)

	res = runCLI(t, `import * as ns from "mod";`, "-", "--target", "import")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, `const ns = await import("mod");`, res.stdout)
}

func TestConvert_LanguageFromExtension(t *testing.T) {
	dir := t.TempDir()
	ts := writeFile(t, dir, "a.ts", "import { a } from \"a\";\nconst n: number = a;\n")

	res := runCLI(t, "", ts, "--verify")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "const { a } = require(\"a\");\nconst n: number = a;\n", res.stdout)

	res = runCLI(t, "let n: number = 1;", "--lang", "typescript")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "let n: number = 1;", res.stdout)
}

func TestConvert_Exports(t *testing.T) {
	res := runCLI(t, "export default 1;")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "module.exports = {};\nmodule.exports.default = 1;", res.stdout)

	res = runCLI(t, "export default 1;", "--target", "import")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "export default 1;", res.stdout)
}

func TestConvert_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.js", "import {\n")

	tests := []struct {
		name   string
		stdin  string
		args   []string
		stderr string
	}{
		{"parse error in file", "", []string{bad}, "esmshift: " + bad + ":1:"},
		{"parse error on stdin", "const = ;", nil, "esmshift: <stdin>:1:"},
		{"missing file", "", []string{filepath.Join(dir, "missing.js")}, "no such file"},
		{"unknown target", "a();", []string{"--target", "amd"}, "unknown target"},
		{"unknown language", "a();", []string{"--lang", "python"}, "unknown language"},
		{"bad log level", "a();", []string{"--log-level", "loud"}, "invalid log level"},
		{"strict export", `export * from "x";`, []string{"--strict"}, "not implemented"},
		{"too many args", "", []string{"a.js", "b.js"}, "accepts at most 1 arg"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := runCLI(t, tc.stdin, tc.args...)
			assert.Equal(t, 1, res.code)
			assert.Empty(t, res.stdout)
			assert.Contains(t, res.stderr, tc.stderr)
		})
	}
}

func TestConvert_Help(t *testing.T) {
	res := runCLI(t, "", "--help")
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "Usage:")
	assert.Contains(t, res.stdout, "--target")
}

func TestVersion(t *testing.T) {
	res := runCLI(t, "", "version")
	assert.Equal(t, 0, res.code)
	assert.Equal(t, "esmshift "+version+"\n", res.stdout)
}

// --- config ---

func TestConfig_Precedence(t *testing.T) {
	cfg := writeFile(t, t.TempDir(), "config.yaml", "target: import\nlanguage: typescript\n")
	src := "import a from \"a\";\nlet x: number = a;"

	res := runCLI(t, src, "--config", cfg)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "const { default: a } = await import(\"a\");\nlet x: number = a;", res.stdout)

	res = runCLI(t, src, "--config", cfg, "--target", "require")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "const { default: a } = require(\"a\");\nlet x: number = a;", res.stdout)
}

func TestLoadProjectConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := loadProjectConfig(writeFile(t, dir, "full.yaml", `
target: require
language: tsx
strict: true
include: ["src/**/*.ts"]
exclude: ["src/gen/**"]
out_dir: dist
log_level: debug
debounce_ms: 50
mcp_log: .esmshift/calls.jsonl
`))
	require.NoError(t, err)
	assert.Equal(t, &ProjectConfig{
		Target:     "require",
		Language:   "tsx",
		Strict:     true,
		Include:    []string{"src/**/*.ts"},
		Exclude:    []string{"src/gen/**"},
		OutDir:     "dist",
		LogLevel:   "debug",
		DebounceMs: 50,
		MCPLog:     ".esmshift/calls.jsonl",
	}, cfg)
	assert.Equal(t, int64(50), cfg.Debounce().Milliseconds())

	_, err = loadProjectConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = loadProjectConfig(writeFile(t, dir, "bad.yaml", "target: [\n"))
	assert.Error(t, err)

	_, err = loadProjectConfig(writeFile(t, dir, "neg.yaml", "debounce_ms: -1\n"))
	assert.Error(t, err)

	t.Chdir(dir)
	cfg, err = loadProjectConfig("")
	require.NoError(t, err)
	assert.Equal(t, &ProjectConfig{}, cfg)
}

func TestPick(t *testing.T) {
	assert.Equal(t, "flag", pick("flag", true, "config"))
	assert.Equal(t, "config", pick("default", false, "config"))
	assert.Equal(t, "default", pick("default", false, ""))
}

// --- dir ---

func TestDir_OutDir(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "cjs")
	writeFile(t, root, "src/a.js", "import a from \"a\";\n")
	writeFile(t, root, "src/b.js", "b();\n")
	writeFile(t, root, "node_modules/x/index.js", "import x from \"x\";\n")

	res := runCLI(t, "", "dir", root, "--out", out, "--workers", "2")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "src/a.js")
	assert.Contains(t, res.stdout, "1 converted, 1 unchanged, 0 failed")

	data, err := os.ReadFile(filepath.Join(out, "src", "a.js"))
	require.NoError(t, err)
	assert.Equal(t, "const { default: a } = require(\"a\");\n", string(data))
	assert.NoFileExists(t, filepath.Join(out, "node_modules", "x", "index.js"))
}

func TestDir_Write(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "m.mjs", "import { x } from \"x\";\n")

	res := runCLI(t, "", "dir", root, "--write", "--target", "import")
	require.Equal(t, 0, res.code, res.stderr)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "const { x } = await import(\"x\");\n", string(data))
}

func TestDir_Include(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep/a.js", "import a from \"a\";\n")
	writeFile(t, root, "skip/b.js", "import b from \"b\";\n")

	res := runCLI(t, "", "dir", root, "--include", "keep/**")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "keep/a.js")
	assert.NotContains(t, res.stdout, "skip/b.js")
}

func TestDir_Errors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "bad.js", "import {\n")

	res := runCLI(t, "", "dir", root)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stdout, "bad.js:1:")
	assert.Contains(t, res.stderr, "1 of 1 files failed")

	res = runCLI(t, "", "dir", root, "--out", t.TempDir(), "--write")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "mutually exclusive")

	res = runCLI(t, "", "dir")
	assert.Equal(t, 1, res.code)
}

func TestWatch_RequiresOutput(t *testing.T) {
	res := runCLI(t, "", "watch", t.TempDir())
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "--out or --write")
}

// --- inspect ---

func TestInspect(t *testing.T) {
	src := "import a, { b } from \"m\";\nexport * from \"all\";\n"

	res := runCLI(t, src, "inspect")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "default-plus-named")
	assert.Contains(t, res.stdout, "re-export-all is not implemented")

	res = runCLI(t, src, "inspect", "--json")
	require.Equal(t, 0, res.code, res.stderr)
	var decls []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &decls))
	require.Len(t, decls, 2)
	assert.Equal(t, "ImportDeclaration", decls[0]["kind"])
	assert.Equal(t, "all", decls[1]["source"])

	res = runCLI(t, "let a = 1;", "inspect")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "No import or export declarations.")

	res = runCLI(t, "import {", "inspect")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "<stdin>:1:")
}
