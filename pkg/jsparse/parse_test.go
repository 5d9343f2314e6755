package jsparse

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/esmshift/pkg/estree"
	"github.com/gnana997/esmshift/pkg/parser"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pm := parser.NewParserManagerWithPoolSize(2, logger)
	t.Cleanup(func() { _ = pm.Close() })
	return New(pm, logger)
}

var ignoreLayout = cmpopts.IgnoreTypes(estree.Origin{})

func parseOne(t *testing.T, p *Parser, src string, lang parser.Language) estree.Stmt {
	t.Helper()
	prog, err := p.Parse([]byte(src), Options{Language: lang})
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)
	return prog.Body[0]
}

func TestParse_Imports(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name string
		src  string
		lang parser.Language
		want estree.Stmt
	}{
		{
			name: "default",
			src:  `import a from "m";`,
			want: &estree.ImportDeclaration{
				Specifiers: []estree.Specifier{&estree.ImportDefaultSpecifier{Local: estree.Ident("a")}},
				Source:     &estree.Literal{Kind: estree.LiteralString, Raw: `"m"`, Value: "m"},
				ImportKind: estree.ImportValue,
			},
		},
		{
			name: "named with alias",
			src:  `import { a, b as c } from 'm';`,
			want: &estree.ImportDeclaration{
				Specifiers: []estree.Specifier{
					&estree.ImportSpecifier{Imported: estree.Ident("a"), Local: estree.Ident("a")},
					&estree.ImportSpecifier{Imported: estree.Ident("b"), Local: estree.Ident("c")},
				},
				Source:     &estree.Literal{Kind: estree.LiteralString, Raw: `'m'`, Value: "m"},
				ImportKind: estree.ImportValue,
			},
		},
		{
			name: "default and namespace",
			src:  `import a, * as ns from "m";`,
			want: &estree.ImportDeclaration{
				Specifiers: []estree.Specifier{
					&estree.ImportDefaultSpecifier{Local: estree.Ident("a")},
					&estree.ImportNamespaceSpecifier{Local: estree.Ident("ns")},
				},
				Source:     &estree.Literal{Kind: estree.LiteralString, Raw: `"m"`, Value: "m"},
				ImportKind: estree.ImportValue,
			},
		},
		{
			name: "side effect with attributes",
			src:  `import "./d.json" with { type: "json" };`,
			want: &estree.ImportDeclaration{
				Source:     &estree.Literal{Kind: estree.LiteralString, Raw: `"./d.json"`, Value: "./d.json"},
				Attributes: &estree.RawExpr{Text: `{ type: "json" }`},
				ImportKind: estree.ImportValue,
			},
		},
		{
			name: "type only",
			src:  `import type { T } from "m";`,
			lang: parser.LanguageTypeScript,
			want: &estree.ImportDeclaration{
				Specifiers: []estree.Specifier{
					&estree.ImportSpecifier{Imported: estree.Ident("T"), Local: estree.Ident("T")},
				},
				Source:     &estree.Literal{Kind: estree.LiteralString, Raw: `"m"`, Value: "m"},
				ImportKind: estree.ImportType,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseOne(t, p, tt.src, tt.lang)
			if diff := cmp.Diff(tt.want, got, ignoreLayout); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.src, diff)
			}
		})
	}
}

func TestParse_Exports(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name string
		src  string
		want estree.Stmt
	}{
		{
			name: "specifiers",
			src:  `export { a, b as "x-y" };`,
			want: &estree.ExportNamedDeclaration{
				Specifiers: []*estree.ExportSpecifier{
					{Local: estree.Ident("a"), Exported: estree.Ident("a")},
					{Local: estree.Ident("b"), Exported: &estree.Literal{Kind: estree.LiteralString, Raw: `"x-y"`, Value: "x-y"}},
				},
			},
		},
		{
			name: "from clause",
			src:  `export { a } from "m";`,
			want: &estree.ExportNamedDeclaration{
				Specifiers: []*estree.ExportSpecifier{{Local: estree.Ident("a"), Exported: estree.Ident("a")}},
				Source:     &estree.Literal{Kind: estree.LiteralString, Raw: `"m"`, Value: "m"},
			},
		},
		{
			name: "star",
			src:  `export * from "m";`,
			want: &estree.ExportAllDeclaration{
				Source: &estree.Literal{Kind: estree.LiteralString, Raw: `"m"`, Value: "m"},
			},
		},
		{
			name: "star as",
			src:  `export * as ns from "m";`,
			want: &estree.ExportAllDeclaration{
				Exported: estree.Ident("ns"),
				Source:   &estree.Literal{Kind: estree.LiteralString, Raw: `"m"`, Value: "m"},
			},
		},
		{
			name: "default number",
			src:  `export default 42;`,
			want: &estree.ExportDefaultDeclaration{
				Declaration: &estree.Literal{Kind: estree.LiteralNumber, Raw: "42", Value: "42"},
			},
		},
		{
			name: "default expression",
			src:  `export default a.b();`,
			want: &estree.ExportDefaultDeclaration{Declaration: &estree.RawExpr{Text: "a.b()"}},
		},
		{
			name: "function",
			src:  `export async function* gen(a, b = 1) { yield a; }`,
			want: &estree.ExportNamedDeclaration{
				Declaration: &estree.FunctionDeclaration{
					ID:        estree.Ident("gen"),
					Async:     true,
					Generator: true,
					Params:    "(a, b = 1)",
					Body:      "{ yield a; }",
				},
			},
		},
		{
			name: "class",
			src:  `export class C extends B { m() {} }`,
			want: &estree.ExportNamedDeclaration{
				Declaration: &estree.ClassDeclaration{ID: estree.Ident("C"), Body: "extends B { m() {} }"},
			},
		},
		{
			name: "destructured const",
			src:  `export const { a, b: [c, ...d] } = obj;`,
			want: &estree.ExportNamedDeclaration{
				Declaration: &estree.VariableDeclaration{
					Kind: estree.KindConst,
					Declarations: []*estree.VariableDeclarator{{
						ID:   &estree.RawPattern{Text: "{ a, b: [c, ...d] }", Bindings: []string{"a", "c", "d"}},
						Init: estree.Ident("obj"),
					}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseOne(t, p, tt.src, parser.LanguageJavaScript)
			if diff := cmp.Diff(tt.want, got, ignoreLayout); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.src, diff)
			}
		})
	}
}

func TestParse_Layout(t *testing.T) {
	p := newTestParser(t)
	src := "#!/usr/bin/env node\n// lead\nimport a from \"a\";\n\nfoo(); // tail\n"

	prog, err := p.Parse([]byte(src), Options{})
	require.NoError(t, err)
	require.Len(t, prog.Body, 2)

	first := prog.Body[0].Layout()
	assert.Equal(t, "#!/usr/bin/env node\n// lead\n", first.Leading)
	assert.Equal(t, `import a from "a";`, first.Text)
	assert.Equal(t, 3, first.Line)
	assert.True(t, first.Parsed())

	second := prog.Body[1]
	assert.IsType(t, &estree.RawStmt{}, second)
	assert.Equal(t, "\n\n", second.Layout().Leading)
	assert.Equal(t, "foo();", second.Layout().Text)
	assert.Equal(t, " // tail\n", prog.Trailing)
	assert.Equal(t, "\n", prog.Newline)
}

func TestParse_CRLF(t *testing.T) {
	p := newTestParser(t)
	prog, err := p.Parse([]byte("a();\r\nb();\r\n"), Options{})
	require.NoError(t, err)
	assert.Equal(t, "\r\n", prog.Newline)
}

func TestParse_Errors(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name string
		src  string
		opts Options
		line int
	}{
		{"unterminated clause", "import { a from \"m\";", Options{}, 1},
		{"second line", "a();\nconst = 1;", Options{}, 2},
		{"script mode import", "a();\nimport b from \"b\";", Options{SourceType: SourceScript}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := p.Parse([]byte(tt.src), tt.opts)
			assert.Nil(t, prog)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.line, perr.Line)
			assert.NotEmpty(t, perr.Message)
			assert.Positive(t, perr.Column)
		})
	}
}

func TestParse_UnknownSourceType(t *testing.T) {
	p := newTestParser(t)
	_, err := p.Parse([]byte("a();"), Options{SourceType: "commonjs"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source type")
}

func TestParseError_Error(t *testing.T) {
	err := &ParseError{Line: 3, Column: 7, Message: `unexpected "}"`}
	assert.Equal(t, `3:7: unexpected "}"`, err.Error())
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "abc", snippet("abc\ndef"))
	assert.Equal(t, "012345678901234567890123…", snippet("0123456789012345678901234567890"))
}
