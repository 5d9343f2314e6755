// Package jsparse turns JavaScript and TypeScript module source into an
// estree.Program using the tree-sitter grammars in package parser.
//
// Import and export declarations are decoded into typed nodes. Every other
// top-level statement becomes an estree.RawStmt holding its verbatim text,
// and the whitespace and comments between statements are recorded on each
// statement's Origin, so a program with no rewrites prints back unchanged.
package jsparse

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/gnana997/esmshift/pkg/estree"
	"github.com/gnana997/esmshift/pkg/parser"
)

// SourceType selects how the source is interpreted.
type SourceType string

const (
	// SourceModule allows import and export declarations.
	SourceModule SourceType = "module"
	// SourceScript rejects import and export declarations.
	SourceScript SourceType = "script"
)

// Options configures a parse.
type Options struct {
	Language   parser.Language
	SourceType SourceType // empty means SourceModule
}

// Parser converts source text to estree programs. It is safe for concurrent
// use; parsers are borrowed from the shared ParserManager per call.
type Parser struct {
	pm     *parser.ParserManager
	logger *slog.Logger
}

// New returns a Parser backed by pm.
func New(pm *parser.ParserManager, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{pm: pm, logger: logger}
}

// Parse parses src. A syntax error is returned as *ParseError and no program
// is produced.
func (p *Parser) Parse(src []byte, opts Options) (*estree.Program, error) {
	switch opts.SourceType {
	case "", SourceModule, SourceScript:
	default:
		return nil, fmt.Errorf("unknown source type %q", opts.SourceType)
	}

	tree, err := p.pm.Parse(src, opts.Language)
	if err != nil {
		return nil, fmt.Errorf("jsparse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		perr := syntaxError(root, src)
		p.logger.Debug("syntax error", "language", opts.Language.String(), "line", perr.Line, "column", perr.Column)
		return nil, perr
	}

	c := &converter{src: src}
	prog := &estree.Program{Newline: "\n"}
	if bytes.Contains(src, []byte("\r\n")) {
		prog.Newline = "\r\n"
	}

	cursor := 0
	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		switch child.Kind() {
		case "comment", "html_comment", "hash_bang_line":
			// Left in place as trivia of the next statement.
			continue
		}

		if opts.SourceType == SourceScript && isModuleSyntax(child.Kind()) {
			pos := child.StartPosition()
			return nil, &ParseError{
				Line:    int(pos.Row) + 1,
				Column:  int(pos.Column) + 1,
				Message: "import and export declarations may only appear in modules",
			}
		}

		stmt := c.statement(child)
		start, end := int(child.StartByte()), int(child.EndByte())
		o := stmt.Layout()
		o.Leading = string(src[cursor:start])
		cursor = end
		prog.Body = append(prog.Body, stmt)
	}
	prog.Trailing = string(src[cursor:])

	return prog, nil
}

func isModuleSyntax(kind string) bool {
	return kind == "import_statement" || kind == "export_statement"
}
