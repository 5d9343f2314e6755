// Package transform rewrites ESM import and export declarations into
// require() calls or awaited dynamic import() expressions.
//
// A transform parses the source, replaces every recognized top-level import
// declaration with a const declaration and, for the CommonJS target, expands
// the first export declaration into module.exports assignments. All other
// statements are printed back exactly as written.
package transform

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gnana997/esmshift/pkg/codegen"
	"github.com/gnana997/esmshift/pkg/estree"
	"github.com/gnana997/esmshift/pkg/jsparse"
	"github.com/gnana997/esmshift/pkg/parser"
)

// Result is the outcome of a transform.
type Result struct {
	Code string

	ImportsRewritten int
	ImportsSkipped   int
	ExportsExpanded  int
	ExportsSkipped   int

	// Skipped lists every import or export declaration left as written.
	Skipped []Skip
}

// Changed reports whether any declaration was rewritten.
func (r *Result) Changed() bool {
	return r.ImportsRewritten+r.ExportsExpanded > 0
}

// Skip describes a declaration the transform left unchanged.
type Skip struct {
	Line   int    `json:"line"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// Declaration is one entry of an Inspect report.
type Declaration struct {
	Line      int      `json:"line"`
	Kind      string   `json:"kind"`
	Shape     string   `json:"shape"`
	Source    string   `json:"source,omitempty"`
	Bindings  []string `json:"bindings,omitempty"`
	Supported bool     `json:"supported"`
	Reason    string   `json:"reason,omitempty"`
}

// Transformer converts module syntax. It is safe for concurrent use.
type Transformer struct {
	parser *jsparse.Parser
	logger *slog.Logger
}

// New returns a Transformer that parses with pm.
func New(pm *parser.ParserManager, logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{
		parser: jsparse.New(pm, logger),
		logger: logger,
	}
}

var (
	defaultOnce        sync.Once
	defaultTransformer *Transformer
)

// Default returns the process-wide Transformer used by the package-level
// Transform function.
func Default() *Transformer {
	defaultOnce.Do(func() {
		defaultTransformer = New(parser.NewParserManager(slog.Default()), slog.Default())
	})
	return defaultTransformer
}

// Transform converts source with the default Transformer.
func Transform(source string, opts Options) (string, error) {
	res, err := Default().Transform([]byte(source), opts)
	if err != nil {
		return "", err
	}
	return res.Code, nil
}

// Transform converts src. Parse and serialization failures are returned
// unwrapped as *jsparse.ParseError and *codegen.Error.
func (t *Transformer) Transform(src []byte, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}

	prog, err := t.parse(src, opts)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	prog = rewriteImports(prog, opts.loader(), res, t.logger)

	if opts.Target == TargetCommonJS {
		prog, err = t.rewriteExports(prog, opts, res)
		if err != nil {
			return nil, err
		}
	}

	code, err := codegen.Generate(prog)
	if err != nil {
		return nil, err
	}
	res.Code = code

	t.logger.Debug("transform complete",
		"target", opts.Target.String(),
		"imports_rewritten", res.ImportsRewritten,
		"imports_skipped", res.ImportsSkipped,
		"exports_expanded", res.ExportsExpanded,
		"exports_skipped", res.ExportsSkipped)

	return res, nil
}

// Inspect classifies every top-level import and export declaration of src
// against opts without rewriting anything.
func (t *Transformer) Inspect(src []byte, opts Options) ([]Declaration, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}

	prog, err := t.parse(src, opts)
	if err != nil {
		return nil, err
	}

	decls := []Declaration{}
	first := firstExport(prog.Body)
	for i, s := range prog.Body {
		switch n := s.(type) {
		case *estree.ImportDeclaration:
			decls = append(decls, inspectImport(n))
		case *estree.ExportNamedDeclaration, *estree.ExportDefaultDeclaration, *estree.ExportAllDeclaration:
			decls = append(decls, inspectExport(s, i == first, opts.Target))
		}
	}
	return decls, nil
}

func (t *Transformer) parse(src []byte, opts Options) (*estree.Program, error) {
	return t.parser.Parse(src, jsparse.Options{
		Language:   opts.Language,
		SourceType: opts.SourceType,
	})
}

func inspectImport(decl *estree.ImportDeclaration) Declaration {
	shape := Classify(decl)
	d := Declaration{
		Line:      decl.Line,
		Kind:      decl.Type(),
		Shape:     shape.String(),
		Source:    importSource(decl),
		Bindings:  estree.BoundNames(decl),
		Supported: shape != ShapeNone,
	}
	if !d.Supported {
		d.Reason = skipReason(decl)
	}
	return d
}

func inspectExport(s estree.Stmt, first bool, target Target) Declaration {
	d := Declaration{
		Line:  s.Layout().Line,
		Kind:  s.Type(),
		Shape: exportShape(s),
	}

	switch n := s.(type) {
	case *estree.ExportNamedDeclaration:
		if lit, ok := n.Source.(*estree.Literal); ok {
			d.Source = lit.Value
		}
		d.Bindings = exportedNames(n)
	case *estree.ExportAllDeclaration:
		if lit, ok := n.Source.(*estree.Literal); ok {
			d.Source = lit.Value
		}
	case *estree.ExportDefaultDeclaration:
		d.Bindings = []string{"default"}
	}

	_, reason := expandExport(s)
	switch {
	case reason != "":
		d.Reason = reason
	case target != TargetCommonJS:
		d.Reason = "exports are only converted for the require target"
	case !first:
		d.Reason = reasonNotFirst
	default:
		d.Supported = true
	}
	return d
}

func exportShape(s estree.Stmt) string {
	switch n := s.(type) {
	case *estree.ExportNamedDeclaration:
		switch {
		case n.Source != nil:
			return "re-export"
		case n.Declaration != nil:
			return "declaration"
		default:
			return "specifiers"
		}
	case *estree.ExportDefaultDeclaration:
		return "default"
	case *estree.ExportAllDeclaration:
		return "re-export-all"
	}
	return "none"
}

func exportedNames(n *estree.ExportNamedDeclaration) []string {
	if n.Declaration != nil {
		return estree.BoundNames(n.Declaration)
	}
	var names []string
	for _, spec := range n.Specifiers {
		name := spec.Exported
		if name == nil {
			name = spec.Local
		}
		switch e := name.(type) {
		case *estree.Identifier:
			names = append(names, e.Name)
		case *estree.Literal:
			names = append(names, e.Value)
		}
	}
	return names
}
