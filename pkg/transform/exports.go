package transform

import "github.com/gnana997/esmshift/pkg/estree"

// Reasons an export declaration is left in place.
const (
	reasonReexportAll  = "re-export-all is not implemented"
	reasonFromClause   = "re-export with a from clause"
	reasonTypeOnly     = "type-only export"
	reasonDeclaration  = "declaration has no CommonJS form"
	reasonStringLocal  = "string literal local name"
	reasonDefaultValue = "default export has no expression form"
	reasonNotFirst     = "only the first export declaration is converted"
	reasonNoBoundNames = "declaration binds no names"
)

// expandExport returns the statements replacing s. A non-empty reason means
// s has no supported expansion.
func expandExport(s estree.Stmt) ([]estree.Stmt, string) {
	switch n := s.(type) {
	case *estree.ExportAllDeclaration:
		return nil, reasonReexportAll
	case *estree.ExportNamedDeclaration:
		if _, ok := NamedExport(n); !ok {
			return nil, reasonFromClause
		}
		if n.TypeOnly {
			return nil, reasonTypeOnly
		}
		if n.Declaration != nil {
			return expandDeclaration(n.Declaration)
		}
		return expandSpecifiers(n.Specifiers)
	case *estree.ExportDefaultDeclaration:
		value, ok := defaultValue(n.Declaration)
		if !ok {
			return nil, reasonDefaultValue
		}
		return []estree.Stmt{
			resetExports(),
			exportAs(estree.Ident("default"), value),
		}, ""
	}
	return nil, reasonDeclaration
}

// expandDeclaration keeps the declaration and exports every name it binds.
func expandDeclaration(decl estree.Stmt) ([]estree.Stmt, string) {
	inner := detach(decl)
	if inner == nil {
		return nil, reasonDeclaration
	}
	names := estree.BoundNames(inner)
	if len(names) == 0 {
		return nil, reasonNoBoundNames
	}

	out := make([]estree.Stmt, 0, len(names)+2)
	out = append(out, inner, resetExports())
	for _, name := range names {
		out = append(out, exportAs(estree.Ident(name), estree.Ident(name)))
	}
	return out, ""
}

func expandSpecifiers(specs []*estree.ExportSpecifier) ([]estree.Stmt, string) {
	if len(specs) == 0 {
		return []estree.Stmt{}, ""
	}

	out := make([]estree.Stmt, 0, len(specs)+1)
	out = append(out, resetExports())
	for _, spec := range specs {
		local, ok := spec.Local.(*estree.Identifier)
		if !ok {
			return nil, reasonStringLocal
		}
		exported := spec.Exported
		if exported == nil {
			exported = local
		}
		out = append(out, exportAs(copyExpr(exported), estree.Ident(local.Name)))
	}
	return out, ""
}

// defaultValue converts the operand of `export default` to an expression.
func defaultValue(decl estree.Node) (estree.Expr, bool) {
	switch d := decl.(type) {
	case *estree.FunctionDeclaration:
		return estree.FunctionExpressionFrom(d), true
	case *estree.ClassDeclaration:
		return estree.ClassExpressionFrom(d), true
	case *estree.Identifier, *estree.Literal, *estree.RawExpr,
		*estree.FunctionExpression, *estree.ClassExpression:
		return copyExpr(d.(estree.Expr)), true
	}
	return nil, false
}

// detach returns a shallow copy of an exportable declaration so it can be
// placed in the new body without aliasing the export that held it.
func detach(s estree.Stmt) estree.Stmt {
	switch d := s.(type) {
	case *estree.VariableDeclaration:
		c := *d
		return &c
	case *estree.FunctionDeclaration:
		if d.ID == nil {
			return nil
		}
		c := *d
		return &c
	case *estree.ClassDeclaration:
		if d.ID == nil {
			return nil
		}
		c := *d
		return &c
	}
	return nil
}

// resetExports is `module.exports = {};`.
func resetExports() estree.Stmt {
	return estree.ExprStmt(estree.Assign(estree.ModuleExports(), estree.Object()))
}

// exportAs is `module.exports.<name> = value;`, or the computed form for a
// string literal name.
func exportAs(name estree.Expr, value estree.Expr) estree.Stmt {
	var target *estree.MemberExpression
	switch n := name.(type) {
	case *estree.Identifier:
		target = estree.Member(estree.ModuleExports(), n.Name)
	default:
		target = estree.Index(estree.ModuleExports(), n)
	}
	return estree.ExprStmt(estree.Assign(target, value))
}

// firstExport returns the index of the first export declaration, or -1.
func firstExport(body []estree.Stmt) int {
	for i, s := range body {
		if IsAnyExport(s) {
			return i
		}
	}
	return -1
}

// rewriteExports expands the first export declaration of prog. Later exports
// are reported as skipped. In strict mode any export that is not expanded is
// an *UnsupportedExportError.
func (t *Transformer) rewriteExports(prog *estree.Program, opts Options, res *Result) (*estree.Program, error) {
	first := firstExport(prog.Body)
	if first < 0 {
		return prog, nil
	}

	target := prog.Body[first]
	frags, reason := expandExport(target)
	if reason != "" {
		if err := t.skipExport(target, reason, opts, res); err != nil {
			return nil, err
		}
		frags = nil
	}

	for _, s := range prog.Body[first+1:] {
		if IsAnyExport(s) {
			if err := t.skipExport(s, reasonNotFirst, opts, res); err != nil {
				return nil, err
			}
		}
	}

	if frags == nil {
		return prog, nil
	}

	anchor(frags, target.Layout(), prog.Newline)
	res.ExportsExpanded++
	t.logger.Debug("expanded export", "line", target.Layout().Line, "kind", target.Type(), "statements", len(frags))

	return estree.Rewrite(prog, func(i int, _ estree.Stmt) ([]estree.Stmt, bool) {
		if i != first {
			return nil, false
		}
		return frags, true
	}), nil
}

func (t *Transformer) skipExport(s estree.Stmt, reason string, opts Options, res *Result) error {
	line := s.Layout().Line
	if opts.Strict {
		return &UnsupportedExportError{Line: line, Kind: s.Type(), Reason: reason}
	}
	res.ExportsSkipped++
	res.Skipped = append(res.Skipped, Skip{Line: line, Kind: s.Type(), Reason: reason})
	t.logger.Warn("export left unchanged", "line", line, "kind", s.Type(), "reason", reason)
	return nil
}
