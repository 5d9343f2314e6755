package transform

import (
	"log/slog"

	"github.com/gnana997/esmshift/pkg/estree"
)

// loader builds the expression that loads the module named by decl.
type loader func(decl *estree.ImportDeclaration) estree.Expr

// requireLoader yields `require("m")`. Import attributes have no require
// equivalent and are dropped.
func requireLoader(decl *estree.ImportDeclaration) estree.Expr {
	return estree.Require(copyExpr(decl.Source))
}

// dynamicImportLoader yields `await import("m")`, passing attributes as
// `{ with: {...} }`.
func dynamicImportLoader(decl *estree.ImportDeclaration) estree.Expr {
	var options estree.Expr
	if decl.Attributes != nil {
		options = estree.Object(estree.Prop(estree.Ident("with"), copyExpr(decl.Attributes)))
	}
	return estree.Await(estree.DynamicImport(copyExpr(decl.Source), options))
}

// rewriteImport returns the single declaration replacing decl, or nil when
// decl matches no shape. Shapes are tried in Classify order.
func rewriteImport(decl *estree.ImportDeclaration, load loader) (*estree.VariableDeclaration, ImportShape) {
	if def, ok := OnlyDefault(decl); ok {
		pat := estree.ObjPattern(defaultProp(def))
		return estree.Const(pat, load(decl)), ShapeOnlyDefault
	}
	if named, ok := OnlyNamed(decl); ok {
		pat := estree.ObjPattern(namedProps(named)...)
		return estree.Const(pat, load(decl)), ShapeOnlyNamed
	}
	if def, named, ok := DefaultPlusNamed(decl); ok {
		props := append([]*estree.Property{defaultProp(def)}, namedProps(named)...)
		return estree.Const(estree.ObjPattern(props...), load(decl)), ShapeDefaultPlusNamed
	}
	if ns, ok := OnlyNamespace(decl); ok {
		return estree.Const(estree.Ident(ns.Local.Name), load(decl)), ShapeOnlyNamespace
	}
	return nil, ShapeNone
}

// defaultProp binds the default export: `default: local`. Never shorthand,
// since `default` is a reserved word.
func defaultProp(def *estree.ImportDefaultSpecifier) *estree.Property {
	return estree.PatternProp(estree.Ident("default"), estree.Ident(def.Local.Name), false)
}

func namedProps(named []*estree.ImportSpecifier) []*estree.Property {
	props := make([]*estree.Property, 0, len(named))
	for _, s := range named {
		imported := s.Imported.(*estree.Identifier).Name
		local := s.Local.Name
		props = append(props, estree.PatternProp(estree.Ident(imported), estree.Ident(local), imported == local))
	}
	return props
}

// skipReason explains why an import matched no shape.
func skipReason(decl *estree.ImportDeclaration) string {
	if decl.ImportKind != "" && decl.ImportKind != estree.ImportValue {
		return "type-only import"
	}
	if lit, ok := decl.Source.(*estree.Literal); !ok || lit.Kind != estree.LiteralString {
		return "module source is not a string literal"
	}
	for _, spec := range decl.Specifiers {
		if s, ok := spec.(*estree.ImportSpecifier); ok {
			if s.TypeOnly {
				return "type-only specifier"
			}
			if _, ok := s.Imported.(*estree.Identifier); !ok {
				return "string literal import name"
			}
		}
	}
	return "unsupported specifier combination"
}

func importSource(decl *estree.ImportDeclaration) string {
	if lit, ok := decl.Source.(*estree.Literal); ok {
		return lit.Value
	}
	return ""
}

// rewriteImports replaces every matching top-level import declaration.
func rewriteImports(prog *estree.Program, load loader, res *Result, logger *slog.Logger) *estree.Program {
	return estree.Rewrite(prog, func(_ int, s estree.Stmt) ([]estree.Stmt, bool) {
		decl, ok := s.(*estree.ImportDeclaration)
		if !ok {
			return nil, false
		}

		repl, shape := rewriteImport(decl, load)
		if repl == nil {
			reason := skipReason(decl)
			res.ImportsSkipped++
			res.Skipped = append(res.Skipped, Skip{Line: decl.Line, Kind: decl.Type(), Reason: reason})
			logger.Debug("import left unchanged", "line", decl.Line, "source", importSource(decl), "reason", reason)
			return nil, false
		}

		if decl.Attributes != nil && isRequire(repl) {
			logger.Debug("dropped import attributes", "line", decl.Line, "source", importSource(decl))
		}

		res.ImportsRewritten++
		logger.Debug("rewrote import", "line", decl.Line, "shape", shape.String(), "source", importSource(decl))

		frags := []estree.Stmt{repl}
		anchor(frags, decl.Layout(), prog.Newline)
		return frags, true
	})
}

func isRequire(decl *estree.VariableDeclaration) bool {
	_, ok := decl.Declarations[0].Init.(*estree.CallExpression)
	return ok
}

// anchor places replacement statements where orig was: the first inherits
// orig's leading trivia, the rest start on a new line.
func anchor(frags []estree.Stmt, orig *estree.Origin, newline string) {
	for i, f := range frags {
		o := f.Layout()
		o.Start, o.End, o.Line = orig.Start, orig.End, orig.Line
		if i == 0 {
			o.Leading = orig.Leading
		} else {
			o.Leading = newline
		}
	}
}

// copyExpr returns a copy of a leaf expression so replacement trees never
// share nodes with the tree they came from.
func copyExpr(e estree.Expr) estree.Expr {
	switch n := e.(type) {
	case *estree.Literal:
		c := *n
		return &c
	case *estree.Identifier:
		return estree.Ident(n.Name)
	case *estree.RawExpr:
		c := *n
		return &c
	case *estree.FunctionExpression:
		c := *n
		if n.ID != nil {
			c.ID = estree.Ident(n.ID.Name)
		}
		return &c
	case *estree.ClassExpression:
		c := *n
		if n.ID != nil {
			c.ID = estree.Ident(n.ID.Name)
		}
		return &c
	}
	return e
}
