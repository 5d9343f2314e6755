package transform

import "github.com/gnana997/esmshift/pkg/estree"

// ImportShape is the recognized form of an import declaration.
type ImportShape int

const (
	// ShapeNone means the declaration is left as written.
	ShapeNone ImportShape = iota
	// ShapeOnlyDefault is `import a from "m"`.
	ShapeOnlyDefault
	// ShapeOnlyNamed is `import { a, b as c } from "m"`, including the bare
	// side-effect form `import "m"`.
	ShapeOnlyNamed
	// ShapeDefaultPlusNamed is `import a, { b } from "m"`.
	ShapeDefaultPlusNamed
	// ShapeOnlyNamespace is `import * as ns from "m"`.
	ShapeOnlyNamespace
)

func (s ImportShape) String() string {
	switch s {
	case ShapeOnlyDefault:
		return "only-default"
	case ShapeOnlyNamed:
		return "only-named"
	case ShapeDefaultPlusNamed:
		return "default-plus-named"
	case ShapeOnlyNamespace:
		return "only-namespace"
	default:
		return "none"
	}
}

// Classify returns the first shape decl matches, testing only-default,
// only-named, default-plus-named and only-namespace in that order.
func Classify(decl *estree.ImportDeclaration) ImportShape {
	if _, ok := OnlyDefault(decl); ok {
		return ShapeOnlyDefault
	}
	if _, ok := OnlyNamed(decl); ok {
		return ShapeOnlyNamed
	}
	if _, _, ok := DefaultPlusNamed(decl); ok {
		return ShapeDefaultPlusNamed
	}
	if _, ok := OnlyNamespace(decl); ok {
		return ShapeOnlyNamespace
	}
	return ShapeNone
}

// rewritable reports whether decl loads a value module from a string
// literal, which every shape requires.
func rewritable(decl *estree.ImportDeclaration) bool {
	if decl == nil {
		return false
	}
	if decl.ImportKind != "" && decl.ImportKind != estree.ImportValue {
		return false
	}
	lit, ok := decl.Source.(*estree.Literal)
	return ok && lit != nil && lit.Kind == estree.LiteralString
}

func validLocal(id *estree.Identifier) bool {
	return id != nil && id.Name != ""
}

// namedSpecifier narrows spec to a value import whose imported and local
// names are both identifiers.
func namedSpecifier(spec estree.Specifier) (*estree.ImportSpecifier, bool) {
	s, ok := spec.(*estree.ImportSpecifier)
	if !ok || s == nil || s.TypeOnly || !validLocal(s.Local) {
		return nil, false
	}
	imported, ok := s.Imported.(*estree.Identifier)
	if !ok || !validLocal(imported) {
		return nil, false
	}
	return s, true
}

// OnlyDefault matches a declaration with exactly one default specifier.
func OnlyDefault(decl *estree.ImportDeclaration) (*estree.ImportDefaultSpecifier, bool) {
	if !rewritable(decl) || len(decl.Specifiers) != 1 {
		return nil, false
	}
	def, ok := decl.Specifiers[0].(*estree.ImportDefaultSpecifier)
	if !ok || def == nil || !validLocal(def.Local) {
		return nil, false
	}
	return def, true
}

// OnlyNamed matches a declaration whose specifiers are all named value
// imports. A declaration without specifiers matches with an empty slice.
func OnlyNamed(decl *estree.ImportDeclaration) ([]*estree.ImportSpecifier, bool) {
	if !rewritable(decl) {
		return nil, false
	}
	named := make([]*estree.ImportSpecifier, 0, len(decl.Specifiers))
	for _, spec := range decl.Specifiers {
		s, ok := namedSpecifier(spec)
		if !ok {
			return nil, false
		}
		named = append(named, s)
	}
	return named, true
}

// DefaultPlusNamed matches exactly one default specifier followed by one or
// more named value imports.
func DefaultPlusNamed(decl *estree.ImportDeclaration) (*estree.ImportDefaultSpecifier, []*estree.ImportSpecifier, bool) {
	if !rewritable(decl) || len(decl.Specifiers) < 2 {
		return nil, nil, false
	}

	var def *estree.ImportDefaultSpecifier
	named := make([]*estree.ImportSpecifier, 0, len(decl.Specifiers)-1)
	for _, spec := range decl.Specifiers {
		if d, ok := spec.(*estree.ImportDefaultSpecifier); ok {
			if def != nil || d == nil || !validLocal(d.Local) {
				return nil, nil, false
			}
			def = d
			continue
		}
		s, ok := namedSpecifier(spec)
		if !ok {
			return nil, nil, false
		}
		named = append(named, s)
	}
	if def == nil || len(named) == 0 {
		return nil, nil, false
	}
	return def, named, true
}

// OnlyNamespace matches a declaration with exactly one namespace specifier.
func OnlyNamespace(decl *estree.ImportDeclaration) (*estree.ImportNamespaceSpecifier, bool) {
	if !rewritable(decl) || len(decl.Specifiers) != 1 {
		return nil, false
	}
	ns, ok := decl.Specifiers[0].(*estree.ImportNamespaceSpecifier)
	if !ok || ns == nil || !validLocal(ns.Local) {
		return nil, false
	}
	return ns, true
}

// NamedExport matches an export declaration without a from clause.
func NamedExport(s estree.Stmt) (*estree.ExportNamedDeclaration, bool) {
	n, ok := s.(*estree.ExportNamedDeclaration)
	if !ok || n == nil || n.Source != nil {
		return nil, false
	}
	return n, true
}

// DefaultExport matches any `export default` declaration.
func DefaultExport(s estree.Stmt) (*estree.ExportDefaultDeclaration, bool) {
	n, ok := s.(*estree.ExportDefaultDeclaration)
	return n, ok && n != nil
}

// IsAnyExport reports whether s is an export declaration of any form.
func IsAnyExport(s estree.Stmt) bool {
	switch s.(type) {
	case *estree.ExportNamedDeclaration, *estree.ExportDefaultDeclaration, *estree.ExportAllDeclaration:
		return true
	}
	return false
}
