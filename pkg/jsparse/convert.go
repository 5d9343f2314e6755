package jsparse

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/esmshift/pkg/estree"
)

type converter struct {
	src []byte
}

func (c *converter) text(n *ts.Node) string {
	return n.Utf8Text(c.src)
}

func (c *converter) origin(n *ts.Node) estree.Origin {
	return estree.Origin{
		Start: int(n.StartByte()),
		End:   int(n.EndByte()),
		Line:  int(n.StartPosition().Row) + 1,
		Text:  c.text(n),
	}
}

// statement converts a top-level CST node. Shapes it does not decode fall
// back to a raw statement.
func (c *converter) statement(n *ts.Node) estree.Stmt {
	var stmt estree.Stmt
	switch n.Kind() {
	case "import_statement":
		if decl, ok := c.importDeclaration(n); ok {
			stmt = decl
		}
	case "export_statement":
		stmt = c.exportDeclaration(n)
	}
	if stmt == nil {
		stmt = &estree.RawStmt{}
	}
	*stmt.Layout() = c.origin(n)
	return stmt
}

func hasToken(n *ts.Node, tok string) bool {
	for i := uint(0); i < n.ChildCount(); i++ {
		ch := n.Child(i)
		if !ch.IsNamed() && ch.Kind() == tok {
			return true
		}
	}
	return false
}

func namedChildren(n *ts.Node) []*ts.Node {
	var out []*ts.Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		ch := n.NamedChild(i)
		if ch.Kind() == "comment" {
			continue
		}
		out = append(out, ch)
	}
	return out
}

func (c *converter) importDeclaration(n *ts.Node) (*estree.ImportDeclaration, bool) {
	decl := &estree.ImportDeclaration{ImportKind: estree.ImportValue}
	switch {
	case hasToken(n, "type"):
		decl.ImportKind = estree.ImportType
	case hasToken(n, "typeof"):
		decl.ImportKind = estree.ImportTypeof
	}

	source := n.ChildByFieldName("source")
	if source == nil {
		return nil, false
	}
	decl.Source = c.expression(source)

	for _, ch := range namedChildren(n) {
		switch ch.Kind() {
		case "string":
		case "import_clause":
			specs, ok := c.importClause(ch)
			if !ok {
				return nil, false
			}
			decl.Specifiers = specs
		case "import_attribute":
			obj := namedChildren(ch)
			if len(obj) != 1 {
				return nil, false
			}
			decl.Attributes = &estree.RawExpr{Text: c.text(obj[0])}
		default:
			return nil, false
		}
	}
	return decl, true
}

func (c *converter) importClause(n *ts.Node) ([]estree.Specifier, bool) {
	var specs []estree.Specifier
	for _, ch := range namedChildren(n) {
		switch ch.Kind() {
		case "identifier":
			specs = append(specs, &estree.ImportDefaultSpecifier{Local: estree.Ident(c.text(ch))})
		case "namespace_import":
			ids := namedChildren(ch)
			if len(ids) != 1 || ids[0].Kind() != "identifier" {
				return nil, false
			}
			specs = append(specs, &estree.ImportNamespaceSpecifier{Local: estree.Ident(c.text(ids[0]))})
		case "named_imports":
			for _, sp := range namedChildren(ch) {
				if sp.Kind() != "import_specifier" {
					return nil, false
				}
				spec, ok := c.importSpecifier(sp)
				if !ok {
					return nil, false
				}
				specs = append(specs, spec)
			}
		default:
			return nil, false
		}
	}
	return specs, true
}

func (c *converter) importSpecifier(n *ts.Node) (*estree.ImportSpecifier, bool) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return nil, false
	}
	spec := &estree.ImportSpecifier{
		Imported: c.moduleExportName(name),
		TypeOnly: hasToken(n, "type") || hasToken(n, "typeof"),
	}
	if spec.Imported == nil {
		return nil, false
	}

	if alias := n.ChildByFieldName("alias"); alias != nil {
		spec.Local = estree.Ident(c.text(alias))
	} else if id, ok := spec.Imported.(*estree.Identifier); ok {
		spec.Local = estree.Ident(id.Name)
	} else {
		return nil, false
	}
	return spec, true
}

// moduleExportName decodes an identifier, the `default` keyword, or a string
// used as an import/export name.
func (c *converter) moduleExportName(n *ts.Node) estree.Expr {
	switch n.Kind() {
	case "identifier", "default", "type_identifier":
		return estree.Ident(c.text(n))
	case "string":
		return c.stringLiteral(n)
	}
	return nil
}

func (c *converter) exportDeclaration(n *ts.Node) estree.Stmt {
	if d := n.ChildByFieldName("declaration"); d != nil {
		inner := c.declaration(d)
		if hasToken(n, "default") {
			return &estree.ExportDefaultDeclaration{Declaration: inner}
		}
		return &estree.ExportNamedDeclaration{Declaration: inner, TypeOnly: hasToken(n, "type")}
	}

	if v := n.ChildByFieldName("value"); v != nil && hasToken(n, "default") {
		return &estree.ExportDefaultDeclaration{Declaration: c.expression(v)}
	}

	var source estree.Expr
	if s := n.ChildByFieldName("source"); s != nil {
		source = c.expression(s)
	}

	for _, ch := range namedChildren(n) {
		switch ch.Kind() {
		case "export_clause":
			decl := &estree.ExportNamedDeclaration{Source: source, TypeOnly: hasToken(n, "type")}
			for _, sp := range namedChildren(ch) {
				if sp.Kind() != "export_specifier" {
					return nil
				}
				spec, typeOnly, ok := c.exportSpecifier(sp)
				if !ok {
					return nil
				}
				decl.TypeOnly = decl.TypeOnly || typeOnly
				decl.Specifiers = append(decl.Specifiers, spec)
			}
			return decl
		case "namespace_export":
			names := namedChildren(ch)
			if len(names) != 1 || source == nil {
				return nil
			}
			exported := c.moduleExportName(names[0])
			if exported == nil {
				return nil
			}
			return &estree.ExportAllDeclaration{Exported: exported, Source: source}
		}
	}

	if source != nil && hasToken(n, "*") {
		return &estree.ExportAllDeclaration{Source: source}
	}
	return nil
}

func (c *converter) exportSpecifier(n *ts.Node) (*estree.ExportSpecifier, bool, bool) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return nil, false, false
	}
	local := c.moduleExportName(name)
	if local == nil {
		return nil, false, false
	}

	exported := c.moduleExportName(name)
	if alias := n.ChildByFieldName("alias"); alias != nil {
		exported = c.moduleExportName(alias)
	}
	if exported == nil {
		return nil, false, false
	}
	typeOnly := hasToken(n, "type") || hasToken(n, "typeof")
	return &estree.ExportSpecifier{Local: local, Exported: exported}, typeOnly, true
}

// declaration converts the inline declaration of an export statement.
func (c *converter) declaration(n *ts.Node) estree.Stmt {
	var stmt estree.Stmt
	switch n.Kind() {
	case "function_declaration", "generator_function_declaration":
		if fn, ok := c.function(n); ok {
			stmt = &estree.FunctionDeclaration{
				ID: fn.ID, Async: fn.Async, Generator: fn.Generator,
				Params: fn.Params, Body: fn.Body,
			}
		}
	case "class_declaration":
		if cls, ok := c.class(n); ok {
			stmt = &estree.ClassDeclaration{ID: cls.ID, Body: cls.Body}
		}
	case "lexical_declaration", "variable_declaration":
		if decl, ok := c.variableDeclaration(n); ok {
			stmt = decl
		}
	}
	if stmt == nil {
		stmt = &estree.RawStmt{}
	}
	*stmt.Layout() = c.origin(n)
	return stmt
}

func (c *converter) function(n *ts.Node) (*estree.FunctionExpression, bool) {
	params := n.ChildByFieldName("parameters")
	body := n.ChildByFieldName("body")
	if params == nil || body == nil {
		return nil, false
	}

	sigStart := params.StartByte()
	if tp := n.ChildByFieldName("type_parameters"); tp != nil && tp.StartByte() < sigStart {
		sigStart = tp.StartByte()
	}

	fn := &estree.FunctionExpression{
		Async:     hasToken(n, "async"),
		Generator: strings.HasPrefix(n.Kind(), "generator_") || hasToken(n, "*"),
		Params:    strings.TrimSpace(string(c.src[sigStart:body.StartByte()])),
		Body:      c.text(body),
	}
	if name := n.ChildByFieldName("name"); name != nil {
		fn.ID = estree.Ident(c.text(name))
	}
	return fn, true
}

func (c *converter) class(n *ts.Node) (*estree.ClassExpression, bool) {
	if n.ChildByFieldName("body") == nil {
		return nil, false
	}

	cls := &estree.ClassExpression{}
	var tailStart uint
	if name := n.ChildByFieldName("name"); name != nil {
		cls.ID = estree.Ident(c.text(name))
		tailStart = name.EndByte()
	} else {
		for i := uint(0); i < n.ChildCount(); i++ {
			if ch := n.Child(i); !ch.IsNamed() && ch.Kind() == "class" {
				tailStart = ch.EndByte()
				break
			}
		}
		if tailStart == 0 {
			return nil, false
		}
	}
	cls.Body = strings.TrimSpace(string(c.src[tailStart:n.EndByte()]))
	return cls, true
}

func (c *converter) variableDeclaration(n *ts.Node) (*estree.VariableDeclaration, bool) {
	decl := &estree.VariableDeclaration{Kind: estree.KindVar}
	if n.Kind() == "lexical_declaration" {
		kind := n.ChildByFieldName("kind")
		if kind == nil {
			return nil, false
		}
		switch k := estree.VariableKind(c.text(kind)); k {
		case estree.KindLet, estree.KindConst:
			decl.Kind = k
		default:
			return nil, false
		}
	}

	for _, ch := range namedChildren(n) {
		if ch.Kind() != "variable_declarator" {
			continue
		}
		name := ch.ChildByFieldName("name")
		if name == nil {
			return nil, false
		}
		d := &estree.VariableDeclarator{ID: c.pattern(name)}
		if v := ch.ChildByFieldName("value"); v != nil {
			d.Init = c.expression(v)
		}
		decl.Declarations = append(decl.Declarations, d)
	}
	if len(decl.Declarations) == 0 {
		return nil, false
	}
	return decl, true
}

func (c *converter) pattern(n *ts.Node) estree.Pattern {
	if n.Kind() == "identifier" {
		return estree.Ident(c.text(n))
	}
	return &estree.RawPattern{Text: c.text(n), Bindings: c.bindingNames(n, nil)}
}

// bindingNames appends the identifiers bound by a destructuring pattern.
func (c *converter) bindingNames(n *ts.Node, names []string) []string {
	switch n.Kind() {
	case "identifier", "shorthand_property_identifier_pattern":
		return append(names, c.text(n))
	case "pair_pattern":
		if v := n.ChildByFieldName("value"); v != nil {
			return c.bindingNames(v, names)
		}
	case "assignment_pattern", "object_assignment_pattern":
		if l := n.ChildByFieldName("left"); l != nil {
			return c.bindingNames(l, names)
		}
	case "object_pattern", "array_pattern", "rest_pattern":
		for _, ch := range namedChildren(n) {
			names = c.bindingNames(ch, names)
		}
	}
	return names
}

func (c *converter) expression(n *ts.Node) estree.Expr {
	switch n.Kind() {
	case "identifier", "undefined":
		return estree.Ident(c.text(n))
	case "string":
		return c.stringLiteral(n)
	case "number":
		raw := c.text(n)
		kind := estree.LiteralNumber
		if strings.HasSuffix(raw, "n") {
			kind = estree.LiteralBigInt
		}
		return &estree.Literal{Kind: kind, Raw: raw, Value: raw}
	case "true", "false":
		return &estree.Literal{Kind: estree.LiteralBoolean, Raw: n.Kind(), Value: n.Kind()}
	case "null":
		return &estree.Literal{Kind: estree.LiteralNull, Raw: "null", Value: "null"}
	case "regex":
		raw := c.text(n)
		return &estree.Literal{Kind: estree.LiteralRegExp, Raw: raw, Value: raw}
	case "function_expression", "function", "generator_function":
		if fn, ok := c.function(n); ok {
			return fn
		}
	case "class":
		if cls, ok := c.class(n); ok {
			return cls
		}
	}
	return &estree.RawExpr{Text: c.text(n)}
}

func (c *converter) stringLiteral(n *ts.Node) *estree.Literal {
	raw := c.text(n)
	value := raw
	if len(raw) >= 2 {
		value = raw[1 : len(raw)-1]
	}
	return &estree.Literal{Kind: estree.LiteralString, Raw: raw, Value: value}
}
