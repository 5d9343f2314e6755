package estree

// Inspect traverses the tree rooted at node in depth-first order. It calls
// f(node) first; if f returns true, Inspect recurses into each child of node
// and then calls f(nil). Nodes carried as raw text have no children.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || isNilNode(node) || !f(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, s := range n.Body {
			Inspect(s, f)
		}
	case *ImportDeclaration:
		for _, s := range n.Specifiers {
			Inspect(s, f)
		}
		inspectOpt(n.Source, f)
		inspectOpt(n.Attributes, f)
	case *ImportDefaultSpecifier:
		inspectOpt(n.Local, f)
	case *ImportNamespaceSpecifier:
		inspectOpt(n.Local, f)
	case *ImportSpecifier:
		inspectOpt(n.Imported, f)
		inspectOpt(n.Local, f)
	case *ExportNamedDeclaration:
		inspectOpt(n.Declaration, f)
		for _, s := range n.Specifiers {
			Inspect(s, f)
		}
		inspectOpt(n.Source, f)
	case *ExportSpecifier:
		inspectOpt(n.Local, f)
		inspectOpt(n.Exported, f)
	case *ExportDefaultDeclaration:
		inspectOpt(n.Declaration, f)
	case *ExportAllDeclaration:
		inspectOpt(n.Exported, f)
		inspectOpt(n.Source, f)
	case *VariableDeclaration:
		for _, d := range n.Declarations {
			Inspect(d, f)
		}
	case *VariableDeclarator:
		inspectOpt(n.ID, f)
		inspectOpt(n.Init, f)
	case *FunctionDeclaration:
		inspectOpt(n.ID, f)
	case *FunctionExpression:
		inspectOpt(n.ID, f)
	case *ClassDeclaration:
		inspectOpt(n.ID, f)
	case *ClassExpression:
		inspectOpt(n.ID, f)
	case *ExpressionStatement:
		inspectOpt(n.Expression, f)
	case *CallExpression:
		inspectOpt(n.Callee, f)
		for _, a := range n.Arguments {
			Inspect(a, f)
		}
	case *AwaitExpression:
		inspectOpt(n.Argument, f)
	case *ImportExpression:
		inspectOpt(n.Source, f)
		inspectOpt(n.Options, f)
	case *MemberExpression:
		inspectOpt(n.Object, f)
		inspectOpt(n.Property, f)
	case *AssignmentExpression:
		inspectOpt(n.Left, f)
		inspectOpt(n.Right, f)
	case *ObjectExpression:
		for _, p := range n.Properties {
			Inspect(p, f)
		}
	case *ObjectPattern:
		for _, p := range n.Properties {
			Inspect(p, f)
		}
	case *Property:
		inspectOpt(n.Key, f)
		inspectOpt(n.Value, f)
	}

	f(nil)
}

func inspectOpt(n Node, f func(Node) bool) {
	if n != nil && !isNilNode(n) {
		Inspect(n, f)
	}
}

// isNilNode reports whether n is an interface holding a typed nil pointer,
// which happens when an optional *Identifier field is assigned to a Node.
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *Identifier:
		return v == nil
	case *Literal:
		return v == nil
	}
	return false
}

// Rewrite calls fn for each top-level statement of p, in order. When fn
// returns ok, the statement's slot is filled with repl, which may be empty;
// otherwise the statement is kept. Replacement statements are not passed to
// fn again.
//
// Rewrite does not modify p. It returns a new Program whose body is rebuilt
// from the kept and replacement statements.
func Rewrite(p *Program, fn func(i int, s Stmt) (repl []Stmt, ok bool)) *Program {
	out := &Program{
		Body:     make([]Stmt, 0, len(p.Body)),
		Trailing: p.Trailing,
		Newline:  p.Newline,
	}
	for i, s := range p.Body {
		repl, ok := fn(i, s)
		if !ok {
			out.Body = append(out.Body, s)
			continue
		}
		out.Body = append(out.Body, repl...)
	}
	return out
}
