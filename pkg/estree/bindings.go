package estree

// BoundNames returns the local names a declaration introduces into module
// scope, in source order. Statements that bind nothing return nil.
func BoundNames(s Stmt) []string {
	switch n := s.(type) {
	case *ImportDeclaration:
		var names []string
		for _, spec := range n.Specifiers {
			var local *Identifier
			switch sp := spec.(type) {
			case *ImportDefaultSpecifier:
				local = sp.Local
			case *ImportNamespaceSpecifier:
				local = sp.Local
			case *ImportSpecifier:
				local = sp.Local
			}
			if local != nil {
				names = append(names, local.Name)
			}
		}
		return names
	case *VariableDeclaration:
		var names []string
		for _, d := range n.Declarations {
			names = append(names, PatternNames(d.ID)...)
		}
		return names
	case *FunctionDeclaration:
		if n.ID != nil {
			return []string{n.ID.Name}
		}
	case *ClassDeclaration:
		if n.ID != nil {
			return []string{n.ID.Name}
		}
	}
	return nil
}

// PatternNames returns the identifiers bound by a binding pattern.
func PatternNames(p Pattern) []string {
	switch n := p.(type) {
	case *Identifier:
		if n != nil {
			return []string{n.Name}
		}
	case *ObjectPattern:
		var names []string
		for _, prop := range n.Properties {
			if v, ok := prop.Value.(Pattern); ok {
				names = append(names, PatternNames(v)...)
			}
		}
		return names
	case *RawPattern:
		return append([]string(nil), n.Bindings...)
	}
	return nil
}
