package estree

import "strconv"

// Ident returns an identifier reference.
func Ident(name string) *Identifier {
	return &Identifier{Name: name}
}

// String returns a double-quoted string literal for value.
func String(value string) *Literal {
	return &Literal{Kind: LiteralString, Raw: strconv.Quote(value), Value: value}
}

// Call returns `callee(args...)`.
func Call(callee Expr, args ...Expr) *CallExpression {
	return &CallExpression{Callee: callee, Arguments: args}
}

// Require returns `require(source)`.
func Require(source Expr) *CallExpression {
	return Call(Ident("require"), source)
}

// Await returns `await arg`.
func Await(arg Expr) *AwaitExpression {
	return &AwaitExpression{Argument: arg}
}

// DynamicImport returns `import(source)`, or `import(source, options)` when
// options is non-nil.
func DynamicImport(source, options Expr) *ImportExpression {
	return &ImportExpression{Source: source, Options: options}
}

// Member returns the non-computed member access `object.property`.
func Member(object Expr, property string) *MemberExpression {
	return &MemberExpression{Object: object, Property: Ident(property)}
}

// Index returns the computed member access `object[property]`.
func Index(object, property Expr) *MemberExpression {
	return &MemberExpression{Object: object, Property: property, Computed: true}
}

// Assign returns `left = right`.
func Assign(left Pattern, right Expr) *AssignmentExpression {
	return &AssignmentExpression{Operator: "=", Left: left, Right: right}
}

// ExprStmt wraps e in an expression statement.
func ExprStmt(e Expr) *ExpressionStatement {
	return &ExpressionStatement{Expression: e}
}

// Object returns an object literal.
func Object(props ...*Property) *ObjectExpression {
	return &ObjectExpression{Properties: props}
}

// ObjPattern returns an object destructuring pattern.
func ObjPattern(props ...*Property) *ObjectPattern {
	return &ObjectPattern{Properties: props}
}

// PatternProp returns a destructuring property binding key to value. The
// property is printed in shorthand form only when shorthand is set and key
// and value name the same identifier.
func PatternProp(key *Identifier, value Pattern, shorthand bool) *Property {
	if v, ok := value.(*Identifier); !ok || v.Name != key.Name {
		shorthand = false
	}
	return &Property{Key: key, Value: value, Shorthand: shorthand}
}

// Prop returns an object literal property `key: value`. key is an
// *Identifier or a string *Literal.
func Prop(key Expr, value Expr) *Property {
	return &Property{Key: key, Value: value}
}

// Declarator returns `id = init`.
func Declarator(id Pattern, init Expr) *VariableDeclarator {
	return &VariableDeclarator{ID: id, Init: init}
}

// Declare returns a variable declaration of the given kind.
func Declare(kind VariableKind, decls ...*VariableDeclarator) *VariableDeclaration {
	return &VariableDeclaration{Kind: kind, Declarations: decls}
}

// Const returns `const id = init;`.
func Const(id Pattern, init Expr) *VariableDeclaration {
	return Declare(KindConst, Declarator(id, init))
}

// ModuleExports returns `module.exports`.
func ModuleExports() *MemberExpression {
	return Member(Ident("module"), "exports")
}

// FunctionExpressionFrom returns the expression form of fn. Only the name,
// flags, signature and body are carried over; the result shares no node with
// fn.
func FunctionExpressionFrom(fn *FunctionDeclaration) *FunctionExpression {
	out := &FunctionExpression{
		Async:     fn.Async,
		Generator: fn.Generator,
		Params:    fn.Params,
		Body:      fn.Body,
	}
	if fn.ID != nil {
		out.ID = Ident(fn.ID.Name)
	}
	return out
}

// ClassExpressionFrom returns the expression form of cls.
func ClassExpressionFrom(cls *ClassDeclaration) *ClassExpression {
	out := &ClassExpression{Body: cls.Body}
	if cls.ID != nil {
		out.ID = Ident(cls.ID.Name)
	}
	return out
}
