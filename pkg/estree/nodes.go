// Package estree defines the subset of the ESTree syntax tree that esmshift
// reads and produces.
//
// Node categories are Go sum types: each category is an interface with an
// unexported marker method, and every concrete node is a pointer to a struct.
// Only module-level syntax is modelled in detail. Everything else is carried
// as verbatim source text (RawStmt, RawExpr, RawPattern) so that code the
// rewriters never touch prints back exactly as it was written.
package estree

// Node is implemented by every syntax tree node.
type Node interface {
	// Type returns the ESTree type tag, e.g. "ImportDeclaration".
	Type() string
}

// Stmt is a top-level statement or declaration.
type Stmt interface {
	Node
	Layout() *Origin
	isStmt()
}

// Expr is an expression.
type Expr interface {
	Node
	isExpr()
}

// Pattern is a binding target.
type Pattern interface {
	Node
	isPattern()
}

// Specifier is one binding clause of an import declaration.
type Specifier interface {
	Node
	isSpecifier()
}

// These interfaces are never called. Their purpose is to encode the variant
// types in Go's type system.

func (*ImportDeclaration) isStmt()        {}
func (*ExportNamedDeclaration) isStmt()   {}
func (*ExportDefaultDeclaration) isStmt() {}
func (*ExportAllDeclaration) isStmt()     {}
func (*VariableDeclaration) isStmt()      {}
func (*FunctionDeclaration) isStmt()      {}
func (*ClassDeclaration) isStmt()         {}
func (*ExpressionStatement) isStmt()      {}
func (*RawStmt) isStmt()                  {}

func (*Identifier) isExpr()           {}
func (*Literal) isExpr()              {}
func (*CallExpression) isExpr()       {}
func (*AwaitExpression) isExpr()      {}
func (*ImportExpression) isExpr()     {}
func (*MemberExpression) isExpr()     {}
func (*AssignmentExpression) isExpr() {}
func (*ObjectExpression) isExpr()     {}
func (*FunctionExpression) isExpr()   {}
func (*ClassExpression) isExpr()      {}
func (*RawExpr) isExpr()              {}

func (*Identifier) isPattern()       {}
func (*ObjectPattern) isPattern()    {}
func (*MemberExpression) isPattern() {}
func (*RawPattern) isPattern()       {}

func (*ImportDefaultSpecifier) isSpecifier()   {}
func (*ImportNamespaceSpecifier) isSpecifier() {}
func (*ImportSpecifier) isSpecifier()          {}

// Origin ties a statement to the text it was parsed from. Statements built
// by the rewriters have a zero Origin apart from Leading, which they may
// inherit from the statement they replace.
type Origin struct {
	// Start and End are byte offsets into the parsed source, End exclusive.
	Start, End int

	// Line is the 1-based line of Start.
	Line int

	// Leading is the whitespace and comments between the previous statement
	// and this one.
	Leading string

	// Text is the verbatim statement source. When set, printers emit it
	// instead of reconstructing the statement from its fields.
	Text string
}

// Layout returns o. It is promoted to every statement type that embeds Origin.
func (o *Origin) Layout() *Origin { return o }

// Parsed reports whether o describes a span of real source text.
func (o *Origin) Parsed() bool { return o.End > o.Start }

// Program is the root of a parsed module.
type Program struct {
	Body []Stmt

	// Trailing is the source text after the last statement.
	Trailing string

	// Newline is the line terminator used by the source, "\n" or "\r\n".
	Newline string
}

// ImportKind distinguishes value imports from TypeScript type-only imports.
type ImportKind string

const (
	ImportValue  ImportKind = "value"
	ImportType   ImportKind = "type"
	ImportTypeof ImportKind = "typeof"
)

// ImportDeclaration is `import ... from "source"` or `import "source"`.
type ImportDeclaration struct {
	Origin
	Specifiers []Specifier
	Source     Expr // *Literal for every well-formed import
	Attributes Expr // `with { ... }` object, nil when absent
	ImportKind ImportKind
}

// ImportDefaultSpecifier is the `foo` in `import foo from "m"`.
type ImportDefaultSpecifier struct {
	Local *Identifier
}

// ImportNamespaceSpecifier is the `* as foo` in `import * as foo from "m"`.
type ImportNamespaceSpecifier struct {
	Local *Identifier
}

// ImportSpecifier is one entry of `import { a, b as c } from "m"`.
// Imported is an *Identifier, or a string *Literal for arbitrary module
// namespace names such as `import { "a-b" as c }`.
type ImportSpecifier struct {
	Imported Expr
	Local    *Identifier
	TypeOnly bool
}

// ExportNamedDeclaration is `export <decl>` or `export { ... } [from "m"]`.
type ExportNamedDeclaration struct {
	Origin
	Declaration Stmt
	Specifiers  []*ExportSpecifier
	Source      Expr // nil unless there is a from clause
	TypeOnly    bool
}

// ExportSpecifier is one entry of `export { a, b as c }`. Local and Exported
// are *Identifier or string *Literal.
type ExportSpecifier struct {
	Local    Expr
	Exported Expr
}

// ExportDefaultDeclaration is `export default <decl-or-expr>`.
// Declaration is a *FunctionDeclaration, *ClassDeclaration, or an Expr.
type ExportDefaultDeclaration struct {
	Origin
	Declaration Node
}

// ExportAllDeclaration is `export * from "m"` or `export * as ns from "m"`.
type ExportAllDeclaration struct {
	Origin
	Exported Expr // nil for the plain star form
	Source   Expr
}

// VariableKind is the keyword of a variable declaration.
type VariableKind string

const (
	KindVar   VariableKind = "var"
	KindLet   VariableKind = "let"
	KindConst VariableKind = "const"
)

type VariableDeclaration struct {
	Origin
	Kind         VariableKind
	Declarations []*VariableDeclarator
}

type VariableDeclarator struct {
	ID   Pattern
	Init Expr // nil when there is no initializer
}

// FunctionDeclaration is a named function statement. Params holds the
// verbatim signature from the opening type parameter list or parenthesis up
// to the body, so TypeScript annotations survive. Body holds the verbatim
// block including braces.
type FunctionDeclaration struct {
	Origin
	ID        *Identifier // nil only for `export default function () {}`
	Async     bool
	Generator bool
	Params    string
	Body      string
}

// ClassDeclaration is a class statement. Body holds everything after the
// class name: heritage clauses and the braced class body.
type ClassDeclaration struct {
	Origin
	ID   *Identifier
	Body string
}

type ExpressionStatement struct {
	Origin
	Expression Expr
}

// RawStmt is a statement esmshift does not interpret.
type RawStmt struct {
	Origin
}

type Identifier struct {
	Name string
}

// LiteralKind classifies a Literal.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBoolean
	LiteralNull
	LiteralRegExp
	LiteralBigInt
)

// Literal is a primitive literal. Raw is the source spelling, quotes included
// for strings. Value is the unquoted string content for string literals and
// equal to Raw for every other kind.
type Literal struct {
	Kind  LiteralKind
	Raw   string
	Value string
}

type CallExpression struct {
	Callee    Expr
	Arguments []Expr
}

type AwaitExpression struct {
	Argument Expr
}

// ImportExpression is a dynamic `import(source[, options])`.
type ImportExpression struct {
	Source  Expr
	Options Expr
}

type MemberExpression struct {
	Object   Expr
	Property Expr
	Computed bool
}

type AssignmentExpression struct {
	Operator string
	Left     Pattern
	Right    Expr
}

type ObjectExpression struct {
	Properties []*Property
}

type ObjectPattern struct {
	Properties []*Property
}

// Property is a member of an ObjectExpression or ObjectPattern. In a pattern
// Value is a Pattern; in an expression it is an Expr.
type Property struct {
	Key       Expr
	Value     Node
	Shorthand bool
	Computed  bool
}

type FunctionExpression struct {
	ID        *Identifier
	Async     bool
	Generator bool
	Params    string
	Body      string
}

type ClassExpression struct {
	ID   *Identifier
	Body string
}

// RawExpr is an expression carried as source text.
type RawExpr struct {
	Text string
}

// RawPattern is a destructuring pattern carried as source text. Bindings
// lists the identifiers it binds, in source order.
type RawPattern struct {
	Text     string
	Bindings []string
}

func (*Program) Type() string                  { return "Program" }
func (*ImportDeclaration) Type() string        { return "ImportDeclaration" }
func (*ImportDefaultSpecifier) Type() string   { return "ImportDefaultSpecifier" }
func (*ImportNamespaceSpecifier) Type() string { return "ImportNamespaceSpecifier" }
func (*ImportSpecifier) Type() string          { return "ImportSpecifier" }
func (*ExportNamedDeclaration) Type() string   { return "ExportNamedDeclaration" }
func (*ExportSpecifier) Type() string          { return "ExportSpecifier" }
func (*ExportDefaultDeclaration) Type() string { return "ExportDefaultDeclaration" }
func (*ExportAllDeclaration) Type() string     { return "ExportAllDeclaration" }
func (*VariableDeclaration) Type() string      { return "VariableDeclaration" }
func (*VariableDeclarator) Type() string       { return "VariableDeclarator" }
func (*FunctionDeclaration) Type() string      { return "FunctionDeclaration" }
func (*ClassDeclaration) Type() string         { return "ClassDeclaration" }
func (*ExpressionStatement) Type() string      { return "ExpressionStatement" }
func (*RawStmt) Type() string                  { return "RawStatement" }
func (*Identifier) Type() string               { return "Identifier" }
func (*Literal) Type() string                  { return "Literal" }
func (*CallExpression) Type() string           { return "CallExpression" }
func (*AwaitExpression) Type() string          { return "AwaitExpression" }
func (*ImportExpression) Type() string         { return "ImportExpression" }
func (*MemberExpression) Type() string         { return "MemberExpression" }
func (*AssignmentExpression) Type() string     { return "AssignmentExpression" }
func (*ObjectExpression) Type() string         { return "ObjectExpression" }
func (*ObjectPattern) Type() string            { return "ObjectPattern" }
func (*Property) Type() string                 { return "Property" }
func (*FunctionExpression) Type() string       { return "FunctionExpression" }
func (*ClassExpression) Type() string          { return "ClassExpression" }
func (*RawExpr) Type() string                  { return "RawExpression" }
func (*RawPattern) Type() string               { return "RawPattern" }
