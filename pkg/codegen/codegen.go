// Package codegen prints estree programs back to source text.
//
// Statements that carry their original text are printed verbatim together
// with their leading trivia. Synthesized statements are printed in a fixed
// style: double-spaced object patterns, semicolon-terminated statements.
package codegen

import (
	"fmt"
	"strings"

	"github.com/gnana997/esmshift/pkg/estree"
)

// Error reports a tree the printer cannot serialize. It indicates a defect
// in whatever built the tree, never bad user input.
type Error struct {
	Node    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("codegen: %s: %s", e.Node, e.Message)
}

// Generate prints p.
func Generate(p *estree.Program) (string, error) {
	if p == nil {
		return "", &Error{Node: "Program", Message: "nil program"}
	}
	newline := p.Newline
	if newline == "" {
		newline = "\n"
	}

	pr := &printer{}
	for i, s := range p.Body {
		if s == nil {
			return "", &Error{Node: "Program", Message: fmt.Sprintf("nil statement at index %d", i)}
		}
		o := s.Layout()
		if o.Leading == "" && i > 0 && !o.Parsed() {
			pr.WriteString(newline)
		}
		pr.WriteString(o.Leading)
		if err := pr.stmt(s); err != nil {
			return "", err
		}
	}
	pr.WriteString(p.Trailing)
	return pr.String(), nil
}

// Stmt prints a single statement without leading trivia.
func Stmt(s estree.Stmt) (string, error) {
	pr := &printer{}
	if err := pr.stmt(s); err != nil {
		return "", err
	}
	return pr.String(), nil
}

// Expr prints a single expression.
func Expr(e estree.Expr) (string, error) {
	pr := &printer{}
	if err := pr.expr(e); err != nil {
		return "", err
	}
	return pr.String(), nil
}

type printer struct {
	strings.Builder
}

func (pr *printer) stmt(s estree.Stmt) error {
	if s == nil {
		return &Error{Node: "Statement", Message: "nil statement"}
	}
	if text := s.Layout().Text; text != "" {
		pr.WriteString(text)
		return nil
	}

	switch n := s.(type) {
	case *estree.VariableDeclaration:
		return pr.variableDeclaration(n)
	case *estree.ExpressionStatement:
		if err := pr.expr(n.Expression); err != nil {
			return err
		}
		pr.WriteByte(';')
		return nil
	case *estree.FunctionDeclaration:
		if n.ID == nil {
			return &Error{Node: n.Type(), Message: "missing name"}
		}
		return pr.function(n.ID, n.Async, n.Generator, n.Params, n.Body)
	case *estree.ClassDeclaration:
		if n.ID == nil {
			return &Error{Node: n.Type(), Message: "missing name"}
		}
		return pr.class(n.ID, n.Body)
	default:
		return &Error{Node: s.Type(), Message: "statement has no source text to print"}
	}
}

func (pr *printer) variableDeclaration(n *estree.VariableDeclaration) error {
	switch n.Kind {
	case estree.KindVar, estree.KindLet, estree.KindConst:
	default:
		return &Error{Node: n.Type(), Message: fmt.Sprintf("invalid kind %q", n.Kind)}
	}
	if len(n.Declarations) == 0 {
		return &Error{Node: n.Type(), Message: "no declarators"}
	}

	pr.WriteString(string(n.Kind))
	pr.WriteByte(' ')
	for i, d := range n.Declarations {
		if i > 0 {
			pr.WriteString(", ")
		}
		if d == nil {
			return &Error{Node: "VariableDeclarator", Message: "nil declarator"}
		}
		if err := pr.pattern(d.ID); err != nil {
			return err
		}
		if d.Init != nil {
			pr.WriteString(" = ")
			if err := pr.expr(d.Init); err != nil {
				return err
			}
		} else if n.Kind == estree.KindConst {
			return &Error{Node: "VariableDeclarator", Message: "const declarator without initializer"}
		}
	}
	pr.WriteByte(';')
	return nil
}

func (pr *printer) pattern(p estree.Pattern) error {
	switch n := p.(type) {
	case *estree.Identifier:
		return pr.identifier(n)
	case *estree.ObjectPattern:
		return pr.properties(n.Type(), n.Properties, func(v estree.Node) error {
			sub, ok := v.(estree.Pattern)
			if !ok {
				return &Error{Node: n.Type(), Message: "property value is not a pattern"}
			}
			return pr.pattern(sub)
		})
	case *estree.MemberExpression:
		return pr.expr(n)
	case *estree.RawPattern:
		if n.Text == "" {
			return &Error{Node: n.Type(), Message: "empty pattern"}
		}
		pr.WriteString(n.Text)
		return nil
	case nil:
		return &Error{Node: "Pattern", Message: "nil pattern"}
	default:
		return &Error{Node: p.Type(), Message: "unsupported pattern"}
	}
}

// properties prints `{ a, b: c }`, or `{}` when empty.
func (pr *printer) properties(owner string, props []*estree.Property, value func(estree.Node) error) error {
	if len(props) == 0 {
		pr.WriteString("{}")
		return nil
	}

	pr.WriteString("{ ")
	for i, prop := range props {
		if i > 0 {
			pr.WriteString(", ")
		}
		if prop == nil {
			return &Error{Node: owner, Message: "nil property"}
		}
		if prop.Shorthand {
			key, kok := prop.Key.(*estree.Identifier)
			val, vok := prop.Value.(*estree.Identifier)
			if !kok || !vok || key == nil || val == nil || key.Name != val.Name {
				return &Error{Node: "Property", Message: "shorthand property with mismatched key and value"}
			}
			if err := pr.identifier(key); err != nil {
				return err
			}
			continue
		}
		if err := pr.propertyKey(prop); err != nil {
			return err
		}
		pr.WriteString(": ")
		if prop.Value == nil {
			return &Error{Node: "Property", Message: "nil value"}
		}
		if err := value(prop.Value); err != nil {
			return err
		}
	}
	pr.WriteString(" }")
	return nil
}

func (pr *printer) propertyKey(prop *estree.Property) error {
	if prop.Computed {
		pr.WriteByte('[')
		if err := pr.expr(prop.Key); err != nil {
			return err
		}
		pr.WriteByte(']')
		return nil
	}
	switch k := prop.Key.(type) {
	case *estree.Identifier:
		return pr.identifier(k)
	case *estree.Literal:
		return pr.literal(k)
	default:
		return &Error{Node: "Property", Message: "key must be an identifier or literal"}
	}
}

func (pr *printer) identifier(id *estree.Identifier) error {
	if id == nil || id.Name == "" {
		return &Error{Node: "Identifier", Message: "empty name"}
	}
	pr.WriteString(id.Name)
	return nil
}

func (pr *printer) literal(l *estree.Literal) error {
	if l == nil || l.Raw == "" {
		return &Error{Node: "Literal", Message: "empty literal"}
	}
	pr.WriteString(l.Raw)
	return nil
}

func (pr *printer) expr(e estree.Expr) error {
	switch n := e.(type) {
	case *estree.Identifier:
		return pr.identifier(n)
	case *estree.Literal:
		return pr.literal(n)
	case *estree.CallExpression:
		if err := pr.expr(n.Callee); err != nil {
			return err
		}
		return pr.arguments(n.Arguments...)
	case *estree.AwaitExpression:
		pr.WriteString("await ")
		return pr.expr(n.Argument)
	case *estree.ImportExpression:
		pr.WriteString("import")
		if n.Options == nil {
			return pr.arguments(n.Source)
		}
		return pr.arguments(n.Source, n.Options)
	case *estree.MemberExpression:
		if err := pr.expr(n.Object); err != nil {
			return err
		}
		if n.Computed {
			pr.WriteByte('[')
			if err := pr.expr(n.Property); err != nil {
				return err
			}
			pr.WriteByte(']')
			return nil
		}
		id, ok := n.Property.(*estree.Identifier)
		if !ok {
			return &Error{Node: n.Type(), Message: "non-computed property must be an identifier"}
		}
		pr.WriteByte('.')
		return pr.identifier(id)
	case *estree.AssignmentExpression:
		if n.Operator == "" {
			return &Error{Node: n.Type(), Message: "missing operator"}
		}
		if err := pr.pattern(n.Left); err != nil {
			return err
		}
		pr.WriteString(" " + n.Operator + " ")
		return pr.expr(n.Right)
	case *estree.ObjectExpression:
		return pr.properties(n.Type(), n.Properties, func(v estree.Node) error {
			sub, ok := v.(estree.Expr)
			if !ok {
				return &Error{Node: n.Type(), Message: "property value is not an expression"}
			}
			return pr.expr(sub)
		})
	case *estree.FunctionExpression:
		return pr.function(n.ID, n.Async, n.Generator, n.Params, n.Body)
	case *estree.ClassExpression:
		return pr.class(n.ID, n.Body)
	case *estree.RawExpr:
		if n.Text == "" {
			return &Error{Node: n.Type(), Message: "empty expression"}
		}
		pr.WriteString(n.Text)
		return nil
	case nil:
		return &Error{Node: "Expression", Message: "nil expression"}
	default:
		return &Error{Node: e.Type(), Message: "unsupported expression"}
	}
}

func (pr *printer) arguments(args ...estree.Expr) error {
	pr.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			pr.WriteString(", ")
		}
		if err := pr.expr(a); err != nil {
			return err
		}
	}
	pr.WriteByte(')')
	return nil
}

func (pr *printer) function(id *estree.Identifier, async, generator bool, params, body string) error {
	if params == "" || body == "" {
		return &Error{Node: "Function", Message: "missing parameters or body"}
	}
	if async {
		pr.WriteString("async ")
	}
	pr.WriteString("function")
	if generator {
		pr.WriteByte('*')
	}
	pr.WriteByte(' ')
	if id != nil {
		if err := pr.identifier(id); err != nil {
			return err
		}
	}
	pr.WriteString(params)
	pr.WriteByte(' ')
	pr.WriteString(body)
	return nil
}

func (pr *printer) class(id *estree.Identifier, body string) error {
	if body == "" {
		return &Error{Node: "Class", Message: "missing body"}
	}
	pr.WriteString("class ")
	if id != nil {
		if err := pr.identifier(id); err != nil {
			return err
		}
		pr.WriteByte(' ')
	}
	pr.WriteString(body)
	return nil
}
