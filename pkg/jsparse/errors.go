package jsparse

import (
	"fmt"
	"strconv"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// ParseError reports the first syntax error in a module. Line and Column are
// 1-based; Column counts bytes.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

const maxSnippet = 24

// syntaxError locates the first ERROR or MISSING node under root in source
// order. root must report HasError.
func syntaxError(root *ts.Node, src []byte) *ParseError {
	n := firstBroken(root)
	if n == nil {
		n = root
	}

	pos := n.StartPosition()
	perr := &ParseError{Line: int(pos.Row) + 1, Column: int(pos.Column) + 1}

	switch {
	case n.IsMissing():
		perr.Message = "missing " + strconv.Quote(n.Kind())
	case n.StartByte() >= uint(len(src)):
		perr.Message = "unexpected end of input"
	default:
		perr.Message = "unexpected " + strconv.Quote(snippet(n.Utf8Text(src)))
	}
	return perr
}

func firstBroken(n *ts.Node) *ts.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if found := firstBroken(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

func snippet(s string) string {
	for i, r := range s {
		if r == '\n' || r == '\r' {
			s = s[:i]
			break
		}
	}
	if len(s) > maxSnippet {
		s = s[:maxSnippet] + "…"
	}
	return s
}
