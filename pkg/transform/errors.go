package transform

import (
	"errors"
	"fmt"
)

// ErrNotImplemented is wrapped by errors for module syntax the rewriter
// recognizes but does not convert.
var ErrNotImplemented = errors.New("not implemented")

// UnsupportedExportError is returned in strict mode for an export declaration
// that would otherwise be left unconverted.
type UnsupportedExportError struct {
	Line   int
	Kind   string
	Reason string
}

func (e *UnsupportedExportError) Error() string {
	return fmt.Sprintf("line %d: %s: %s: %v", e.Line, e.Kind, e.Reason, ErrNotImplemented)
}

func (e *UnsupportedExportError) Unwrap() error {
	return ErrNotImplemented
}
