package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gnana997/esmshift/pkg/jsparse"
)

// version is set via ldflags during release builds.
var version = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdin, stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "esmshift: %v\n", err)
		return 1
	}
	return 0
}

// sourceError attaches the input name to a conversion failure. Parse errors
// print as <file>:<line>:<col>: <message>.
type sourceError struct {
	Path string
	Err  error
}

func (e *sourceError) Error() string {
	var perr *jsparse.ParseError
	if errors.As(e.Err, &perr) {
		return fmt.Sprintf("%s:%d:%d: %s", e.Path, perr.Line, perr.Column, perr.Message)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *sourceError) Unwrap() error {
	return e.Err
}
