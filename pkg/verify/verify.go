// Package verify re-parses generated code with esbuild to confirm it is
// syntactically valid, and normalizes code for formatting-insensitive
// comparison.
package verify

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/gnana997/esmshift/pkg/parser"
)

// Error lists the diagnostics esbuild reported for a piece of code.
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	switch len(e.Messages) {
	case 0:
		return "verify: invalid output"
	case 1:
		return "verify: " + e.Messages[0]
	default:
		return fmt.Sprintf("verify: %s (and %d more)", e.Messages[0], len(e.Messages)-1)
	}
}

// Options selects how code is parsed.
type Options struct {
	Language parser.Language

	// Module parses the code as an ES module, which permits top-level
	// await. Output of the dynamic-import target needs it.
	Module bool
}

// Check returns an *Error when code does not parse.
func Check(code string, opts Options) error {
	res := api.Transform(code, transformOptions(opts))
	if len(res.Errors) > 0 {
		return &Error{Messages: formatMessages(res.Errors)}
	}
	return nil
}

// Normalize reprints code in esbuild's canonical style, dropping comments
// and formatting differences.
func Normalize(code string, opts Options) (string, error) {
	res := api.Transform(code, transformOptions(opts))
	if len(res.Errors) > 0 {
		return "", &Error{Messages: formatMessages(res.Errors)}
	}
	return string(res.Code), nil
}

func transformOptions(opts Options) api.TransformOptions {
	to := api.TransformOptions{
		Loader:     loaderFor(opts.Language),
		Sourcefile: "<output>",
		LogLevel:   api.LogLevelSilent,
	}
	if opts.Module {
		to.Format = api.FormatESModule
	}
	return to
}

func loaderFor(lang parser.Language) api.Loader {
	switch lang {
	case parser.LanguageTypeScript:
		return api.LoaderTS
	case parser.LanguageTSX:
		return api.LoaderTSX
	default:
		return api.LoaderJS
	}
}

func formatMessages(msgs []api.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		text := strings.TrimSpace(m.Text)
		if m.Location != nil {
			text = fmt.Sprintf("%d:%d: %s", m.Location.Line, m.Location.Column+1, text)
		}
		out = append(out, text)
	}
	return out
}
