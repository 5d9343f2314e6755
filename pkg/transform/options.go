package transform

import (
	"fmt"
	"strings"

	"github.com/gnana997/esmshift/pkg/jsparse"
	"github.com/gnana997/esmshift/pkg/parser"
)

// Target selects the module-loading form imports are rewritten to.
type Target int

const (
	// TargetCommonJS rewrites imports to require calls and expands the
	// first export into module.exports assignments.
	TargetCommonJS Target = iota
	// TargetDynamicImport rewrites imports to awaited import() calls and
	// leaves exports alone.
	TargetDynamicImport
)

func (t Target) String() string {
	switch t {
	case TargetCommonJS:
		return "require"
	case TargetDynamicImport:
		return "import"
	default:
		return fmt.Sprintf("Target(%d)", int(t))
	}
}

// ParseTarget converts a command-line target name. The empty string selects
// TargetCommonJS.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "require", "cjs", "commonjs":
		return TargetCommonJS, nil
	case "import", "dynamic-import", "dynamic":
		return TargetDynamicImport, nil
	default:
		return TargetCommonJS, fmt.Errorf("unknown target %q (want require or import)", s)
	}
}

// Options controls a single transform. The zero value converts a JavaScript
// module to CommonJS.
type Options struct {
	Target     Target
	Language   parser.Language
	SourceType jsparse.SourceType

	// Strict turns export declarations that cannot be converted into an
	// *UnsupportedExportError instead of leaving them in place.
	Strict bool
}

func (o Options) validate() error {
	switch o.Target {
	case TargetCommonJS, TargetDynamicImport:
	default:
		return fmt.Errorf("invalid target %v", o.Target)
	}
	switch o.Language {
	case parser.LanguageJavaScript, parser.LanguageTypeScript, parser.LanguageTSX:
	default:
		return fmt.Errorf("unsupported language %v", o.Language)
	}
	return nil
}

func (o Options) loader() loader {
	if o.Target == TargetDynamicImport {
		return dynamicImportLoader
	}
	return requireLoader
}
