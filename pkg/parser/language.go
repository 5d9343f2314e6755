package parser

import (
	"path/filepath"
	"strings"
)

// Language selects the tree-sitter grammar used to parse a module.
type Language int

const (
	// LanguageJavaScript covers .js, .mjs, .cjs and .jsx sources.
	LanguageJavaScript Language = iota
	// LanguageTypeScript covers .ts, .mts and .cts sources.
	LanguageTypeScript
	// LanguageTSX is TypeScript with JSX enabled.
	LanguageTSX
	// LanguageUnknown is returned for unrecognized inputs.
	LanguageUnknown
)

// String returns the canonical name of the language.
func (l Language) String() string {
	switch l {
	case LanguageJavaScript:
		return "javascript"
	case LanguageTypeScript:
		return "typescript"
	case LanguageTSX:
		return "tsx"
	default:
		return "unknown"
	}
}

// DetectLanguage infers the grammar from a file extension.
func DetectLanguage(filePath string) Language {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".js", ".jsx", ".mjs", ".cjs":
		return LanguageJavaScript
	case ".ts", ".mts", ".cts":
		return LanguageTypeScript
	case ".tsx":
		return LanguageTSX
	default:
		return LanguageUnknown
	}
}

// ParseLanguageString converts a user-supplied name to a Language. The empty
// string maps to JavaScript.
func ParseLanguageString(lang string) Language {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "javascript", "js", "jsx":
		return LanguageJavaScript
	case "typescript", "ts":
		return LanguageTypeScript
	case "tsx":
		return LanguageTSX
	default:
		return LanguageUnknown
	}
}

// SupportedLanguages returns every parseable language.
func SupportedLanguages() []Language {
	return []Language{LanguageJavaScript, LanguageTypeScript, LanguageTSX}
}
