// Package parser owns the tree-sitter grammars and a pool of parsers per
// grammar, shared by every conversion in the process.
package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// ParserManager hands out pooled tree-sitter parsers per language.
//
// Pools are created lazily on first use. The manager owns the pools and must
// be closed with Close; callers own the returned trees and must close them.
// ParserManager is safe for concurrent use.
//
// Example:
//
//	manager := NewParserManager(logger)
//	defer manager.Close()
//
//	tree, err := manager.Parse([]byte(`import a from "a";`), LanguageJavaScript)
//	if err != nil {
//	    return err
//	}
//	defer tree.Close()
type ParserManager struct {
	pools    map[Language]*parserPool
	poolSize int
	mutex    sync.RWMutex
	logger   *slog.Logger

	stats struct {
		parsesCalled int
		parsesFailed int
	}
}

// NewParserManager creates a manager whose pools hold up to
// util.GetOptimalPoolSize() parsers each.
func NewParserManager(logger *slog.Logger) *ParserManager {
	return NewParserManagerWithPoolSize(0, logger)
}

// NewParserManagerWithPoolSize creates a manager with a fixed pool size. A
// size of 0 selects the CPU-based default.
func NewParserManagerWithPoolSize(size int, logger *slog.Logger) *ParserManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &ParserManager{
		pools:    make(map[Language]*parserPool),
		poolSize: getPoolSize(size),
		logger:   logger,
	}
}

// Parse parses source with the grammar for lang.
//
// Syntax errors do not fail the call: tree-sitter always produces a tree and
// marks the broken regions with ERROR or MISSING nodes, which callers inspect
// through RootNode().HasError(). The returned tree MUST be closed by the
// caller.
func (pm *ParserManager) Parse(source []byte, lang Language) (*ts.Tree, error) {
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("cannot parse unknown language")
	}

	pool, err := pm.getOrCreatePool(lang)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool for %s: %w", lang, err)
	}

	p, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire parser: %w", err)
	}
	tree := p.Parse(source, nil)
	pool.release(p)

	pm.mutex.Lock()
	pm.stats.parsesCalled++
	if tree != nil && tree.RootNode().HasError() {
		pm.stats.parsesFailed++
	}
	pm.mutex.Unlock()

	if tree == nil {
		return nil, fmt.Errorf("parser returned nil tree")
	}

	return tree, nil
}

// ParseFile parses source with the grammar inferred from filePath.
func (pm *ParserManager) ParseFile(source []byte, filePath string) (*ts.Tree, error) {
	lang := DetectLanguage(filePath)
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}
	return pm.Parse(source, lang)
}

// Close releases every pooled parser. The manager cannot be used afterwards.
func (pm *ParserManager) Close() error {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	pm.logger.Debug("closing parser manager",
		"parses_called", pm.stats.parsesCalled,
		"parses_with_errors", pm.stats.parsesFailed)

	for lang, pool := range pm.pools {
		pool.close()
		pm.logger.Debug("closed parser pool", "language", lang.String())
	}
	pm.pools = make(map[Language]*parserPool)

	return nil
}

// getOrCreatePool returns the pool for lang, creating it under the write
// lock if needed (double-checked locking).
func (pm *ParserManager) getOrCreatePool(lang Language) (*parserPool, error) {
	pm.mutex.RLock()
	pool, exists := pm.pools[lang]
	pm.mutex.RUnlock()
	if exists {
		return pool, nil
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if pool, exists = pm.pools[lang]; exists {
		return pool, nil
	}

	langPtr, err := LanguagePointer(lang)
	if err != nil {
		return nil, err
	}

	pool = newParserPool(lang, langPtr, pm.poolSize, pm.logger)
	pm.pools[lang] = pool

	pm.logger.Debug("created parser pool",
		"language", lang.String(),
		"max_size", pm.poolSize)

	return pool, nil
}

// LanguagePointer returns the tree-sitter grammar for lang.
func LanguagePointer(lang Language) (unsafe.Pointer, error) {
	switch lang {
	case LanguageJavaScript:
		return ts_javascript.Language(), nil
	case LanguageTypeScript:
		return ts_typescript.LanguageTypescript(), nil
	case LanguageTSX:
		return ts_typescript.LanguageTSX(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang.String())
	}
}

// GetStats returns parser usage statistics.
func (pm *ParserManager) GetStats() ParserStats {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	created := 0
	for _, pool := range pm.pools {
		created += pool.getCreatedCount()
	}

	return ParserStats{
		ParsersCreated:   created,
		ParsesCalled:     pm.stats.parsesCalled,
		ParsesWithErrors: pm.stats.parsesFailed,
	}
}

// ParserStats contains parser usage statistics.
type ParserStats struct {
	// ParsersCreated is the number of parser instances across all pools.
	ParsersCreated int

	// ParsesCalled is the number of Parse calls that reached a parser.
	ParsesCalled int

	// ParsesWithErrors counts trees that contained syntax errors.
	ParsesWithErrors int
}
