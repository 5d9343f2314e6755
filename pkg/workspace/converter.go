package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/esmshift/pkg/parser"
	"github.com/gnana997/esmshift/pkg/transform"
	"github.com/gnana997/esmshift/pkg/util"
	"github.com/gnana997/esmshift/pkg/verify"
)

// DefaultCacheSize is the number of conversion results a Converter keeps.
const DefaultCacheSize = 1000

// Converter converts files and memoizes results by content hash and
// options, so unchanged files seen again by the watcher are not re-parsed.
// It is safe for concurrent use.
type Converter struct {
	transformer *transform.Transformer
	reader      *util.SourceReader
	cache       *lru.Cache[string, *transform.Result]
	logger      *slog.Logger

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// ConverterStats reports cache effectiveness.
type ConverterStats struct {
	CacheHits    int64
	CacheMisses  int64
	Evictions    int64
	CachedFiles  int
	CacheHitRate float64
	Reader       util.SourceReaderStats
}

// NewConverter creates a converter with room for cacheSize results;
// 0 selects DefaultCacheSize.
func NewConverter(tr *transform.Transformer, cacheSize int, logger *slog.Logger) (*Converter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}

	c := &Converter{
		transformer: tr,
		reader:      util.NewSourceReader(logger),
		logger:      logger,
	}
	cache, err := lru.NewWithEvict(cacheSize, func(key string, _ *transform.Result) {
		c.evictions.Add(1)
		c.logger.Debug("evicted cached conversion", "key", key[:12])
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}
	c.cache = cache
	return c, nil
}

// ConvertFile reads and converts path. Unless force is set the language is
// taken from the file extension.
func (c *Converter) ConvertFile(path string, opts transform.Options, force, check bool) (*transform.Result, bool, error) {
	if !force {
		lang := parser.DetectLanguage(path)
		if lang == parser.LanguageUnknown {
			return nil, false, fmt.Errorf("unsupported file extension: %s", path)
		}
		opts.Language = lang
	}

	src, err := c.reader.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer src.Close()

	return c.Convert(src.Data, opts, check)
}

// Convert converts src. The bool result reports a cache hit. Results are
// shared between callers and must not be modified.
func (c *Converter) Convert(src []byte, opts transform.Options, check bool) (*transform.Result, bool, error) {
	key := cacheKey(src, opts, check)
	if res, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return res, true, nil
	}
	c.misses.Add(1)

	res, err := c.transformer.Transform(src, opts)
	if err != nil {
		return nil, false, err
	}
	if check {
		vopts := verify.Options{Language: opts.Language, Module: opts.Target == transform.TargetDynamicImport}
		if err := verify.Check(res.Code, vopts); err != nil {
			return nil, false, err
		}
	}

	c.cache.Add(key, res)
	return res, false, nil
}

// Forget drops every cached result.
func (c *Converter) Forget() {
	c.cache.Purge()
}

// Stats returns cache and reader counters.
func (c *Converter) Stats() ConverterStats {
	hits, misses := c.hits.Load(), c.misses.Load()
	stats := ConverterStats{
		CacheHits:   hits,
		CacheMisses: misses,
		Evictions:   c.evictions.Load(),
		CachedFiles: c.cache.Len(),
		Reader:      c.reader.Stats(),
	}
	if total := hits + misses; total > 0 {
		stats.CacheHitRate = float64(hits) / float64(total)
	}
	return stats
}

func cacheKey(src []byte, opts transform.Options, check bool) string {
	h := sha256.New()
	h.Write(src)
	fmt.Fprintf(h, "\x00%d|%d|%s|%t|%t", opts.Target, opts.Language, opts.SourceType, opts.Strict, check)
	return hex.EncodeToString(h.Sum(nil))
}
