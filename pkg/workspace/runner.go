package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/esmshift/pkg/parser"
	"github.com/gnana997/esmshift/pkg/transform"
)

// Runner converts directory trees in parallel.
//
// A run has two phases: discovery walks Root and filters paths through the
// scan patterns, then a WorkerPool converts the files while a single
// collector goroutine aggregates reports. Per-file failures are recorded in
// RunStats.Errors and never abort the run.
type Runner struct {
	converter *Converter
	logger    *slog.Logger
}

// NewRunner creates a runner that converts through c.
func NewRunner(c *Converter, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{converter: c, logger: logger}
}

// Converter returns the converter shared by runs and watchers.
func (r *Runner) Converter() *Converter {
	return r.converter
}

// Run converts every matching file under opts.Root. A cancelled ctx stops
// the run early; the partial stats are returned with ctx's error.
func (r *Runner) Run(ctx context.Context, opts RunOptions, progress ProgressCallback) (*RunStats, error) {
	start := time.Now()

	opts, err := resolvePaths(opts)
	if err != nil {
		return nil, err
	}

	r.logger.Info("starting conversion", "root", opts.Root, "target", opts.Transform.Target.String())

	files, err := r.discover(opts)
	if err != nil {
		return nil, fmt.Errorf("file discovery failed: %w", err)
	}

	stats := &RunStats{FilesDiscovered: len(files)}
	if len(files) == 0 {
		r.logger.Warn("no files found matching criteria", "root", opts.Root)
		stats.Duration = time.Since(start)
		return stats, nil
	}

	pool := NewWorkerPool(ctx, opts.Workers, func(ctx context.Context, job Job) (FileReport, error) {
		return r.convertJob(ctx, opts, job)
	}, r.logger)
	stats.WorkerCount = pool.numWorkers
	pool.Start()

	// The collector drains both channels until Stop closes them, so workers
	// never block on a full result channel.
	done := make(chan struct{})
	go func() {
		defer close(done)
		results, errs := pool.Results(), pool.Errors()
		finished := 0
		for results != nil || errs != nil {
			select {
			case rep, ok := <-results:
				if !ok {
					results = nil
					continue
				}
				stats.add(rep)
				finished++
				if progress != nil {
					progress(finished, len(files), rep.Rel)
				}

			case fileErr, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				stats.Errors = append(stats.Errors, fileErr)
				stats.FilesFailed++
				finished++
				r.logger.Warn("file conversion failed", "file", fileErr.Rel, "error", fileErr.Error)
				if progress != nil {
					progress(finished, len(files), fileErr.Rel)
				}
			}
		}
	}()

	for i, file := range files {
		rel, _ := filepath.Rel(opts.Root, file)
		if err := pool.Submit(Job{Path: file, Rel: filepath.ToSlash(rel), JobID: i}); err != nil {
			break
		}
	}
	pool.Stop()
	<-done

	sort.Slice(stats.Files, func(i, j int) bool { return stats.Files[i].Rel < stats.Files[j].Rel })
	sort.Slice(stats.Errors, func(i, j int) bool { return stats.Errors[i].Rel < stats.Errors[j].Rel })
	stats.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		stats.Cancelled = true
		return stats, err
	}

	r.logger.Info("conversion complete",
		"files_converted", stats.FilesConverted,
		"files_unchanged", stats.FilesUnchanged,
		"files_failed", stats.FilesFailed,
		"cache_hits", stats.CacheHits,
		"duration_ms", stats.Duration.Milliseconds())

	return stats, nil
}

// ConvertOne converts a single file under opts.Root, writing output the same
// way Run does.
func (r *Runner) ConvertOne(ctx context.Context, opts RunOptions, path string) (FileReport, error) {
	opts, err := resolvePaths(opts)
	if err != nil {
		return FileReport{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return FileReport{}, err
	}
	rel, err := filepath.Rel(opts.Root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return FileReport{}, fmt.Errorf("%s is outside %s", path, opts.Root)
	}
	return r.convertJob(ctx, opts, Job{Path: abs, Rel: filepath.ToSlash(rel)})
}

func (r *Runner) convertJob(ctx context.Context, opts RunOptions, job Job) (FileReport, error) {
	if err := ctx.Err(); err != nil {
		return FileReport{}, err
	}

	res, cached, err := r.converter.ConvertFile(job.Path, opts.Transform, opts.ForceLanguage, opts.Verify)
	if err != nil {
		return FileReport{}, err
	}

	rep := FileReport{
		Path:             job.Path,
		Rel:              job.Rel,
		Changed:          res.Changed(),
		Cached:           cached,
		ImportsRewritten: res.ImportsRewritten,
		ImportsSkipped:   res.ImportsSkipped,
		ExportsExpanded:  res.ExportsExpanded,
		ExportsSkipped:   res.ExportsSkipped,
		Skipped:          res.Skipped,
	}

	dest, err := writeOutput(opts, job, res)
	if err != nil {
		return FileReport{}, err
	}
	rep.Output = dest

	r.logger.Debug("converted file", "file", job.Rel, "changed", rep.Changed, "cached", cached, "output", dest)
	return rep, nil
}

// writeOutput stores res according to opts and returns the path written.
// In-place mode leaves unchanged files untouched.
func writeOutput(opts RunOptions, job Job, res *transform.Result) (string, error) {
	var dest string
	switch {
	case opts.Write:
		if !res.Changed() {
			return "", nil
		}
		dest = job.Path
	case opts.OutDir != "":
		dest = filepath.Join(opts.OutDir, filepath.FromSlash(job.Rel))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	default:
		return "", nil
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(job.Path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(dest, []byte(res.Code), mode); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return dest, nil
}

func resolvePaths(opts RunOptions) (RunOptions, error) {
	if opts.Root == "" {
		return opts, errors.New("root directory is required")
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return opts, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return opts, fmt.Errorf("failed to stat root: %w", err)
	}
	if !info.IsDir() {
		return opts, fmt.Errorf("%s is not a directory", opts.Root)
	}
	opts.Root = root

	if opts.OutDir != "" && !opts.Write {
		out, err := filepath.Abs(opts.OutDir)
		if err != nil {
			return opts, err
		}
		if out == root {
			return opts, errors.New("output directory must differ from the root; use in-place mode instead")
		}
		opts.OutDir = out
	}
	return opts, nil
}

// excludes returns the scan excludes plus the output directory when it lies
// inside the root.
func excludes(opts RunOptions) []string {
	out := append([]string(nil), opts.Scan.Exclude...)
	if opts.OutDir == "" || opts.Write {
		return out
	}
	rel, err := filepath.Rel(opts.Root, opts.OutDir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return out
	}
	rel = filepath.ToSlash(rel)
	return append(out, rel, rel+"/**")
}

func (r *Runner) discover(opts RunOptions) ([]string, error) {
	return Discover(opts.Root, ScanOptions{Include: opts.Scan.Include, Exclude: excludes(opts)}, !opts.ForceLanguage, r.logger)
}

// Discover walks root and returns the files selected by scan, in lexical
// order. With knownOnly set, files whose extension maps to no grammar are
// dropped.
func Discover(root string, scan ScanOptions, knownOnly bool, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, pattern := range scan.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range scan.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("walk error", "path", path, "error", err)
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if matchAny(scan.Exclude, rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if len(scan.Include) > 0 && !matchAny(scan.Include, rel) {
			return nil
		}
		if knownOnly && parser.DetectLanguage(path) == parser.LanguageUnknown {
			logger.Debug("skipping file with unknown extension", "file", rel)
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if m, _ := doublestar.Match(pattern, rel); m {
			return true
		}
	}
	return false
}
