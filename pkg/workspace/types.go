package workspace

import (
	"time"

	"github.com/gnana997/esmshift/pkg/transform"
)

// ScanOptions selects the files a run converts. Patterns use doublestar
// syntax and are matched against slash-separated paths relative to the root.
type ScanOptions struct {
	// Include patterns. Empty means every file with a supported extension.
	Include []string

	// Exclude patterns. A matching directory is skipped entirely.
	Exclude []string
}

// DefaultScanOptions returns the module extensions and the usual dependency
// and build directories.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		Include: []string{
			"**/*.js",
			"**/*.mjs",
			"**/*.jsx",
			"**/*.ts",
			"**/*.mts",
			"**/*.tsx",
		},
		Exclude: []string{
			"node_modules/**",
			".git/**",
			"dist/**",
			"build/**",
			"coverage/**",
			"out/**",
			".next/**",
			"**/*.d.ts",
		},
	}
}

// RunOptions configures a batch conversion.
type RunOptions struct {
	// Root is the directory to convert.
	Root string

	// OutDir receives converted files, mirroring the layout under Root.
	// Ignored when Write is set.
	OutDir string

	// Write replaces changed files in place.
	Write bool

	Scan ScanOptions

	// Transform is applied to every file. Language is ignored unless
	// ForceLanguage is set; otherwise it is inferred from the extension.
	Transform     transform.Options
	ForceLanguage bool

	// Verify re-parses every converted file with esbuild.
	Verify bool

	// Workers is the worker count; 0 selects util.GetOptimalPoolSize().
	Workers int
}

// FileReport summarizes the conversion of one file.
type FileReport struct {
	Path             string
	Rel              string
	Output           string // destination written, empty when nothing was written
	Changed          bool
	Cached           bool
	ImportsRewritten int
	ImportsSkipped   int
	ExportsExpanded  int
	ExportsSkipped   int
	Skipped          []transform.Skip
}

// FileError is a per-file failure. The run continues past it.
type FileError struct {
	Path  string
	Rel   string
	Error error
}

// RunStats is the outcome of a batch conversion.
type RunStats struct {
	FilesDiscovered int
	FilesConverted  int // files with at least one rewrite
	FilesUnchanged  int
	FilesFailed     int
	CacheHits       int

	ImportsRewritten int
	ImportsSkipped   int
	ExportsExpanded  int
	ExportsSkipped   int

	WorkerCount int
	Duration    time.Duration
	Cancelled   bool

	Files  []FileReport
	Errors []FileError
}

// ProgressCallback is invoked once per finished file, from a single
// goroutine.
type ProgressCallback func(done, total int, path string)

func (s *RunStats) add(r FileReport) {
	s.Files = append(s.Files, r)
	if r.Changed {
		s.FilesConverted++
	} else {
		s.FilesUnchanged++
	}
	if r.Cached {
		s.CacheHits++
	}
	s.ImportsRewritten += r.ImportsRewritten
	s.ImportsSkipped += r.ImportsSkipped
	s.ExportsExpanded += r.ExportsExpanded
	s.ExportsSkipped += r.ExportsSkipped
}
