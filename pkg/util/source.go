package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/edsrzf/mmap-go"
)

// Source is the content of one module file. Data is memory-mapped when
// possible and must not be used after Close.
type Source struct {
	Path string
	Data []byte

	mapped mmap.MMap
	file   *os.File
}

// Mapped reports whether Data is backed by a memory mapping rather than a
// heap copy.
func (s *Source) Mapped() bool { return s.mapped != nil }

// Close unmaps the file and releases its descriptor. It is safe to call more
// than once.
func (s *Source) Close() error {
	var err error
	if s.mapped != nil {
		if uerr := s.mapped.Unmap(); uerr != nil {
			err = fmt.Errorf("unmap %q: %w", s.Path, uerr)
		}
		s.mapped = nil
	}
	if s.file != nil {
		if cerr := s.file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %q: %w", s.Path, cerr)
		}
		s.file = nil
	}
	s.Data = nil
	return err
}

// SourceReader opens module files for conversion. Files are mapped read-only
// and fall back to os.ReadFile when mapping fails. It is safe for concurrent
// use.
type SourceReader struct {
	logger *slog.Logger

	opened       atomic.Int64
	mmapFailures atomic.Int64
	bytesRead    atomic.Int64
}

// SourceReaderStats reports cumulative reader activity.
type SourceReaderStats struct {
	FilesOpened  int64
	MmapFailures int64
	BytesRead    int64
}

// NewSourceReader creates a reader. A nil logger uses slog.Default().
func NewSourceReader(logger *slog.Logger) *SourceReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceReader{logger: logger}
}

// Open returns the content of filePath. The caller must Close the result.
func (r *SourceReader) Open(filePath string) (*Source, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", filePath, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file %q: %w", filePath, err)
	}
	if stat.IsDir() {
		file.Close()
		return nil, fmt.Errorf("%q is a directory", filePath)
	}

	r.opened.Add(1)
	r.bytesRead.Add(stat.Size())

	// Zero-length files cannot be mapped.
	if stat.Size() == 0 {
		file.Close()
		return &Source{Path: filePath, Data: []byte{}}, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		r.mmapFailures.Add(1)
		r.logger.Warn("mmap failed, using fallback", "file", filePath, "size", stat.Size(), "error", err)
		file.Close()

		content, readErr := os.ReadFile(filePath)
		if readErr != nil {
			return nil, fmt.Errorf("mmap failed and fallback failed for %q: mmap error: %v, read error: %w",
				filePath, err, readErr)
		}
		return &Source{Path: filePath, Data: content}, nil
	}

	return &Source{Path: filePath, Data: data, mapped: data, file: file}, nil
}

// ReadAll returns a heap copy of filePath's content.
func (r *SourceReader) ReadAll(filePath string) ([]byte, error) {
	src, err := r.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return append([]byte(nil), src.Data...), nil
}

// Stats returns cumulative counters.
func (r *SourceReader) Stats() SourceReaderStats {
	return SourceReaderStats{
		FilesOpened:  r.opened.Load(),
		MmapFailures: r.mmapFailures.Load(),
		BytesRead:    r.bytesRead.Load(),
	}
}
