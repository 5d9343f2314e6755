package util

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSourceReaderOpen(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.js", `import a from "a";`)

	r := NewSourceReader(nil)
	src, err := r.Open(path)
	require.NoError(t, err)

	assert.Equal(t, `import a from "a";`, string(src.Data))
	assert.Equal(t, path, src.Path)
	assert.True(t, src.Mapped())

	require.NoError(t, src.Close())
	assert.Nil(t, src.Data)
	assert.NoError(t, src.Close(), "second close is a no-op")

	stats := r.Stats()
	assert.Equal(t, int64(1), stats.FilesOpened)
	assert.Equal(t, int64(len(`import a from "a";`)), stats.BytesRead)
	assert.Equal(t, int64(0), stats.MmapFailures)
}

func TestSourceReaderEmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.js", "")

	src, err := NewSourceReader(nil).Open(path)
	require.NoError(t, err)
	defer src.Close()

	assert.Empty(t, src.Data)
	assert.False(t, src.Mapped())
}

func TestSourceReaderErrors(t *testing.T) {
	dir := t.TempDir()
	r := NewSourceReader(nil)

	_, err := r.Open(filepath.Join(dir, "missing.js"))
	assert.Error(t, err)

	_, err = r.Open(dir)
	assert.Error(t, err)
}

func TestSourceReaderReadAll(t *testing.T) {
	path := writeFile(t, t.TempDir(), "b.ts", "export const b = 1;\n")

	data, err := NewSourceReader(nil).ReadAll(path)
	require.NoError(t, err)
	assert.Equal(t, "export const b = 1;\n", string(data))
}

func TestGetOptimalPoolSize(t *testing.T) {
	size := GetOptimalPoolSize()
	assert.GreaterOrEqual(t, size, 4)
	assert.LessOrEqual(t, size, 32)

	assert.Equal(t, 7, GetOptimalPoolSizeWithOverride(7))
	assert.Equal(t, size, GetOptimalPoolSizeWithOverride(0))
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LevelWarn, Format: FormatText, Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown", "file", "a.js")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "file=a.js")
}

func TestParseLogLevel(t *testing.T) {
	lvl, err := ParseLogLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, lvl)

	_, err = ParseLogLevel("chatty")
	assert.Error(t, err)
}
