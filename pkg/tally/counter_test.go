package tally_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/locfang/pkg/scan"
	"github.com/Sumatoshi-tech/locfang/pkg/tally"
)

func TestCountBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{name: "empty", input: "", want: 0},
		{name: "single terminated line", input: "a\n", want: 1},
		{name: "blank line between", input: "a\n\nb\n", want: 2},
		{name: "no trailing terminator", input: "a\nb", want: 2},
		{name: "whitespace only lines", input: " \n\t\n  \t \n", want: 0},
		{name: "crlf counts like lf", input: "a\r\nb\r\n", want: 2},
		{name: "bare cr is trailing whitespace", input: "a\r\n\r\n", want: 1},
		{name: "padded line counts", input: "  x  \n", want: 1},
		{name: "lone newline", input: "\n", want: 0},
		{name: "unterminated whitespace tail", input: "a\n   ", want: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tally.CountBytes([]byte(tc.input)))
		})
	}
}

func TestCountFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "sample.go")
	require.NoError(t, os.WriteFile(path, []byte("a\n\nb\n"), 0o644))

	assert.Equal(t, int64(2), tally.CountFile(path))
}

func TestCountFileBestEffort(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	assert.Zero(t, tally.CountFile(filepath.Join(dir, "missing.go")), "missing file counts as zero")
	assert.Zero(t, tally.CountFile(dir), "directory counts as zero")

	empty := filepath.Join(dir, "empty.go")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	assert.Zero(t, tally.CountFile(empty))
}

func TestCountFileLargeMatchesByteCount(t *testing.T) {
	t.Parallel()

	// Above the mapping threshold so the mmap path is exercised on unix.
	chunk := "first line\n\n  \nsecond line\nlast without terminator"
	content := strings.Repeat("padding line\n\n", 4096) + chunk

	dir := t.TempDir()
	path := filepath.Join(dir, "large.go")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	require.Greater(t, len(content), 64*1024)
	assert.Equal(t, tally.CountBytes([]byte(content)), tally.CountFile(path))
}

func TestCountBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	first := filepath.Join(dir, "a.go")
	require.NoError(t, os.WriteFile(first, []byte("x\ny\n"), 0o644))

	second := filepath.Join(dir, "b.py")
	require.NoError(t, os.WriteFile(second, []byte("z\n"), 0o644))

	items := []scan.WorkItem{
		{Path: first, Ext: ".go"},
		{Path: second, Ext: ".py"},
		{Path: filepath.Join(dir, "gone.rs"), Ext: ".rs"},
	}

	partial := tally.CountBatch(context.Background(), items)

	assert.Equal(t, int64(3), partial.Lines)
	assert.Equal(t, int64(2), partial.LinesByExt[".go"])
	assert.Equal(t, int64(1), partial.LinesByExt[".py"])
	assert.Equal(t, int64(1), partial.FilesByExt[".go"])
	assert.NotContains(t, partial.FilesByExt, ".rs", "unreadable files contribute nothing")
}
