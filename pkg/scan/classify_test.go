package scan_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/locfang/pkg/scan"
)

func TestClassifyByExtension(t *testing.T) {
	t.Parallel()

	classifier := scan.NewClassifier(scan.Options{})

	tests := []struct {
		name    string
		file    string
		size    int64
		wantExt string
		wantOK  bool
	}{
		{name: "go source", file: "main.go", size: 100, wantExt: ".go", wantOK: true},
		{name: "uppercase extension", file: "LEGACY.SQL", size: 100, wantExt: ".sql", wantOK: true},
		{name: "no extension", file: "Makefile", size: 100, wantOK: false},
		{name: "trailing dot", file: "odd.", size: 100, wantOK: false},
		{name: "unknown extension", file: "photo.png", size: 100, wantOK: false},
		{name: "empty file", file: "empty.go", size: 0, wantOK: false},
		{name: "oversized file", file: "huge.go", size: 200 * 1024 * 1024, wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ext, ok := classifier.Classify(filepath.Join("any", tc.file), tc.file, tc.size)

			require.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantExt, ext)
		})
	}
}

func TestClassifyCustomAllowList(t *testing.T) {
	t.Parallel()

	classifier := scan.NewClassifier(scan.Options{Extensions: []string{"go", ".RS"}})

	_, ok := classifier.Classify("a/main.go", "main.go", 10)
	assert.True(t, ok, "bare extension names are normalized")

	_, ok = classifier.Classify("a/lib.rs", "lib.rs", 10)
	assert.True(t, ok, "allow-list entries are case-insensitive")

	_, ok = classifier.Classify("a/app.py", "app.py", 10)
	assert.False(t, ok)
}

func TestSkipDir(t *testing.T) {
	t.Parallel()

	classifier := scan.NewClassifier(scan.Options{})

	assert.True(t, classifier.SkipDir(".git"))
	assert.True(t, classifier.SkipDir("node_modules"))
	assert.False(t, classifier.SkipDir("src"))

	custom := scan.NewClassifier(scan.Options{SkipDirs: []string{"generated"}})
	assert.True(t, custom.SkipDir("generated"))
	assert.False(t, custom.SkipDir(".git"), "custom denylist replaces the default")
}

func TestClassifyBinarySniff(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	classifier := scan.NewClassifier(scan.Options{SniffThreshold: 1024})

	textPath := filepath.Join(dir, "text.go")
	require.NoError(t, os.WriteFile(textPath, bytes.Repeat([]byte("plain ascii line\n"), 200), 0o644))

	nulPath := filepath.Join(dir, "nul.go")
	nulData := append([]byte("start\x00"), bytes.Repeat([]byte("x"), 4096)...)
	require.NoError(t, os.WriteFile(nulPath, nulData, 0o644))

	highPath := filepath.Join(dir, "high.go")
	require.NoError(t, os.WriteFile(highPath, bytes.Repeat([]byte{0xfe, 0xff}, 2048), 0o644))

	size := int64(3000)

	_, ok := classifier.Classify(textPath, "text.go", size)
	assert.True(t, ok, "ascii text passes the sniff")

	_, ok = classifier.Classify(nulPath, "nul.go", size)
	assert.False(t, ok, "NUL byte marks the file binary")

	_, ok = classifier.Classify(highPath, "high.go", size)
	assert.False(t, ok, "low ascii ratio marks the file binary")

	_, ok = classifier.Classify(filepath.Join(dir, "gone.go"), "gone.go", size)
	assert.False(t, ok, "unreadable files are excluded, not errors")

	small := filepath.Join(dir, "small.go")
	require.NoError(t, os.WriteFile(small, []byte("tiny\n"), 0o644))

	_, ok = classifier.Classify(small, "small.go", 5)
	assert.True(t, ok, "files under the threshold are not sniffed")
}
