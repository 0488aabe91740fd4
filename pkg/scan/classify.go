// Package scan discovers the source files that are eligible for line counting.
package scan

import (
	"io"
	"os"
	"strings"

	"github.com/src-d/enry/v2"
)

// WorkItem is a single file scheduled for counting. The extension is
// normalized to lowercase with a leading dot.
type WorkItem struct {
	Path string `json:"path"`
	Ext  string `json:"ext"`
}

const (
	// DefaultMaxFileSize is the ceiling above which a file is assumed to be
	// generated or binary data and skipped.
	DefaultMaxFileSize = 50 * 1024 * 1024

	// DefaultSniffThreshold is the size above which a content sample is
	// inspected for binary data before counting.
	DefaultSniffThreshold = 10 * 1024

	// sniffSampleSize is the number of leading bytes inspected by the
	// binary heuristic.
	sniffSampleSize = 512

	// asciiRatioFloor is the minimum fraction of ASCII bytes in the sample
	// for a file to pass as text.
	asciiRatioFloor = 0.8
)

// Options configures a Classifier. Zero-value slices fall back to the
// defaults matching the stock configuration.
type Options struct {
	Extensions     []string
	SkipDirs       []string
	MaxFileSize    int64
	SniffThreshold int64
}

// Classifier decides which files take part in a count. Directory names are
// matched against a denylist, file extensions against an allow-list, and
// medium-sized files are additionally sampled for binary content.
type Classifier struct {
	allow          map[string]struct{}
	deny           map[string]struct{}
	maxFileSize    int64
	sniffThreshold int64
}

// NewClassifier creates a Classifier from the given options.
func NewClassifier(opts Options) *Classifier {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions()
	}

	dirs := opts.SkipDirs
	if len(dirs) == 0 {
		dirs = DefaultSkipDirs()
	}

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	sniff := opts.SniffThreshold
	if sniff <= 0 {
		sniff = DefaultSniffThreshold
	}

	c := &Classifier{
		allow:          make(map[string]struct{}, len(exts)),
		deny:           make(map[string]struct{}, len(dirs)),
		maxFileSize:    maxSize,
		sniffThreshold: sniff,
	}

	for _, ext := range exts {
		c.allow[normalizeExt(ext)] = struct{}{}
	}

	for _, dir := range dirs {
		c.deny[dir] = struct{}{}
	}

	return c
}

// SkipDir reports whether a directory with the given base name must not be
// descended into.
func (c *Classifier) SkipDir(name string) bool {
	_, skip := c.deny[name]

	return skip
}

// Classify decides whether the file at path with the given base name and
// size takes part in the count. On inclusion it returns the normalized
// extension. Unreadable files are excluded, never reported as errors.
func (c *Classifier) Classify(path, name string, size int64) (string, bool) {
	ext, ok := extOf(name)
	if !ok {
		return "", false
	}

	if _, ok := c.allow[ext]; !ok {
		return "", false
	}

	if size == 0 || size > c.maxFileSize {
		return "", false
	}

	if size > c.sniffThreshold && !c.sampleIsText(path) {
		return "", false
	}

	return ext, true
}

// sampleIsText reads a small leading sample of the file and applies the
// binary heuristic: a NUL byte or a low ASCII ratio marks the file binary.
// The heuristic is approximate and may reject multi-byte-heavy UTF-8 text.
func (c *Classifier) sampleIsText(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	sample := make([]byte, sniffSampleSize)

	n, err := io.ReadFull(f, sample)
	if err != nil && n == 0 {
		return false
	}

	sample = sample[:n]

	if enry.IsBinary(sample) {
		return false
	}

	ascii := 0

	for _, b := range sample {
		if b < 0x80 {
			ascii++
		}
	}

	return float64(ascii)/float64(len(sample)) > asciiRatioFloor
}

// extOf extracts the lowercase dot-prefixed extension from a base name.
// Names without a dot, or with nothing after the last dot, have none.
func extOf(name string) (string, bool) {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 || idx == len(name)-1 {
		return "", false
	}

	return strings.ToLower(name[idx:]), true
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}

	return ext
}
