// Package tally counts non-empty source lines and aggregates the results
// across batches of files.
package tally

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/Sumatoshi-tech/locfang/pkg/scan"
)

// mmapThreshold is the file size above which counting switches to a
// memory-mapped byte scan where the platform supports it.
const mmapThreshold = 64 * 1024

// CountBytes returns the number of non-blank lines in data. Lines are
// separated by the single '\n' byte; a line counts when it contains at
// least one non-whitespace byte. The final line counts even without a
// trailing terminator.
func CountBytes(data []byte) int64 {
	var lines int64

	for len(data) > 0 {
		var seg []byte

		nl := bytes.IndexByte(data, '\n')
		if nl < 0 {
			seg, data = data, nil
		} else {
			seg, data = data[:nl], data[nl+1:]
		}

		if hasInk(seg) {
			lines++
		}
	}

	return lines
}

// hasInk reports whether seg contains a byte that survives whitespace
// trimming. '\r' is treated as whitespace so CRLF text counts like LF text.
func hasInk(seg []byte) bool {
	for _, b := range seg {
		switch b {
		case ' ', '\t', '\r', '\v', '\f':
		default:
			return true
		}
	}

	return false
}

// CountFile returns the number of non-blank lines in the file at path.
// Counting is best-effort: any open, stat or read failure yields 0. Large
// files are memory-mapped and byte-scanned; the result is identical to
// reading the file whole.
func CountFile(path string) int64 {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.Size() == 0 {
		return 0
	}

	if info.Size() >= mmapThreshold {
		if lines, ok := countMapped(f, info.Size()); ok {
			return lines
		}
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return 0
	}

	return CountBytes(data)
}

// CountBatch counts every item in the batch and folds the results into one
// Partial. Files that fail to read or hold no countable lines contribute
// nothing. A cancelled context stops the batch early.
func CountBatch(ctx context.Context, items []scan.WorkItem) Partial {
	partial := NewPartial()

	for _, item := range items {
		if ctx.Err() != nil {
			break
		}

		partial.AddFile(item.Ext, CountFile(item.Path))
	}

	return partial
}
