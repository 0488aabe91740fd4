//go:build !unix

package tally

import "os"

// countMapped is unavailable on this platform; the caller falls back to a
// plain read.
func countMapped(_ *os.File, _ int64) (int64, bool) {
	return 0, false
}
