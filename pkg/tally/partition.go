package tally

import (
	"runtime"

	"github.com/Sumatoshi-tech/locfang/pkg/scan"
)

// Mode selects the concurrency strategy of a run.
type Mode int

const (
	// ModeSerial processes every batch on the calling goroutine.
	ModeSerial Mode = iota

	// ModeThreads fans batches out to a pool of goroutines sharing the
	// address space; only the coordinator merges results.
	ModeThreads

	// ModeProcesses fans batches out to isolated worker subprocesses;
	// results cross the boundary as JSON.
	ModeProcesses
)

// String returns the mode name used in logs and progress output.
func (m Mode) String() string {
	switch m {
	case ModeSerial:
		return "serial"
	case ModeThreads:
		return "threads"
	case ModeProcesses:
		return "processes"
	default:
		return "unknown"
	}
}

const maxThreadWorkers = 32

// DefaultWorkers returns the default pool size for a mode: one for serial,
// twice the CPU count capped at 32 for threads, the CPU count for
// processes.
func DefaultWorkers(m Mode) int {
	cpus := runtime.NumCPU()
	if cpus < 1 {
		cpus = 1
	}

	switch m {
	case ModeThreads:
		return min(maxThreadWorkers, cpus*2)
	case ModeProcesses:
		return cpus
	default:
		return 1
	}
}

const (
	minThreadBatch  = 5
	minProcessBatch = 10

	// Threads get several small batches per worker for load balancing;
	// processes get fewer, larger batches to amortize spawn and
	// serialization overhead.
	threadBatchesPerWorker  = 4
	processBatchesPerWorker = 2
)

// BatchSize computes the batch size for n items across the given worker
// count. The result is always at least 1.
func BatchSize(n, workers int, m Mode) int {
	if workers < 1 {
		workers = 1
	}

	var size int

	switch m {
	case ModeThreads:
		size = max(minThreadBatch, n/(workers*threadBatchesPerWorker))
	case ModeProcesses:
		size = max(minProcessBatch, n/(workers*processBatchesPerWorker))
	default:
		size = n
	}

	return max(1, size)
}

// Partition splits items into contiguous batches sized for the mode and
// worker count. Every item lands in exactly one batch; batches cover the
// input without gaps or overlaps.
func Partition(items []scan.WorkItem, workers int, m Mode) [][]scan.WorkItem {
	if len(items) == 0 {
		return nil
	}

	size := BatchSize(len(items), workers, m)
	batches := make([][]scan.WorkItem, 0, (len(items)+size-1)/size)

	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end])
	}

	return batches
}
