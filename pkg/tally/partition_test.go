package tally_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/locfang/pkg/scan"
	"github.com/Sumatoshi-tech/locfang/pkg/tally"
)

func makeItems(n int) []scan.WorkItem {
	items := make([]scan.WorkItem, n)
	for i := range items {
		items[i] = scan.WorkItem{Path: fmt.Sprintf("file%d.go", i), Ext: ".go"}
	}

	return items
}

func TestPartitionCoversInputExactly(t *testing.T) {
	t.Parallel()

	modes := []tally.Mode{tally.ModeSerial, tally.ModeThreads, tally.ModeProcesses}

	for _, mode := range modes {
		for _, workers := range []int{1, 2, 4, 8, 33} {
			for _, n := range []int{0, 1, 2, 7, 100, 1234} {
				items := makeItems(n)
				batches := tally.Partition(items, workers, mode)

				if n == 0 {
					assert.Empty(t, batches)

					continue
				}

				var flat []scan.WorkItem
				for _, batch := range batches {
					require.NotEmpty(t, batch, "mode=%s workers=%d n=%d", mode, workers, n)
					flat = append(flat, batch...)
				}

				assert.Equal(t, items, flat, "mode=%s workers=%d n=%d", mode, workers, n)
			}
		}
	}
}

func TestBatchSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		n       int
		workers int
		mode    tally.Mode
		want    int
	}{
		{name: "serial takes everything", n: 1000, workers: 4, mode: tally.ModeSerial, want: 1000},
		{name: "threads several per worker", n: 1000, workers: 4, mode: tally.ModeThreads, want: 62},
		{name: "processes larger batches", n: 1000, workers: 4, mode: tally.ModeProcesses, want: 125},
		{name: "threads floor", n: 8, workers: 8, mode: tally.ModeThreads, want: 5},
		{name: "processes floor", n: 8, workers: 8, mode: tally.ModeProcesses, want: 10},
		{name: "tiny input stays positive", n: 1, workers: 16, mode: tally.ModeSerial, want: 1},
		{name: "zero workers treated as one", n: 40, workers: 0, mode: tally.ModeThreads, want: 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tally.BatchSize(tc.n, tc.workers, tc.mode))
		})
	}
}

func TestDefaultWorkers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, tally.DefaultWorkers(tally.ModeSerial))
	assert.GreaterOrEqual(t, tally.DefaultWorkers(tally.ModeThreads), 1)
	assert.LessOrEqual(t, tally.DefaultWorkers(tally.ModeThreads), 32)
	assert.GreaterOrEqual(t, tally.DefaultWorkers(tally.ModeProcesses), 1)
}
