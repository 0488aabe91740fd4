package tally

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/locfang/pkg/scan"
)

// ProgressFunc is invoked by the coordinator after every completed batch,
// successful or not. It runs on the coordinating goroutine.
type ProgressFunc func(completed, total int)

// batchExec processes one batch and returns its partial result.
type batchExec func(ctx context.Context, batch []scan.WorkItem) (Partial, error)

type batchOutcome struct {
	partial Partial
	err     error
}

// Runner dispatches batches to a worker pool and merges the partial
// results into one Aggregate. The Aggregate is the only shared mutable
// state of a run and only the coordinating goroutine writes to it.
type Runner struct {
	mode       Mode
	workers    int
	log        *slog.Logger
	onProgress ProgressFunc

	// workerArgs overrides the subprocess invocation in process mode.
	// Empty means "current executable" with the worker subcommand.
	workerArgs []string
}

// NewRunner creates a Runner for the given mode. A non-positive worker
// count falls back to the mode default; a nil logger to slog.Default.
func NewRunner(mode Mode, workers int, log *slog.Logger) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers(mode)
	}

	if log == nil {
		log = slog.Default()
	}

	return &Runner{mode: mode, workers: workers, log: log}
}

// Workers returns the effective pool size.
func (r *Runner) Workers() int {
	return r.workers
}

// Mode returns the concurrency mode of the runner.
func (r *Runner) Mode() Mode {
	return r.mode
}

// SetProgress installs a progress callback.
func (r *Runner) SetProgress(fn ProgressFunc) {
	r.onProgress = fn
}

// SetWorkerCommand overrides the subprocess command used in process mode.
// Used by tests to stand in for the real binary.
func (r *Runner) SetWorkerCommand(args ...string) {
	r.workerArgs = args
}

// Run processes every batch and returns the merged totals. A failing batch
// is logged, counted in FailedBatches and skipped; the run continues. Only
// context cancellation ends the run early, returning the context error
// alongside whatever was merged so far.
func (r *Runner) Run(ctx context.Context, batches [][]scan.WorkItem) (*Aggregate, error) {
	switch r.mode {
	case ModeThreads:
		return r.runPool(ctx, batches, execInProcess)
	case ModeProcesses:
		spawn, err := r.subprocessExec()
		if err != nil {
			return nil, err
		}

		return r.runPool(ctx, batches, spawn)
	default:
		return r.runSerial(ctx, batches)
	}
}

// runSerial processes batches one by one on the calling goroutine.
func (r *Runner) runSerial(ctx context.Context, batches [][]scan.WorkItem) (*Aggregate, error) {
	agg := NewAggregate()

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return agg, err
		}

		agg.Add(CountBatch(ctx, batch))
		r.progress(i+1, len(batches))
	}

	return agg, nil
}

// runPool fans batches out to r.workers goroutines and merges results as
// they arrive. Workers only produce partials; the merge loop below is the
// single consumer.
func (r *Runner) runPool(ctx context.Context, batches [][]scan.WorkItem, run batchExec) (*Aggregate, error) {
	agg := NewAggregate()
	jobs := make(chan []scan.WorkItem)
	results := make(chan batchOutcome, r.workers)

	var group errgroup.Group

	for range r.workers {
		group.Go(func() error {
			for batch := range jobs {
				partial, err := run(ctx, batch)
				results <- batchOutcome{partial: partial, err: err}
			}

			return nil
		})
	}

	// Feeder. Stops dispatching promptly on cancellation.
	go func() {
		defer close(jobs)

		for _, batch := range batches {
			select {
			case jobs <- batch:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = group.Wait()
		close(results)
	}()

	completed := 0

	for outcome := range results {
		if outcome.err != nil {
			agg.FailedBatches++
			r.log.Warn("tally: batch failed", "mode", r.mode.String(), "error", outcome.err)
		} else {
			agg.Add(outcome.partial)
		}

		completed++
		r.progress(completed, len(batches))
	}

	if err := ctx.Err(); err != nil {
		return agg, err
	}

	return agg, nil
}

func (r *Runner) progress(completed, total int) {
	if r.onProgress != nil {
		r.onProgress(completed, total)
	}
}

// execInProcess counts a batch on the calling worker goroutine. A panic is
// contained here so one bad batch cannot take down the run.
func execInProcess(ctx context.Context, batch []scan.WorkItem) (partial Partial, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("batch panicked: %v", rec)
		}
	}()

	return CountBatch(ctx, batch), nil
}

// subprocessExec returns a batchExec that runs batches in an isolated
// worker process, exchanging JSON over stdin/stdout.
func (r *Runner) subprocessExec() (batchExec, error) {
	args := r.workerArgs

	if len(args) == 0 {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolve worker executable: %w", err)
		}

		args = []string{exe, "worker"}
	}

	return func(ctx context.Context, batch []scan.WorkItem) (Partial, error) {
		payload, err := json.Marshal(batch)
		if err != nil {
			return Partial{}, fmt.Errorf("encode batch: %w", err)
		}

		cmd := exec.CommandContext(ctx, args[0], args[1:]...)
		cmd.Stdin = bytes.NewReader(payload)

		var stdout, stderr bytes.Buffer

		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			msg := strings.TrimSpace(stderr.String())
			if msg != "" {
				return Partial{}, fmt.Errorf("worker: %w: %s", err, msg)
			}

			return Partial{}, fmt.Errorf("worker: %w", err)
		}

		var partial Partial

		if err := json.Unmarshal(stdout.Bytes(), &partial); err != nil {
			return Partial{}, fmt.Errorf("decode worker result: %w", err)
		}

		return partial, nil
	}, nil
}

// RunWorker implements the child side of process mode: it decodes a batch
// from in, counts it, and encodes the Partial to out.
func RunWorker(ctx context.Context, in io.Reader, out io.Writer) error {
	var items []scan.WorkItem

	if err := json.NewDecoder(in).Decode(&items); err != nil {
		return fmt.Errorf("decode batch: %w", err)
	}

	if err := json.NewEncoder(out).Encode(CountBatch(ctx, items)); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	return nil
}
