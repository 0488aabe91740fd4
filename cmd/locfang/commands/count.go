// Package commands implements CLI command handlers for locfang.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locfang/internal/config"
	"github.com/Sumatoshi-tech/locfang/pkg/report"
	"github.com/Sumatoshi-tech/locfang/pkg/scan"
	"github.com/Sumatoshi-tech/locfang/pkg/tally"
)

// progressSteps is how many log-line progress updates a non-interactive run
// emits, roughly one every 5% of batches.
const progressSteps = 20

// CountCommand holds configuration and dependencies for the root count
// command.
type CountCommand struct {
	configPath string
	workers    int
	useThreads bool
	serial     bool
	format     string
	noColor    bool
	noProgress bool
	verbose    bool
	quiet      bool

	out    io.Writer
	errOut io.Writer
}

// NewCountCommand creates the root command that counts lines under a path.
func NewCountCommand() *cobra.Command {
	return newCountCommand(&CountCommand{out: os.Stdout, errOut: os.Stderr})
}

func newCountCommand(countCmd *CountCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locfang [path]",
		Short: "Count non-empty source lines across a directory tree",
		Long: `Locfang recursively scans a directory tree, picks out source files by
extension, counts their non-empty lines in parallel and reports totals per
file type.

The scan skips dependency caches, build outputs and VCS metadata, and
filters out binary and oversized files. Worker processes are the default;
--use-threads switches to an in-process goroutine pool and --serial to a
single sequential pass.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			return countCmd.Run(cmd.Context(), cmd, path)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&countCmd.configPath, "config", "", "config file (default .locfang.yaml in CWD or $HOME)")
	flags.IntVar(&countCmd.workers, "workers", 0, "worker count (default: derived from CPU count)")
	flags.BoolVar(&countCmd.useThreads, "use-threads", false, "use an in-process goroutine pool instead of worker processes")
	flags.BoolVar(&countCmd.serial, "serial", false, "disable parallelism, single sequential pass")
	flags.StringVar(&countCmd.format, "format", "", "output format: text, json or yaml")
	flags.BoolVar(&countCmd.noColor, "no-color", false, "disable colored output")
	flags.BoolVar(&countCmd.noProgress, "no-progress", false, "disable live progress rendering")
	flags.BoolVarP(&countCmd.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&countCmd.quiet, "quiet", "q", false, "suppress log output")

	cmd.MarkFlagsMutuallyExclusive("use-threads", "serial")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	return cmd
}

// Run executes a full count: load config, collect, partition, dispatch,
// render.
func (c *CountCommand) Run(ctx context.Context, cmd *cobra.Command, path string) error {
	logger := c.newLogger()

	cfg, err := config.LoadConfig(c.configPath)
	if err != nil {
		return err
	}

	c.applyFlags(cmd, cfg)

	mode, err := config.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	start := time.Now()

	root, err := scan.ResolveRoot(path)
	if err != nil {
		return err
	}

	collector := scan.NewCollector(scan.NewClassifier(cfg.ScanOptions()), logger)

	items, err := collector.Collect(ctx, root)
	if err != nil {
		return err
	}

	runner := tally.NewRunner(mode, cfg.Workers, logger)
	batches := tally.Partition(items, runner.Workers(), mode)

	logger.Info("count: dispatching",
		"root", root,
		"files", len(items),
		"batches", len(batches),
		"workers", runner.Workers(),
		"mode", mode.String(),
	)

	finishProgress := c.wireProgress(runner, len(batches), logger)

	agg, runErr := runner.Run(ctx, batches)

	finishProgress()

	if runErr != nil {
		return runErr
	}

	agg.Root = root
	agg.Elapsed = time.Since(start)

	return report.Render(c.out, agg, report.Options{
		Format: cfg.Format,
		Color:  c.colorEnabled(),
	})
}

// applyFlags lets explicitly set flags override file and env configuration.
func (c *CountCommand) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("workers") {
		cfg.Workers = c.workers
	}

	if flags.Changed("format") {
		cfg.Format = c.format
	}

	if c.useThreads {
		cfg.Mode = "threads"
	}

	if c.serial {
		cfg.Mode = "serial"
	}
}

// wireProgress attaches progress reporting to the runner: a live go-pretty
// tracker on a terminal, periodic log lines otherwise. The returned func
// flushes the live renderer and must be called after the run.
func (c *CountCommand) wireProgress(runner *tally.Runner, totalBatches int, logger *slog.Logger) func() {
	if c.noProgress || c.quiet || totalBatches == 0 {
		return func() {}
	}

	if !c.stderrIsTerminal() {
		step := max(1, totalBatches/progressSteps)

		runner.SetProgress(func(completed, total int) {
			if completed%step == 0 || completed == total {
				logger.Info("count: progress",
					"completed", completed,
					"total", total,
					"pct", completed*100/total,
				)
			}
		})

		return func() {}
	}

	writer := progress.NewWriter()
	writer.SetOutputWriter(c.errOut)
	writer.SetAutoStop(false)
	writer.SetUpdateFrequency(100 * time.Millisecond)

	tracker := &progress.Tracker{
		Message: "Counting batches",
		Total:   int64(totalBatches),
	}
	writer.AppendTracker(tracker)

	go writer.Render()

	runner.SetProgress(func(completed, _ int) {
		tracker.SetValue(int64(completed))
	})

	return func() {
		tracker.MarkAsDone()
		writer.Stop()

		for writer.IsRenderInProgress() {
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func (c *CountCommand) newLogger() *slog.Logger {
	level := slog.LevelInfo

	switch {
	case c.quiet:
		level = slog.LevelError
	case c.verbose:
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(c.errOut, &slog.HandlerOptions{Level: level}))
}

func (c *CountCommand) colorEnabled() bool {
	if c.noColor {
		return false
	}

	out, ok := c.out.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
}

func (c *CountCommand) stderrIsTerminal() bool {
	errOut, ok := c.errOut.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(errOut.Fd()) || isatty.IsCygwinTerminal(errOut.Fd())
}
