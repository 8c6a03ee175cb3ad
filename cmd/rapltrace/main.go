//go:build linux

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/rapltrace/rapltrace/pkg/export"
	"github.com/rapltrace/rapltrace/pkg/rapl"
	"github.com/rapltrace/rapltrace/pkg/sched"
	"github.com/rapltrace/rapltrace/pkg/tracer"
)

type opts struct {
	pid       int
	interval  time.Duration
	cpu       int
	verbosity int
	export    bool
	outputDir string
}

func main() {
	var o opts

	root := &cobra.Command{
		Use:   "rapltrace DURATION",
		Short: "Per-process RAPL energy tracer",
		Long: `rapltrace samples the CPU's RAPL energy counters at a fixed interval and
correlates the measured power draw with a target process's scheduling
activity. It prints a per-domain summary and can export the trace as
pivoted CSV tables (energy, power, summary).

Examples:
  rapltrace 30s
  rapltrace 2m --pid 1234 -i 500ms -vv --export --output-dir ./traces`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			duration, err := time.ParseDuration(args[0])
			if err != nil {
				return fmt.Errorf("invalid duration %q: %w", args[0], err)
			}
			return run(cmd.Context(), duration, o)
		},
	}

	root.Flags().IntVarP(&o.pid, "pid", "p", 0, "target process to correlate with (0 = whole system)")
	root.Flags().DurationVarP(&o.interval, "interval", "i", time.Second, "sampling interval (min 1ms)")
	root.Flags().IntVar(&o.cpu, "cpu", 0, "logical CPU whose MSR device is read")
	root.Flags().CountVarP(&o.verbosity, "verbose", "v", "verbosity (repeat to increase)")
	root.Flags().BoolVar(&o.export, "export", false, "write energy/power/summary CSV files")
	root.Flags().StringVarP(&o.outputDir, "output-dir", "o", ".", "directory for exported CSV files")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, duration time.Duration, o opts) error {
	if o.interval < tracer.MinInterval {
		return fmt.Errorf("sampling interval %s: %w", o.interval, tracer.ErrInvalidInterval)
	}
	if unix.Getuid() != 0 {
		return fmt.Errorf("rapltrace must run as root to read MSR registers")
	}

	logger := newLogger(o.verbosity)
	slog.SetDefault(logger)

	counters, err := rapl.NewMSRReader(o.cpu, logger)
	if err != nil {
		return fmt.Errorf("open msr device: %w", err)
	}
	defer counters.Close()

	var procs tracer.SnapshotSource
	if o.pid > 0 {
		src, err := sched.NewSource()
		if err != nil {
			return err
		}
		procs = src
	}

	t, err := tracer.New(tracer.Config{
		Duration:   duration,
		Interval:   o.interval,
		PID:        o.pid,
		MonitorCPU: o.cpu,
	}, counters, procs, tracer.WithLogger(logger))
	if err != nil {
		return err
	}

	tr, err := t.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("=== Trace summary ===")
	export.WriteSummary(os.Stdout, tr)
	if o.verbosity >= 1 {
		fmt.Println()
		export.WriteIntervals(os.Stdout, tr)
	}

	if o.export {
		files, err := export.WriteFiles(o.outputDir, o.pid, tr)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println("CSV export complete:")
		for _, f := range files {
			fmt.Printf("- %s\n", f)
		}
	}
	return nil
}

func newLogger(verbosity int) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbosity == 1:
		level = slog.LevelInfo
	case verbosity >= 2:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
