package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/surveysim/internal/metrics"
	"github.com/dshills/surveysim/internal/patch"
	"github.com/dshills/surveysim/internal/repair"
	"github.com/dshills/surveysim/internal/source"
	"github.com/dshills/surveysim/internal/spread"
)

// fixFlags holds the parsed flags for the fix-encoding command.
type fixFlags struct {
	dryRun    bool
	encodings []string
	patchOut  string
}

func newFixEncodingCmd() *cobra.Command {
	var flags fixFlags
	cmd := &cobra.Command{
		Use:   "fix-encoding <file>...",
		Short: "Re-encode files as UTF-8 and replace legacy punctuation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFixEncoding(flags, args, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&flags.dryRun, "dry-run", false, "Print a patch of the changes instead of writing")
	f.StringSliceVar(&flags.encodings, "encodings", repair.DefaultEncodings, "Candidate encodings, tried in order")
	f.StringVar(&flags.patchOut, "patch-out", "", "With --dry-run, write the patch to this file instead of stdout")
	return cmd
}

// runFixEncoding repairs every path. A failing path is logged and the next
// one is processed; the command fails after the last path if any failed.
func runFixEncoding(flags fixFlags, paths []string, stdout, stderr io.Writer, log *zap.Logger) error {
	var changes []patch.Change
	failed := 0
	for _, p := range paths {
		res, err := repair.File(p, flags.encodings, flags.dryRun)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.Warn("file not found", zap.String("path", p))
			failed++
			continue
		case errors.Is(err, repair.ErrUndecodable):
			log.Error("no candidate encoding decodes file", zap.String("path", p), zap.Strings("encodings", flags.encodings))
			failed++
			continue
		case err != nil:
			log.Error("repair failed", zap.String("path", p), zap.Error(err))
			failed++
			continue
		}

		fields := []zap.Field{zap.String("path", p), zap.String("encoding", res.Encoding), zap.Bool("changed", res.Changed)}
		switch {
		case !res.Changed:
			log.Info("already clean", fields...)
		case flags.dryRun:
			log.Info("would rewrite", fields...)
			changes = append(changes, patch.Change{Name: p, Before: res.Decoded, After: res.Fixed})
		default:
			log.Info("rewrote as utf-8", fields...)
			fmt.Fprintln(stdout, p)
		}
	}

	if flags.dryRun && len(changes) > 0 {
		diff := patch.GenerateDiff(changes, stderr)
		if flags.patchOut != "" {
			if err := os.WriteFile(flags.patchOut, []byte(diff), 0o644); err != nil {
				return codeError(exitGeneric, "writing patch: %s", err)
			}
		} else {
			fmt.Fprint(stdout, diff)
		}
	}

	if failed > 0 {
		return codeError(exitInput, "%d of %d files could not be repaired", failed, len(paths))
	}
	return nil
}

// spreadFlags holds the parsed flags for the spread command.
type spreadFlags struct {
	config       string
	columns      []string
	failOnNarrow bool
	limit        int
	metricsFile  string
}

func newSpreadCmd() *cobra.Command {
	var flags spreadFlags
	cmd := &cobra.Command{
		Use:   "spread <candidate.csv>...",
		Short: "Report the spread of sentiment score columns",
		Long:  "Candidates are tried in order; the first file that reads and holds analyzable columns is reported.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpread(flags, args, cmd.OutOrStdout(), logger)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.config, "config", "", "Configuration file holding the spread thresholds")
	f.StringSliceVar(&flags.columns, "columns", nil, "Columns to analyze (default: every column containing \"sentiment\")")
	f.BoolVar(&flags.failOnNarrow, "fail-on-narrow", false, "Exit 2 if the spread is too narrow")
	f.IntVar(&flags.limit, "limit", 5, "Per-column statistics to print (0 for all)")
	f.StringVar(&flags.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")
	return cmd
}

func runSpread(flags spreadFlags, paths []string, stdout io.Writer, log *zap.Logger) error {
	// --- Step 1: Thresholds ---
	cfg, err := loadConfig(flags.config)
	if err != nil {
		return codeError(exitInput, "loading config: %s", err)
	}
	if flags.limit < 0 {
		return codeError(exitInput, "invalid flags: --limit must be >= 0, got %d", flags.limit)
	}
	th := spread.Thresholds{MinStd: cfg.Spread.MinStd, MinRange: cfg.Spread.MinRange}

	// --- Step 2: Analyze the first usable candidate ---
	var (
		report  *spread.Report
		lastErr error
	)
	for rest := paths; len(rest) > 0 && report == nil; {
		tbl, skipped, err := source.First(rest, log)
		if err != nil {
			if lastErr == nil {
				lastErr = err
			}
			break
		}
		rest = rest[len(skipped)+1:]
		report, err = spread.Analyze(tbl, flags.columns, th)
		if err != nil {
			log.Warn("candidate not analyzable", zap.String("path", tbl.Path), zap.Error(err))
			lastErr = err
		}
	}
	if report == nil {
		return codeError(exitInput, "%s", lastErr)
	}

	// --- Step 3: Report ---
	if err := report.Write(stdout, flags.limit); err != nil {
		return codeError(exitGeneric, "writing report: %s", err)
	}

	if flags.metricsFile != "" {
		c := metrics.New()
		c.ObserveSpread(report)
		if err := c.WriteFile(flags.metricsFile); err != nil {
			return codeError(exitSink, "metrics sink: %s", err)
		}
	}

	// --- Step 4: Evaluate --fail-on-narrow ---
	if flags.failOnNarrow && report.Narrow() {
		return codeError(exitThreshold, "%s: spread std %.2f / range %.2f below thresholds %.2f / %.2f",
			report.Path, report.Std, report.Range, th.MinStd, th.MinRange)
	}
	return nil
}
