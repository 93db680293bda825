package main

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/surveysim/internal/config"
	"github.com/dshills/surveysim/internal/generate"
	"github.com/dshills/surveysim/internal/journey"
	"github.com/dshills/surveysim/internal/phase"
	"github.com/dshills/surveysim/internal/table"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// Exit codes.
const (
	exitGeneric   = 1
	exitThreshold = 2
	exitInput     = 3
	exitSink      = 4
)

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

// codeError returns an exitErr for the given code.
func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

var (
	verbose   bool
	logFormat string
	logger    = zap.NewNop()
)

// newLogger builds the process logger. Logs go to stderr so stdout stays
// free for reports.
func newLogger(verbose bool, format string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	switch format {
	case "json":
	case "console":
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return nil, fmt.Errorf("--log-format must be json or console, got %q", format)
	}
	return cfg.Build()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "surveysim",
		Short:         "Simulate survey data for a multi-phase transformation story",
		Long:          "surveysim generates synthetic sentiment and capability survey data, perturbs it through configured intervention phases, and exports the results.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(verbose, logFormat)
			if err != nil {
				return codeError(exitInput, "initializing logger: %s", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	pf := root.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&logFormat, "log-format", "json", "Log encoding: json or console")

	root.AddCommand(
		newGenerateCmd(),
		newJourneyCmd(),
		newLoadCmd(),
		newFixEncodingCmd(),
		newSpreadCmd(),
		newInitCmd(),
	)
	return root
}

func main() {
	journey.Version = version
	if err := newRootCmd().Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitGeneric)
	}
}

// loadConfig reads path, or the defaults when path is empty. An explicit
// path must exist.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
	}
	return config.Load(path)
}

// generateFlags holds the parsed flags for the generate command.
type generateFlags struct {
	config     string
	out        string
	seed       int64
	seedSet    bool
	count      int
	capability bool
}

// Output names of the generate command.
const (
	sentimentFile  = "sentiment_realistic.csv"
	capabilityFile = "capability_demo.csv"
)

func newGenerateCmd() *cobra.Command {
	var flags generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic baseline sentiment dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.seedSet = cmd.Flags().Changed("seed")
			return runGenerate(flags, cmd.OutOrStdout(), logger)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.config, "config", "", "Configuration file (defaults apply when omitted)")
	f.StringVar(&flags.out, "out", ".", "Output directory")
	f.Int64Var(&flags.seed, "seed", 0, "Random seed (overrides the configuration)")
	f.IntVar(&flags.count, "count", 0, "Number of respondents (overrides the configuration)")
	f.BoolVar(&flags.capability, "capability", false, "Also generate capability scores for the respondents")
	return cmd
}

func runGenerate(flags generateFlags, stdout io.Writer, log *zap.Logger) error {
	// --- Step 1: Resolve configuration ---
	cfg, err := loadConfig(flags.config)
	if err != nil {
		return codeError(exitInput, "loading config: %s", err)
	}
	if flags.seedSet {
		cfg.Seed = flags.seed
	}
	if flags.count > 0 {
		cfg.Sentiment.Count = flags.count
	}
	if err := cfg.Sentiment.Validate(); err != nil {
		return codeError(exitInput, "invalid sentiment config: %s", err)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	// --- Step 2: Sentiment ---
	sent, err := generate.Sentiment(cfg.Sentiment, rng)
	if err != nil {
		return codeError(exitGeneric, "generating sentiment: %s", err)
	}
	path := filepath.Join(flags.out, sentimentFile)
	if err := table.WriteFile(path, func(w io.Writer) error { return table.WriteSentiment(w, sent) }); err != nil {
		return codeError(exitGeneric, "%s", err)
	}
	means := phase.FieldMeans(sent)
	log.Info("sentiment generated",
		zap.String("path", path),
		zap.Int("respondents", sent.Len()),
		zap.Int64("seed", cfg.Seed),
		zap.Float64("mean", phase.Mean(sent)),
		zap.Float64("q1_mean", means[1]),
		zap.Float64("q25_mean", means[25]),
	)
	fmt.Fprintln(stdout, path)

	// --- Step 3: Capability ---
	if !flags.capability {
		return nil
	}
	if err := cfg.Capability.Validate(); err != nil {
		return codeError(exitInput, "invalid capability config: %s", err)
	}
	capab, err := generate.Capability(cfg.Capability, sent.IDs(), rng)
	if err != nil {
		return codeError(exitGeneric, "generating capability: %s", err)
	}
	path = filepath.Join(flags.out, capabilityFile)
	if err := table.WriteFile(path, func(w io.Writer) error { return table.WriteCapability(w, capab) }); err != nil {
		return codeError(exitGeneric, "%s", err)
	}
	log.Info("capability generated",
		zap.String("path", path),
		zap.Int("records", capab.Len()),
		zap.Float64("mean", phase.Mean(capab)),
	)
	fmt.Fprintln(stdout, path)
	return nil
}

// initFlags holds the parsed flags for the init command.
type initFlags struct {
	config string
	force  bool
}

func newInitCmd() *cobra.Command {
	var flags initFlags
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(flags, logger)
		},
	}
	cmd.Flags().StringVar(&flags.config, "config", "surveysim.yaml", "Configuration file to write")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Overwrite an existing file")
	return cmd
}

func runInit(flags initFlags, log *zap.Logger) error {
	if _, err := os.Stat(flags.config); err == nil && !flags.force {
		return codeError(exitInput, "%s already exists (use --force to overwrite)", flags.config)
	}
	if err := config.DefaultConfig().Save(flags.config); err != nil {
		return codeError(exitGeneric, "%s", err)
	}
	log.Info("configuration written", zap.String("path", flags.config))
	return nil
}
