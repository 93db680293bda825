package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/surveysim/internal/config"
	"github.com/dshills/surveysim/internal/journey"
	"github.com/dshills/surveysim/internal/llm"
	"github.com/dshills/surveysim/internal/metrics"
	"github.com/dshills/surveysim/internal/narrate"
	"github.com/dshills/surveysim/internal/phase"
	"github.com/dshills/surveysim/internal/profile"
	"github.com/dshills/surveysim/internal/render"
	"github.com/dshills/surveysim/internal/sink"
	"github.com/dshills/surveysim/internal/store/postgres"
	"github.com/dshills/surveysim/internal/store/sqlite"
)

// journeyFlags holds the parsed flags for the journey command.
type journeyFlags struct {
	config         string
	sentiment      string
	capability     string
	out            string
	format         string
	sql            bool
	packages       bool
	multiplicative bool
	seed           int64
	seedSet        bool
	sqlite         string
	s3Bucket       string
	s3Prefix       string
	metricsFile    string
	narrate        bool
	model          string
}

func newJourneyCmd() *cobra.Command {
	var flags journeyFlags
	cmd := &cobra.Command{
		Use:   "journey",
		Short: "Run the configured phases over a baseline and export every period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.seedSet = cmd.Flags().Changed("seed")
			return runJourney(cmd.Context(), flags, cmd.OutOrStdout(), logger)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.config, "config", "", "Configuration file (defaults apply when omitted)")
	f.StringVar(&flags.sentiment, "sentiment", "", "Baseline sentiment CSV (generated when omitted)")
	f.StringVar(&flags.capability, "capability", "", "Baseline capability CSV (generated for the sentiment respondents when omitted)")
	f.StringVar(&flags.out, "out", "", "Output directory (overrides the configuration)")
	f.StringVar(&flags.format, "format", "json", "Story format: json or md")
	f.BoolVar(&flags.sql, "sql", false, "Write SQL insert statements per phase")
	f.BoolVar(&flags.packages, "package", false, "Write a single-file upload package per phase")
	f.BoolVar(&flags.multiplicative, "multiplicative", false, "Replace the configured phases with the single multiplicative phase 3")
	f.Int64Var(&flags.seed, "seed", 0, "Random seed (overrides the configuration)")
	f.StringVar(&flags.sqlite, "sqlite", "", "Also snapshot the run into this SQLite database")
	f.StringVar(&flags.s3Bucket, "s3-bucket", "", "Also upload every artifact to this S3 bucket")
	f.StringVar(&flags.s3Prefix, "s3-prefix", "", "Key prefix for S3 uploads")
	f.StringVar(&flags.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")
	f.BoolVar(&flags.narrate, "narrate", false, "Ask a language model to write the phase notes")
	f.StringVar(&flags.model, "model", "", "Narration model as provider:model (overrides the configuration)")
	return cmd
}

// validateJourneyFlags returns an error if any flag value is invalid.
func validateJourneyFlags(flags journeyFlags) error {
	switch flags.format {
	case "json", "md":
	default:
		return fmt.Errorf("--format must be json or md, got %q", flags.format)
	}
	if flags.capability != "" && flags.sentiment == "" {
		return errors.New("--capability requires --sentiment")
	}
	return nil
}

// applyJourneyFlags layers command-line overrides onto cfg.
func applyJourneyFlags(cfg *config.Config, flags journeyFlags) {
	if flags.out != "" {
		cfg.OutDir = flags.out
	}
	if flags.seedSet {
		cfg.Seed = flags.seed
	}
	if flags.multiplicative {
		cfg.Phases = []config.Phase{config.MultiplicativePhase3()}
	}
	if flags.sqlite != "" {
		cfg.Sinks.SQLitePath = flags.sqlite
	}
	if flags.s3Bucket != "" {
		cfg.Sinks.S3.Bucket = flags.s3Bucket
	}
	if flags.s3Prefix != "" {
		cfg.Sinks.S3.Prefix = flags.s3Prefix
	}
	if flags.metricsFile != "" {
		cfg.Sinks.MetricsFile = flags.metricsFile
	}
	if flags.narrate {
		cfg.Narrate.Enabled = true
	}
	if flags.model != "" {
		cfg.Narrate.Model = flags.model
	}
}

func runJourney(ctx context.Context, flags journeyFlags, stdout io.Writer, log *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// --- Step 1: Validate flags and configuration ---
	if err := validateJourneyFlags(flags); err != nil {
		return codeError(exitInput, "invalid flags: %s", err)
	}
	cfg, err := loadConfig(flags.config)
	if err != nil {
		return codeError(exitInput, "loading config: %s", err)
	}
	applyJourneyFlags(cfg, flags)
	if err := cfg.Validate(); err != nil {
		return codeError(exitInput, "invalid config: %s", err)
	}
	renderer, err := render.NewRenderer(flags.format)
	if err != nil {
		return codeError(exitInput, "invalid format: %s", err)
	}

	// --- Step 2: Baseline ---
	rng := rand.New(rand.NewSource(cfg.Seed))
	var base journey.Baseline
	if flags.sentiment != "" {
		log.Debug("loading baseline", zap.String("sentiment", flags.sentiment), zap.String("capability", flags.capability))
		base, err = journey.Load(cfg, flags.sentiment, flags.capability, rng)
		if err != nil {
			return codeError(exitInput, "%s", err)
		}
	} else {
		base, err = journey.Generate(cfg, rng)
		if err != nil {
			return codeError(exitGeneric, "generating baseline: %s", err)
		}
	}

	// --- Step 3: Phases ---
	res, err := journey.Run(cfg, base, rng, log)
	if err != nil {
		if errors.Is(err, phase.ErrIDCollision) {
			return codeError(exitInput, "%s", err)
		}
		return codeError(exitGeneric, "%s", err)
	}

	// --- Step 4: Narration (advisory) ---
	if cfg.Narrate.Enabled {
		if err := narrateStory(ctx, cfg.Narrate, res, log); err != nil {
			log.Warn("narration failed, using configured notes", zap.Error(err))
		}
	}

	// --- Step 5: Write artifacts ---
	files, err := res.Write(cfg, journey.OutputOptions{
		Dir:      cfg.OutDir,
		Renderer: renderer,
		SQL:      flags.sql,
		Packages: flags.packages,
	}, log)
	if err != nil {
		return codeError(exitGeneric, "writing artifacts: %s", err)
	}

	// --- Step 6: Sinks ---
	if cfg.Sinks.SQLitePath != "" {
		if err := snapshotSQLite(ctx, cfg.Sinks.SQLitePath, res, log); err != nil {
			return codeError(exitSink, "sqlite sink: %s", err)
		}
	}
	if cfg.Sinks.MetricsFile != "" {
		c := metrics.New()
		c.ObserveJourney(res)
		if err := c.WriteFile(cfg.Sinks.MetricsFile); err != nil {
			return codeError(exitSink, "metrics sink: %s", err)
		}
		files = append(files, cfg.Sinks.MetricsFile)
	}
	if cfg.Sinks.S3.Bucket != "" {
		if err := uploadS3(ctx, cfg.Sinks.S3, res.Story.Meta.RunID, files, log); err != nil {
			return codeError(exitSink, "s3 sink: %s", err)
		}
	}

	// --- Step 7: Report ---
	for _, f := range files {
		fmt.Fprintln(stdout, f)
	}
	t := res.Story.Totals
	log.Info("journey complete",
		zap.String("run_id", res.Story.Meta.RunID),
		zap.Int("phases", t.Phases),
		zap.Int("files", len(files)),
		zap.Float64("sentiment_delta", t.SentimentDelta),
		zap.Float64("capability_delta", t.CapabilityDelta),
	)
	return nil
}

// narrateStory replaces the story notes with model-written ones.
func narrateStory(ctx context.Context, nc config.NarrateConfig, res *journey.Result, log *zap.Logger) error {
	timeout, err := nc.Deadline()
	if err != nil {
		return err
	}
	provider, err := llm.NewProvider(nc.Model)
	if err != nil {
		return err
	}
	var profiles []*profile.Profile
	for _, name := range []string{"sentiment", "capability"} {
		p, err := profile.Get(name)
		if err != nil {
			return err
		}
		profiles = append(profiles, p)
	}
	log.Debug("narrating story", zap.String("model", nc.Model), zap.Duration("timeout", timeout))
	return narrate.Story(ctx, provider, res.Story, narrate.Options{
		Timeout:     timeout,
		Temperature: 0.4,
		Profiles:    profiles,
	}, log)
}

func snapshotSQLite(ctx context.Context, path string, res *journey.Result, log *zap.Logger) error {
	st, err := sqlite.NewStore(path)
	if err != nil {
		return err
	}
	defer st.Close()
	runID := res.Story.Meta.RunID
	if err := st.SaveRun(ctx, res); err != nil {
		return err
	}

	counts, err := st.Counts(ctx, runID)
	if err != nil {
		return err
	}
	means, err := st.PeriodMeans(ctx, runID)
	if err != nil {
		return err
	}
	if len(means) != len(res.Periods) {
		return fmt.Errorf("stored %d periods for run %s, want %d", len(means), runID, len(res.Periods))
	}
	last := means[len(means)-1]
	log.Info("sqlite snapshot saved",
		zap.String("path", st.Path()),
		zap.String("run_id", runID),
		zap.Int("respondents", counts["respondents"]),
		zap.Int("capability_scores", counts["capability_scores"]),
		zap.Float64("sentiment_mean", last[0]),
		zap.Float64("capability_mean", last[1]),
	)
	return nil
}

func uploadS3(ctx context.Context, sc config.S3Config, runID string, files []string, log *zap.Logger) error {
	prefix := sc.Prefix
	if prefix == "" {
		prefix = "surveysim/" + runID
	}
	s, err := sink.NewS3(ctx, sink.S3Config{
		Bucket:    sc.Bucket,
		Prefix:    prefix,
		Region:    sc.Region,
		Endpoint:  sc.Endpoint,
		PathStyle: sc.PathStyle,
	})
	if err != nil {
		return err
	}
	keys, err := s.UploadFiles(ctx, files, log)
	if err != nil {
		return fmt.Errorf("uploaded %d of %d files: %w", len(keys), len(files), err)
	}
	log.Info("artifacts uploaded", zap.String("bucket", sc.Bucket), zap.String("prefix", prefix), zap.Int("objects", len(keys)))
	return nil
}

// loadFlags holds the parsed flags for the load command.
type loadFlags struct {
	dsn string
}

func newLoadCmd() *cobra.Command {
	var flags loadFlags
	cmd := &cobra.Command{
		Use:   "load <file.sql>...",
		Short: "Execute generated SQL files against Postgres",
		Long:  "Each file is executed in its own transaction. The DSN falls back to SURVEYSIM_DSN.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd.Context(), flags, args, logger)
		},
	}
	cmd.Flags().StringVar(&flags.dsn, "dsn", "", "Postgres connection string")
	return cmd
}

func runLoad(ctx context.Context, flags loadFlags, paths []string, log *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	dsn := flags.dsn
	if dsn == "" {
		dsn = os.Getenv("SURVEYSIM_DSN")
	}
	if dsn == "" {
		return codeError(exitInput, "--dsn or SURVEYSIM_DSN is required")
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return codeError(exitInput, "%s", err)
		}
	}

	loader, err := postgres.Open(ctx, dsn)
	if err != nil {
		return codeError(exitSink, "%s", err)
	}
	defer loader.Close()

	for _, p := range paths {
		n, err := loader.ExecFile(ctx, p)
		if err != nil {
			return codeError(exitSink, "loading %s: %s", p, err)
		}
		log.Info("sql file loaded", zap.String("path", p), zap.Int("statements", n))
	}
	return nil
}
