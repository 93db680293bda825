// Package config holds the journey configuration: organization metadata, the
// generator settings for both datasets, and the ordered phase definitions.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dshills/surveysim/internal/generate"
	"github.com/dshills/surveysim/internal/phase"
	"github.com/dshills/surveysim/internal/profile"
)

// Config is the top-level surveysim configuration.
type Config struct {
	Organization string  `yaml:"organization"`
	Company      Company `yaml:"company"`
	Seed         int64   `yaml:"seed"`
	OutDir       string  `yaml:"out_dir"`

	Baseline   Baseline                  `yaml:"baseline"`
	Sentiment  generate.SentimentConfig  `yaml:"sentiment"`
	Capability generate.CapabilityConfig `yaml:"capability"`
	Phases     []Phase                   `yaml:"phases"`

	SQL     SQLConfig     `yaml:"sql"`
	Spread  SpreadConfig  `yaml:"spread"`
	Narrate NarrateConfig `yaml:"narrate"`
	Sinks   SinksConfig   `yaml:"sinks"`
}

// Company identifies the organization in generated SQL.
type Company struct {
	Slug string `yaml:"slug"`
	ID   string `yaml:"id"`
}

// Baseline describes phase 1, the unmodified population.
type Baseline struct {
	Name  string   `yaml:"name"`
	Date  string   `yaml:"date"`
	Wave  string   `yaml:"wave"`
	Slug  string   `yaml:"slug"`
	Notes []string `yaml:"notes,omitempty"`
}

// Intervention is a program rolled out before a phase's assessment.
type Intervention struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// Phase defines one derived assessment period.
type Phase struct {
	Number        int             `yaml:"number"`
	Name          string          `yaml:"name"`
	Date          string          `yaml:"date"`
	Wave          string          `yaml:"wave"`
	Slug          string          `yaml:"slug"`
	Description   string          `yaml:"description,omitempty"`
	Interventions []Intervention  `yaml:"interventions"`
	Retag         phase.RetagRule `yaml:"retag"`
	Sentiment     Effects         `yaml:"sentiment"`
	Capability    Effects         `yaml:"capability"`
	Notes         []string        `yaml:"notes,omitempty"`
}

// Effects is the per-dataset part of a phase.
type Effects struct {
	// Profile names the bound the phase clamps to.
	Profile string         `yaml:"profile"`
	Effects []phase.Effect `yaml:"effects,omitempty"`
	Ambient phase.Effect   `yaml:"ambient"`
	Scope   phase.Scope    `yaml:"scope,omitempty"`
}

// Step resolves e into a phase step using retag.
func (e Effects) Step(retag phase.RetagRule) (phase.Step, error) {
	p, err := profile.Get(e.Profile)
	if err != nil {
		return phase.Step{}, err
	}
	return phase.Step{
		Retag:   retag,
		Effects: e.Effects,
		Ambient: e.Ambient,
		Scope:   e.Scope,
		Bound:   p.Bound,
	}, nil
}

// SQLConfig controls generated SQL.
type SQLConfig struct {
	BatchSize int `yaml:"batch_size"`
}

// SpreadConfig holds the spread-check thresholds.
type SpreadConfig struct {
	MinStd   float64 `yaml:"min_std"`
	MinRange float64 `yaml:"min_range"`
}

// NarrateConfig controls optional model-written phase notes.
type NarrateConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"` // "provider:model"
	Timeout string `yaml:"timeout"`
}

// Deadline parses Timeout. An empty timeout means one minute.
func (n NarrateConfig) Deadline() (time.Duration, error) {
	if n.Timeout == "" {
		return time.Minute, nil
	}
	d, err := time.ParseDuration(n.Timeout)
	if err != nil {
		return 0, fmt.Errorf("narrate.timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("narrate.timeout must be positive, got %s", n.Timeout)
	}
	return d, nil
}

// SinksConfig lists optional destinations besides the output directory.
type SinksConfig struct {
	S3          S3Config `yaml:"s3"`
	SQLitePath  string   `yaml:"sqlite_path,omitempty"`
	MetricsFile string   `yaml:"metrics_file,omitempty"`
}

// S3Config selects an S3 bucket for exported artifacts.
type S3Config struct {
	Bucket    string `yaml:"bucket,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"` // e.g. MinIO
	PathStyle bool   `yaml:"path_style,omitempty"`
}

// Load reads configuration from a YAML file on top of the defaults. A missing
// file yields the defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if s := os.Getenv("SURVEYSIM_SEED"); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("SURVEYSIM_SEED: %w", err)
		}
		c.Seed = seed
	}
	if dir := os.Getenv("SURVEYSIM_OUT_DIR"); dir != "" {
		c.OutDir = dir
	}
	return nil
}

// Validate returns the first problem found in the configuration.
func (c *Config) Validate() error {
	if c.Organization == "" {
		return errors.New("organization is required")
	}
	if c.Company.Slug == "" {
		return errors.New("company.slug is required")
	}
	if _, err := uuid.Parse(c.Company.ID); err != nil {
		return fmt.Errorf("company.id %q: %w", c.Company.ID, err)
	}
	if err := c.Baseline.validate(); err != nil {
		return err
	}
	if err := c.Sentiment.Validate(); err != nil {
		return fmt.Errorf("sentiment: %w", err)
	}
	if err := c.Capability.Validate(); err != nil {
		return fmt.Errorf("capability: %w", err)
	}
	if c.SQL.BatchSize <= 0 {
		return fmt.Errorf("sql.batch_size must be > 0, got %d", c.SQL.BatchSize)
	}
	if c.Spread.MinStd < 0 || c.Spread.MinRange < 0 {
		return errors.New("spread thresholds must be >= 0")
	}
	if _, err := c.Narrate.Deadline(); err != nil {
		return err
	}

	waves := map[string]bool{c.Baseline.Wave: true}
	prev := 1
	for i, p := range c.Phases {
		if err := p.validate(prev); err != nil {
			return fmt.Errorf("phases[%d]: %w", i, err)
		}
		if waves[p.Wave] {
			return fmt.Errorf("phases[%d]: duplicate wave %q", i, p.Wave)
		}
		waves[p.Wave] = true
		prev = p.Number
	}
	return nil
}

func (b Baseline) validate() error {
	switch {
	case b.Name == "":
		return errors.New("baseline.name is required")
	case b.Wave == "":
		return errors.New("baseline.wave is required")
	case b.Slug == "":
		return errors.New("baseline.slug is required")
	}
	return nil
}

func (p Phase) validate(prev int) error {
	if p.Number <= prev {
		return fmt.Errorf("number %d must be greater than %d", p.Number, prev)
	}
	if p.Name == "" || p.Wave == "" || p.Slug == "" {
		return errors.New("name, wave and slug are required")
	}
	for _, iv := range p.Interventions {
		if iv.Code == "" {
			return errors.New("intervention code is required")
		}
	}
	if err := p.Sentiment.validate(p.Retag, profile.KindSentiment); err != nil {
		return fmt.Errorf("sentiment: %w", err)
	}
	if err := p.Capability.validate(p.Retag, profile.KindCapability); err != nil {
		return fmt.Errorf("capability: %w", err)
	}
	return nil
}

func (e Effects) validate(retag phase.RetagRule, kind profile.Kind) error {
	p, err := profile.Get(e.Profile)
	if err != nil {
		return err
	}
	if p.Kind != kind {
		return fmt.Errorf("profile %q is a %s profile", e.Profile, p.Kind)
	}
	s, err := e.Step(retag)
	if err != nil {
		return err
	}
	return s.Validate()
}

// Codes returns the phase's intervention codes in declaration order.
func (p Phase) Codes() []string {
	codes := make([]string, len(p.Interventions))
	for i, iv := range p.Interventions {
		codes[i] = iv.Code
	}
	return codes
}
