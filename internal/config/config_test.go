package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/surveysim/internal/phase"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "Acme Wealth Advisors", cfg.Organization)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 500, cfg.Sentiment.Count)
	require.Len(t, cfg.Phases, 2)

	p2, p3 := cfg.Phases[0], cfg.Phases[1]
	assert.Equal(t, []string{"A1", "B2", "C1"}, p2.Codes())
	assert.Equal(t, []string{"A3", "B3", "C2"}, p3.Codes())
	assert.Equal(t, "MAR25_", p2.Retag.Prefix)
	assert.Equal(t, "NOV25_RESP_0001", p3.Retag.Apply("MAR25_RESP_0001"))
	assert.Equal(t, phase.ScopeUntargeted, p2.Capability.Scope)
}

func TestMultiplicativePhase3_Valid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Phases = []Phase{MultiplicativePhase3()}
	require.NoError(t, cfg.Validate())

	step, err := cfg.Phases[0].Capability.Step(cfg.Phases[0].Retag)
	require.NoError(t, err)
	assert.Equal(t, 7.0, step.Bound.Upper)
	for _, e := range step.Effects {
		assert.Equal(t, phase.Multiplicative, e.Policy)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("SURVEYSIM_SEED", "")
	t.Setenv("SURVEYSIM_OUT_DIR", "")

	path := filepath.Join(t.TempDir(), "nested", "surveysim.yaml")
	cfg := DefaultConfig()
	cfg.Phases = append(cfg.Phases, MultiplicativePhase3())
	cfg.Phases[2].Number = 4
	cfg.Phases[2].Wave = "p3-upload"

	require.NoError(t, cfg.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)

	if diff := cmp.Diff(cfg, loaded, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("config changed across save/load (-saved +loaded):\n%s", diff)
	}
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	t.Setenv("SURVEYSIM_SEED", "")
	t.Setenv("SURVEYSIM_OUT_DIR", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Organization, cfg.Organization)
}

func TestLoad_PartialOverlay(t *testing.T) {
	t.Setenv("SURVEYSIM_SEED", "")
	t.Setenv("SURVEYSIM_OUT_DIR", "")

	path := filepath.Join(t.TempDir(), "surveysim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("organization: Globex\nseed: 7\nsentiment:\n  count: 25\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Globex", cfg.Organization)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 25, cfg.Sentiment.Count)
	assert.Equal(t, "RESP_%04d", cfg.Sentiment.IDFormat)
	assert.Len(t, cfg.Phases, 2)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "surveysim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: [not a number\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SURVEYSIM_SEED", "1234")
	t.Setenv("SURVEYSIM_OUT_DIR", "/tmp/surveysim-out")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, int64(1234), cfg.Seed)
	assert.Equal(t, "/tmp/surveysim-out", cfg.OutDir)

	t.Setenv("SURVEYSIM_SEED", "forty-two")
	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	cases := map[string]func(*Config){
		"no organization":    func(c *Config) { c.Organization = "" },
		"bad company id":     func(c *Config) { c.Company.ID = "acme" },
		"no baseline wave":   func(c *Config) { c.Baseline.Wave = "" },
		"zero batch":         func(c *Config) { c.SQL.BatchSize = 0 },
		"negative threshold": func(c *Config) { c.Spread.MinStd = -1 },
		"bad generator":      func(c *Config) { c.Sentiment.Count = 0 },
		"phase order":        func(c *Config) { c.Phases[1].Number = 2 },
		"duplicate wave":     func(c *Config) { c.Phases[1].Wave = c.Phases[0].Wave },
		"reused wave":        func(c *Config) { c.Phases[0].Wave = c.Baseline.Wave },
		"unknown profile":    func(c *Config) { c.Phases[0].Sentiment.Profile = "likert" },
		"wrong profile kind": func(c *Config) { c.Phases[0].Capability.Profile = "sentiment" },
		"missing prefix":     func(c *Config) { c.Phases[0].Retag.Prefix = "" },
		"empty code":         func(c *Config) { c.Phases[0].Interventions[0].Code = "" },
		"untargeted effect":  func(c *Config) { c.Phases[0].Sentiment.Effects[0].Targets = nil },
		"bad timeout":        func(c *Config) { c.Narrate.Timeout = "soon" },
		"negative timeout":   func(c *Config) { c.Narrate.Timeout = "-5s" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNarrateConfig_Deadline(t *testing.T) {
	d, err := NarrateConfig{}.Deadline()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)

	d, err = NarrateConfig{Timeout: "90s"}.Deadline()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)
}
