// Package journey runs a configured sequence of phases over a baseline and
// assembles the transformation story.
package journey

import (
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/surveysim/internal/config"
	"github.com/dshills/surveysim/internal/generate"
	"github.com/dshills/surveysim/internal/phase"
	"github.com/dshills/surveysim/internal/schema"
	"github.com/dshills/surveysim/internal/survey"
	"github.com/dshills/surveysim/internal/table"
)

// Version is reported in the story document.
var Version = "dev"

// Baseline is the phase 1 population of both datasets.
type Baseline struct {
	Sentiment  survey.Sentiment
	Capability survey.Capability
	Inputs     []schema.Input
}

// Generate builds a synthetic baseline. Capability rows are drawn for every
// generated respondent.
func Generate(cfg *config.Config, rng *rand.Rand) (Baseline, error) {
	sent, err := generate.Sentiment(cfg.Sentiment, rng)
	if err != nil {
		return Baseline{}, err
	}
	capab, err := generate.Capability(cfg.Capability, sent.IDs(), rng)
	if err != nil {
		return Baseline{}, err
	}
	return Baseline{Sentiment: sent, Capability: capab}, nil
}

// Load reads a baseline from CSV files. An empty capabilityPath generates
// capability rows for the loaded respondents instead.
func Load(cfg *config.Config, sentimentPath, capabilityPath string, rng *rand.Rand) (Baseline, error) {
	sent, st, err := table.LoadSentiment(sentimentPath)
	if err != nil {
		return Baseline{}, fmt.Errorf("loading sentiment baseline: %w", err)
	}
	b := Baseline{
		Sentiment: sent,
		Inputs:    []schema.Input{{Dataset: "sentiment", Path: st.Path, Hash: st.Hash, Rows: len(st.Rows)}},
	}
	if capabilityPath == "" {
		b.Capability, err = generate.Capability(cfg.Capability, sent.DistinctIDs(), rng)
		if err != nil {
			return Baseline{}, err
		}
		return b, nil
	}
	capab, ct, err := table.LoadCapability(capabilityPath)
	if err != nil {
		return Baseline{}, fmt.Errorf("loading capability baseline: %w", err)
	}
	b.Capability = capab
	b.Inputs = append(b.Inputs, schema.Input{Dataset: "capability", Path: ct.Path, Hash: ct.Hash, Rows: len(ct.Rows)})
	return b, nil
}

// Period is one assessment period's data: the baseline or a derived phase.
type Period struct {
	Number     int
	Name       string
	Date       string
	Wave       string
	Slug       string
	Codes      []string
	Names      map[string]string
	Sentiment  survey.Sentiment
	Capability survey.Capability
	Summary    schema.PhaseSummary
}

// Result is the outcome of a journey run. Periods[0] is the baseline.
type Result struct {
	Periods []Period
	Story   *schema.Story
}

// Run applies every configured phase in order, feeding each phase's output
// into the next, and summarizes every period against its predecessor and the
// baseline.
func Run(cfg *config.Config, base Baseline, rng *rand.Rand, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}

	first := Period{
		Number:     1,
		Name:       cfg.Baseline.Name,
		Date:       cfg.Baseline.Date,
		Wave:       cfg.Baseline.Wave,
		Slug:       cfg.Baseline.Slug,
		Sentiment:  base.Sentiment,
		Capability: base.Capability,
	}
	first.Summary = summarize(first, first, first, nil, cfg.Baseline.Notes, "")
	periods := []Period{first}
	log.Info("baseline",
		zap.Int("respondents", first.Summary.Respondents),
		zap.Float64("sentiment_mean", first.Summary.Sentiment.Mean),
		zap.Float64("capability_mean", first.Summary.Capability.Mean),
	)

	seen := make(map[string]int)
	if err := claim(seen, 1, base.Sentiment.DistinctIDs(), base.Capability.DistinctIDs()); err != nil {
		return nil, err
	}

	var cumulative []string
	prev := first
	for _, pc := range cfg.Phases {
		warnNoOpEffects(pc, log)
		next, err := applyPhase(pc, prev, rng)
		if err != nil {
			return nil, fmt.Errorf("phase %d (%s): %w", pc.Number, pc.Name, err)
		}
		if err := claim(seen, pc.Number, next.Sentiment.DistinctIDs(), next.Capability.DistinctIDs()); err != nil {
			return nil, fmt.Errorf("phase %d (%s): %w", pc.Number, pc.Name, err)
		}

		for _, c := range next.Codes {
			if !slices.Contains(cumulative, c) {
				cumulative = append(cumulative, c)
			}
		}
		slices.Sort(cumulative)
		next.Summary = summarize(next, prev, first, slices.Clone(cumulative), pc.Notes, pc.Description)
		periods = append(periods, next)

		log.Info("phase applied",
			zap.Int("phase", next.Number),
			zap.String("name", next.Name),
			zap.Strings("interventions", next.Codes),
			zap.Float64("sentiment_delta", next.Summary.Sentiment.DeltaPrevious),
			zap.Float64("capability_delta", next.Summary.Capability.DeltaPrevious),
		)
		prev = next
	}

	return &Result{Periods: periods, Story: buildStory(cfg, base, periods, cumulative)}, nil
}

func applyPhase(pc config.Phase, prev Period, rng *rand.Rand) (Period, error) {
	ss, err := pc.Sentiment.Step(pc.Retag)
	if err != nil {
		return Period{}, fmt.Errorf("sentiment: %w", err)
	}
	cs, err := pc.Capability.Step(pc.Retag)
	if err != nil {
		return Period{}, fmt.Errorf("capability: %w", err)
	}
	sent, err := phase.Apply(prev.Sentiment, ss, rng)
	if err != nil {
		return Period{}, fmt.Errorf("sentiment: %w", err)
	}
	capab, err := phase.Apply(prev.Capability, cs, rng)
	if err != nil {
		return Period{}, fmt.Errorf("capability: %w", err)
	}

	names := make(map[string]string, len(pc.Interventions))
	for _, iv := range pc.Interventions {
		names[iv.Code] = iv.Name
	}
	return Period{
		Number:     pc.Number,
		Name:       pc.Name,
		Date:       pc.Date,
		Wave:       pc.Wave,
		Slug:       pc.Slug,
		Codes:      pc.Codes(),
		Names:      names,
		Sentiment:  sent,
		Capability: capab,
	}, nil
}

// warnNoOpEffects logs every effect of pc that can never change a score.
func warnNoOpEffects(pc config.Phase, log *zap.Logger) {
	for _, ds := range []struct {
		name    string
		effects []phase.Effect
	}{
		{"sentiment", pc.Sentiment.Effects},
		{"capability", pc.Capability.Effects},
	} {
		for _, e := range ds.effects {
			if e.IsZero() {
				log.Warn("effect never changes a score",
					zap.Int("phase", pc.Number),
					zap.String("dataset", ds.name),
					zap.String("code", e.Code),
				)
			}
		}
	}
}

// claim records ids as belonging to phase n and rejects ids already used by
// an earlier phase.
func claim(seen map[string]int, n int, idSets ...[]string) error {
	for _, ids := range idSets {
		for _, id := range ids {
			if owner, ok := seen[id]; ok && owner != n {
				return fmt.Errorf("%w: %q already used in phase %d", phase.ErrIDCollision, id, owner)
			}
			seen[id] = n
		}
	}
	return nil
}

func summarize(cur, prev, base Period, cumulative, notes []string, description string) schema.PhaseSummary {
	if cumulative == nil {
		cumulative = []string{}
	}
	codes := cur.Codes
	if codes == nil {
		codes = []string{}
	}
	return schema.PhaseSummary{
		Number:        cur.Number,
		Name:          cur.Name,
		Date:          cur.Date,
		SurveyWave:    cur.Wave,
		Description:   description,
		Interventions: codes,
		Cumulative:    cumulative,
		Respondents:   len(cur.Sentiment.DistinctIDs()),
		Sentiment:     stat(cur.Sentiment, prev.Sentiment, base.Sentiment),
		Capability:    stat(cur.Capability, prev.Capability, base.Capability),
		Notes:         slices.Clone(notes),
	}
}

func stat[R survey.Record[R]](cur, prev, base survey.Population[R]) schema.DatasetStat {
	mean := phase.Mean(cur)
	return schema.DatasetStat{
		Records:           cur.Len(),
		Mean:              mean,
		DeltaPrevious:     phase.Delta(cur, prev),
		DeltaBaseline:     phase.Delta(cur, base),
		PercentChange:     phase.PercentChange(mean, phase.Mean(prev)),
		PercentChangeBase: phase.PercentChange(mean, phase.Mean(base)),
	}
}

func buildStory(cfg *config.Config, base Baseline, periods []Period, cumulative []string) *schema.Story {
	summaries := make([]schema.PhaseSummary, len(periods))
	for i, p := range periods {
		summaries[i] = p.Summary
	}
	last := summaries[len(summaries)-1]
	if cumulative == nil {
		cumulative = []string{}
	}
	inputs := base.Inputs
	if inputs == nil {
		inputs = []schema.Input{}
	}
	return &schema.Story{
		Tool:         "surveysim",
		Version:      Version,
		Organization: cfg.Organization,
		Company:      cfg.Company.Slug,
		Seed:         cfg.Seed,
		Inputs:       inputs,
		Phases:       summaries,
		Totals: schema.Totals{
			Phases:          len(periods),
			Interventions:   cumulative,
			SentimentDelta:  last.Sentiment.DeltaBaseline,
			CapabilityDelta: last.Capability.DeltaBaseline,
			SentimentPct:    last.Sentiment.PercentChangeBase,
			CapabilityPct:   last.Capability.PercentChangeBase,
		},
		Meta: schema.Meta{
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			RunID:       uuid.NewString(),
		},
	}
}
