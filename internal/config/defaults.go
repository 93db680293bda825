package config

import (
	"github.com/dshills/surveysim/internal/generate"
	"github.com/dshills/surveysim/internal/phase"
)

// DefaultConfig returns the Acme Wealth Advisors journey: an October 2024
// baseline followed by two additive intervention phases.
func DefaultConfig() *Config {
	return &Config{
		Organization: "Acme Wealth Advisors",
		Company: Company{
			Slug: "acme-wealth",
			ID:   "550e8400-e29b-41d4-a716-446655440001",
		},
		Seed:   42,
		OutDir: "journey",
		Baseline: Baseline{
			Name: "Oct 2024 Baseline",
			Date: "2024-10-15",
			Wave: "oct-2024-baseline",
			Slug: "oct_2024_baseline",
			Notes: []string{
				"Low trust in AI autonomy",
				"Limited strategic alignment",
				"Gaps in talent readiness",
				"Innovation capability nascent",
			},
		},
		Sentiment:  generate.DefaultSentiment(),
		Capability: generate.DefaultCapability(),
		Phases:     []Phase{marchPhase2(), novemberPhase3()},
		SQL:        SQLConfig{BatchSize: 50},
		Spread:     SpreadConfig{MinStd: 0.3, MinRange: 1.0},
		Narrate: NarrateConfig{
			Model:   "anthropic:claude-sonnet-4-6",
			Timeout: "60s",
		},
	}
}

func questions(from, to int) []int {
	qs := make([]int, 0, to-from+1)
	for q := from; q <= to; q++ {
		qs = append(qs, q)
	}
	return qs
}

func additive(code string, targets []int, mean, std float64) phase.Effect {
	return phase.Effect{Code: code, Targets: targets, Policy: phase.Additive, Mean: mean, Std: std}
}

func marchPhase2() Phase {
	return Phase{
		Number:      2,
		Name:        "March 2025 - Phase 2",
		Date:        "2025-03-15",
		Wave:        "mar-2025-phase2",
		Slug:        "march_2025_phase2",
		Description: "Follow-up assessment after the strategy, literacy and innovation programs.",
		Interventions: []Intervention{
			{Code: "A1", Name: "AI Strategy & Governance Framework"},
			{Code: "B2", Name: "AI Literacy & Training Program"},
			{Code: "C1", Name: "Innovation Labs & Experimentation"},
		},
		Retag: phase.RetagRule{Prefix: "MAR25_"},
		Sentiment: Effects{
			Profile: "sentiment-wide",
			Effects: []phase.Effect{
				additive("A1", questions(21, 25), 0.5, 0.1),
				additive("B2", questions(6, 10), 0.4, 0.08),
				additive("C1", questions(16, 20), 0.4, 0.08),
			},
			Ambient: additive("", nil, 0.3, 0.05),
			Scope:   phase.ScopeAll,
		},
		Capability: Effects{
			Profile: "capability-5",
			Effects: []phase.Effect{
				additive("A1", []int{1}, 0.6, 0.1),
				additive("B2", []int{4}, 0.5, 0.1),
				additive("C1", []int{6}, 0.4, 0.1),
				additive("B2", []int{7}, 0.5, 0.1),
			},
			Ambient: additive("", nil, 0.3, 0.05),
			Scope:   phase.ScopeUntargeted,
		},
		Notes: []string{
			"Strategy clarity improved",
			"Collaboration trust up",
			"Training effectiveness visible",
			"Innovation culture emerging",
		},
	}
}

func novemberPhase3() Phase {
	return Phase{
		Number:      3,
		Name:        "Nov 2025 - Phase 3",
		Date:        "2025-11-15",
		Wave:        "nov-2025-phase3",
		Slug:        "nov_2025_phase3",
		Description: "Transformation assessment after the ethics, change management and product programs.",
		Interventions: []Intervention{
			{Code: "A3", Name: "AI Ethics & Responsible AI Program"},
			{Code: "B3", Name: "Change Management & Communication"},
			{Code: "C2", Name: "AI Product Development Pipeline"},
		},
		Retag: phase.RetagRule{Prefix: "NOV25_", Strip: []string{"MAR25_"}},
		Sentiment: Effects{
			Profile: "sentiment-wide",
			Effects: []phase.Effect{
				additive("A3", questions(11, 15), 0.4, 0.08),
				additive("B3", questions(1, 5), 0.4, 0.08),
				additive("C2", questions(16, 20), 0.3, 0.06),
			},
			Ambient: additive("", nil, 0.4, 0.06),
			Scope:   phase.ScopeAll,
		},
		Capability: Effects{
			Profile: "capability-5",
			Effects: []phase.Effect{
				additive("A3", []int{8}, 0.7, 0.1),
				additive("B3", []int{5}, 0.6, 0.1),
				additive("C2", []int{6}, 0.5, 0.1),
				additive("C2", []int{2}, 0.5, 0.1),
				additive("C2", []int{3}, 0.5, 0.1),
			},
			Ambient: additive("", nil, 0.4, 0.06),
			Scope:   phase.ScopeUntargeted,
		},
		Notes: []string{
			"Ethics and responsibility embedded",
			"Organizational readiness achieved",
			"Sustained adoption patterns",
			"Culture shift measurable across all levels",
		},
	}
}

// MultiplicativePhase3 is the single-step alternative to the two additive
// phases: applied directly to the baseline, it halves sentiment resistance
// (floored at 1.0) and scales capability scores by 25-35% (capped at 7.0).
func MultiplicativePhase3() Phase {
	scale := func(code string, dims []int, factor float64) phase.Effect {
		return phase.Effect{Code: code, Targets: dims, Policy: phase.Multiplicative, Mean: factor}
	}
	return Phase{
		Number:      3,
		Name:        "Nov 2025 - Phase 3",
		Date:        "2025-11-15",
		Wave:        "nov-2025-phase3",
		Slug:        "phase3_upload",
		Description: "Complete transformation after all 6 interventions",
		Interventions: []Intervention{
			{Code: "A1", Name: "AI Strategy & Governance Framework"},
			{Code: "A3", Name: "AI Ethics & Responsible AI Program"},
			{Code: "B2", Name: "AI Literacy & Training Program"},
			{Code: "B3", Name: "Change Management & Communication"},
			{Code: "C1", Name: "Innovation Labs & Experimentation"},
			{Code: "C2", Name: "AI Product Development Pipeline"},
		},
		Retag: phase.RetagRule{Prefix: "P3_"},
		Sentiment: Effects{
			Profile: "sentiment-wide",
			Ambient: phase.Effect{Policy: phase.Multiplicative, Mean: 0.5},
			Scope:   phase.ScopeAll,
		},
		Capability: Effects{
			Profile: "capability",
			Effects: []phase.Effect{
				scale("A1", []int{1, 8}, 1.35),
				scale("B2", []int{4, 6, 7}, 1.30),
			},
			Ambient: phase.Effect{Policy: phase.Multiplicative, Mean: 1.25},
			Scope:   phase.ScopeUntargeted,
		},
		Notes: []string{
			"-50% resistance (major improvement)",
			"+25-35% maturity",
		},
	}
}
