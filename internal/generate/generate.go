// Package generate produces baseline survey populations from configured
// value pools and per-question distributions.
//
// Every function takes the caller's *rand.Rand; identical seeds and
// configuration yield identical populations.
package generate

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/dshills/surveysim/internal/survey"
)

const (
	levels     = 5
	categories = 5
)

// Position returns the level (1..5) and category (1..5) of a 1-based
// question index within the 5x5 question grid.
func Position(question int) (level, category int) {
	return (question-1)/categories + 1, (question-1)%categories + 1
}

// Resolve returns the distribution for a question position: an override for
// the (level, category) pair if one exists, else the level default, with the
// category adjustment added to the mean.
func (d Distribution) Resolve(level, category int) (Normal, error) {
	n, ok := d.Levels[level]
	if !ok {
		return Normal{}, fmt.Errorf("no distribution for level %d", level)
	}
	for _, o := range d.Overrides {
		if o.Level == level && slices.Contains(o.Categories, category) {
			n = o.Normal
			break
		}
	}
	n.Mean += d.CategoryAdjust[category]
	return n, nil
}

// Sentiment generates cfg.Count respondents.
func Sentiment(cfg SentimentConfig, rng *rand.Rand) (survey.Sentiment, error) {
	if err := cfg.Validate(); err != nil {
		return survey.Sentiment{}, fmt.Errorf("invalid sentiment config: %w", err)
	}

	dists := make([]Normal, survey.QuestionCount+1)
	for q := 1; q <= survey.QuestionCount; q++ {
		n, err := cfg.Distribution.Resolve(Position(q))
		if err != nil {
			return survey.Sentiment{}, fmt.Errorf("question %d: %w", q, err)
		}
		dists[q] = n
	}

	records := make([]*survey.Respondent, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		r := &survey.Respondent{
			ID:             fmt.Sprintf(cfg.IDFormat, i+1),
			Region:         choose(rng, cfg.Pools.Regions, DefaultRegion),
			Department:     choose(rng, cfg.Pools.Departments, DefaultDepartment),
			EmploymentType: choose(rng, cfg.Pools.EmploymentTypes, DefaultEmploymentType),
			Age:            choose(rng, cfg.Pools.Ages, DefaultAge),
			Language:       choose(rng, cfg.Pools.Languages, DefaultLanguage),
			Industry:       choose(rng, cfg.Pools.Industries, DefaultIndustry),
			Continent:      choose(rng, cfg.Pools.Continents, DefaultContinent),
			Scores:         make(map[int]float64, survey.QuestionCount),
		}
		for q := 1; q <= survey.QuestionCount; q++ {
			r.Scores[q] = draw(rng, dists[q], cfg.Range, cfg.Precision)
		}
		records = append(records, r)
	}
	return survey.NewPopulation(records), nil
}

// Capability generates one score per construct of every dimension for each
// respondent id.
func Capability(cfg CapabilityConfig, ids []string, rng *rand.Rand) (survey.Capability, error) {
	if err := cfg.Validate(); err != nil {
		return survey.Capability{}, fmt.Errorf("invalid capability config: %w", err)
	}
	if len(ids) == 0 {
		return survey.Capability{}, fmt.Errorf("invalid capability config: no respondent ids")
	}

	var records []*survey.CapabilityScore
	for _, id := range ids {
		for _, d := range cfg.Dimensions {
			for k, construct := range d.Constructs {
				records = append(records, &survey.CapabilityScore{
					ID:          id,
					DimensionID: d.ID,
					Dimension:   d.Name,
					ConstructID: (d.ID-1)*len(d.Constructs) + k + 1,
					Construct:   construct,
					Score:       draw(rng, cfg.Score, cfg.Range, cfg.Precision),
					Industry:    cfg.Industry,
					Country:     cfg.Country,
					Continent:   cfg.Continent,
					Role:        cfg.Role,
				})
			}
		}
	}
	return survey.NewPopulation(records), nil
}

func choose(rng *rand.Rand, pool []string, fallback string) string {
	if len(pool) == 0 {
		return fallback
	}
	return pool[rng.Intn(len(pool))]
}

func draw(rng *rand.Rand, n Normal, b survey.Bound, precision int) float64 {
	v := n.Mean + rng.NormFloat64()*n.Std
	// Rounding can step past a bound that is not a multiple of the precision.
	return b.Clamp(survey.Round(b.Clamp(v), precision))
}
