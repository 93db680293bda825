package generate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/surveysim/internal/survey"
)

// Normal is a (mean, std) pair for a normal distribution.
type Normal struct {
	Mean float64 `yaml:"mean"`
	Std  float64 `yaml:"std"`
}

// Override replaces the level default for specific categories of a level.
type Override struct {
	Level      int   `yaml:"level"`
	Categories []int `yaml:"categories"`
	Normal     `yaml:",inline"`
}

// Distribution maps a question's level and category to a score distribution.
type Distribution struct {
	Levels         map[int]Normal  `yaml:"levels"`
	Overrides      []Override      `yaml:"overrides"`
	CategoryAdjust map[int]float64 `yaml:"category_adjust"`
}

// Pools holds the categorical value pools demographic attributes are drawn
// from. Industries and Continents may be empty, in which case the documented
// placeholders are used.
type Pools struct {
	Regions         []string `yaml:"regions"`
	Departments     []string `yaml:"departments"`
	EmploymentTypes []string `yaml:"employment_types"`
	Ages            []string `yaml:"ages"`
	Languages       []string `yaml:"languages"`
	Industries      []string `yaml:"industries"`
	Continents      []string `yaml:"continents"`
}

// SentimentConfig configures baseline respondent generation.
type SentimentConfig struct {
	Count        int          `yaml:"count"`
	IDFormat     string       `yaml:"id_format"`
	Pools        Pools        `yaml:"pools"`
	Distribution Distribution `yaml:"distribution"`
	Range        survey.Bound `yaml:"range"`
	Precision    int          `yaml:"precision"`
}

// Dimension is a capability dimension and its constructs.
type Dimension struct {
	ID         int      `yaml:"id"`
	Name       string   `yaml:"name"`
	Constructs []string `yaml:"constructs"`
}

// CapabilityConfig configures baseline capability score generation.
type CapabilityConfig struct {
	Dimensions []Dimension  `yaml:"dimensions"`
	Score      Normal       `yaml:"score"`
	Range      survey.Bound `yaml:"range"`
	Precision  int          `yaml:"precision"`
	Industry   string       `yaml:"industry"`
	Country    string       `yaml:"country"`
	Continent  string       `yaml:"continent"`
	Role       string       `yaml:"role"`
}

// Placeholders used when an attribute has no pool or no column.
const (
	DefaultIndustry       = "Financial Services"
	DefaultContinent      = "North America"
	DefaultRegion         = "Unknown"
	DefaultDepartment     = "Unknown"
	DefaultEmploymentType = "Full-time"
	DefaultAge            = "30-39"
	DefaultLanguage       = "en"
)

// DefaultSentiment returns the configuration of the original realistic
// sentiment generator: 500 respondents on a 1.0-3.0 resistance scale.
func DefaultSentiment() SentimentConfig {
	return SentimentConfig{
		Count:    500,
		IDFormat: "RESP_%04d",
		Pools: Pools{
			Regions:         []string{"North America", "Europe", "Asia Pacific"},
			Departments:     []string{"Engineering", "Product", "Sales", "Marketing", "Operations", "HR", "Finance"},
			EmploymentTypes: []string{"<3 year", "3-10 year", "10-20 year", ">20 year"},
			Ages:            []string{"<25", "25-35", "35-45", "45-55", "55+"},
			Languages:       []string{"EN"},
		},
		Distribution: Distribution{
			Levels: map[int]Normal{
				1: {Mean: 2.3, Std: 0.35}, // personal
				2: {Mean: 2.3, Std: 0.35}, // collaboration
				3: {Mean: 2.0, Std: 0.4},  // trust and fairness
				4: {Mean: 1.8, Std: 0.35}, // career security
				5: {Mean: 1.6, Std: 0.4},  // org stability
			},
			Overrides: []Override{
				{Level: 4, Categories: []int{1, 4}, Normal: Normal{Mean: 2.4, Std: 0.3}},
				{Level: 5, Categories: []int{4}, Normal: Normal{Mean: 2.5, Std: 0.3}},
			},
			CategoryAdjust: map[int]float64{3: -0.2, 4: 0.2},
		},
		Range:     survey.Bound{Lower: 1.0, Upper: 3.0},
		Precision: 1,
	}
}

// DefaultCapability returns the 8x4 capability model of the original
// regeneration script.
func DefaultCapability() CapabilityConfig {
	return CapabilityConfig{
		Dimensions: []Dimension{
			{ID: 1, Name: "Strategy and Vision", Constructs: []string{"Alignment with Business Goals", "Clear AI Vision", "Leadership Commitment", "Strategic Roadmap"}},
			{ID: 2, Name: "Data", Constructs: []string{"Data Quality", "Data Accessibility", "Data Governance", "Data Infrastructure"}},
			{ID: 3, Name: "Technology", Constructs: []string{"AI Tools & Platforms", "Technical Infrastructure", "Integration Capabilities", "Scalability"}},
			{ID: 4, Name: "Talent and Skills", Constructs: []string{"AI Skills & Expertise", "Training Programs", "Talent Retention", "Knowledge Sharing"}},
			{ID: 5, Name: "Organisation and Processes", Constructs: []string{"Process Optimization", "Organizational Structure", "Cross-functional Collaboration", "Change Management"}},
			{ID: 6, Name: "Innovation", Constructs: []string{"Innovation Culture", "Experimentation", "Risk Appetite", "Learning from Failure"}},
			{ID: 7, Name: "Adaptation and Adoption", Constructs: []string{"User Adoption", "Flexibility", "Continuous Improvement", "Feedback Mechanisms"}},
			{ID: 8, Name: "Ethics and Responsibility", Constructs: []string{"Ethical Guidelines", "Transparency", "Fairness & Bias Mitigation", "Regulatory Compliance"}},
		},
		Score:     Normal{Mean: 4.0, Std: 0.6},
		Range:     survey.Bound{Lower: 1.0, Upper: 7.0},
		Precision: 2,
		Industry:  DefaultIndustry,
		Country:   "United States",
		Continent: DefaultContinent,
		Role:      "Professional",
	}
}

// Validate reports the first configuration problem found.
func (c SentimentConfig) Validate() error {
	if c.Count <= 0 {
		return fmt.Errorf("count must be > 0, got %d", c.Count)
	}
	if c.IDFormat == "" {
		return errors.New("id_format is required")
	}
	if strings.Contains(fmt.Sprintf(c.IDFormat, 1), "%!") {
		return fmt.Errorf("id_format %q must hold exactly one integer verb", c.IDFormat)
	}
	required := []struct {
		name string
		pool []string
	}{
		{"regions", c.Pools.Regions},
		{"departments", c.Pools.Departments},
		{"employment_types", c.Pools.EmploymentTypes},
		{"ages", c.Pools.Ages},
		{"languages", c.Pools.Languages},
	}
	for _, r := range required {
		if len(r.pool) == 0 {
			return fmt.Errorf("pool %q is empty", r.name)
		}
	}
	if err := c.Range.Validate(); err != nil {
		return fmt.Errorf("range: %w", err)
	}
	if c.Precision < 0 {
		return fmt.Errorf("precision must be >= 0, got %d", c.Precision)
	}
	for level := 1; level <= levels; level++ {
		n, ok := c.Distribution.Levels[level]
		if !ok {
			return fmt.Errorf("distribution: level %d has no default", level)
		}
		if n.Std < 0 {
			return fmt.Errorf("distribution: level %d std must be >= 0, got %g", level, n.Std)
		}
	}
	for i, o := range c.Distribution.Overrides {
		if o.Level < 1 || o.Level > levels {
			return fmt.Errorf("distribution: override[%d] level %d out of range 1..%d", i, o.Level, levels)
		}
		if len(o.Categories) == 0 {
			return fmt.Errorf("distribution: override[%d] has no categories", i)
		}
		for _, cat := range o.Categories {
			if cat < 1 || cat > categories {
				return fmt.Errorf("distribution: override[%d] category %d out of range 1..%d", i, cat, categories)
			}
		}
		if o.Std < 0 {
			return fmt.Errorf("distribution: override[%d] std must be >= 0, got %g", i, o.Std)
		}
	}
	return nil
}

// Validate reports the first configuration problem found.
func (c CapabilityConfig) Validate() error {
	if len(c.Dimensions) == 0 {
		return errors.New("dimensions are empty")
	}
	seen := make(map[int]bool, len(c.Dimensions))
	for i, d := range c.Dimensions {
		if d.ID <= 0 {
			return fmt.Errorf("dimension[%d]: id must be > 0, got %d", i, d.ID)
		}
		if seen[d.ID] {
			return fmt.Errorf("dimension[%d]: duplicate id %d", i, d.ID)
		}
		seen[d.ID] = true
		if len(d.Constructs) == 0 {
			return fmt.Errorf("dimension %d (%s): constructs are empty", d.ID, d.Name)
		}
		// Construct ids are numbered by dimension id, which needs a shared width.
		if n := len(c.Dimensions[0].Constructs); len(d.Constructs) != n {
			return fmt.Errorf("dimension %d (%s): has %d constructs, want %d like dimension %d",
				d.ID, d.Name, len(d.Constructs), n, c.Dimensions[0].ID)
		}
	}
	if c.Score.Std < 0 {
		return fmt.Errorf("score std must be >= 0, got %g", c.Score.Std)
	}
	if err := c.Range.Validate(); err != nil {
		return fmt.Errorf("range: %w", err)
	}
	if c.Precision < 0 {
		return fmt.Errorf("precision must be >= 0, got %d", c.Precision)
	}
	return nil
}
