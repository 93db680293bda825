package schema

// Story is the top-level transformation story document.
type Story struct {
	Tool         string         `json:"tool"`
	Version      string         `json:"version"`
	Organization string         `json:"organization"`
	Company      string         `json:"company"`
	Seed         int64          `json:"seed"`
	Inputs       []Input        `json:"inputs"`
	Phases       []PhaseSummary `json:"phases"`
	Totals       Totals         `json:"totals"`
	Meta         Meta           `json:"meta"`
}

// Input records a file the baseline was loaded from. Generated baselines
// have no inputs.
type Input struct {
	Dataset string `json:"dataset"`
	Path    string `json:"path"`
	Hash    string `json:"hash"` // sha256 of the file as read
	Rows    int    `json:"rows"`
}

// PhaseSummary describes one assessment period. Phase 1 is the baseline.
type PhaseSummary struct {
	Number        int      `json:"number"`
	Name          string   `json:"name"`
	Date          string   `json:"date"`
	SurveyWave    string   `json:"survey_wave"`
	Description   string   `json:"description,omitempty"`
	Interventions []string `json:"interventions"`
	// Cumulative lists every intervention applied up to and including this
	// phase, sorted.
	Cumulative  []string    `json:"cumulative_interventions"`
	Respondents int         `json:"respondents"`
	Sentiment   DatasetStat `json:"sentiment"`
	Capability  DatasetStat `json:"capability"`
	Notes       []string    `json:"notes"`
}

// DatasetStat holds aggregate statistics of one dataset in one phase.
// Deltas are zero for the baseline.
type DatasetStat struct {
	Records           int     `json:"records"`
	Mean              float64 `json:"mean"`
	DeltaPrevious     float64 `json:"delta_previous"`
	DeltaBaseline     float64 `json:"delta_baseline"`
	PercentChange     float64 `json:"percent_change"`
	PercentChangeBase float64 `json:"percent_change_baseline"`
}

// Totals summarizes the whole journey.
type Totals struct {
	Phases          int      `json:"phases"`
	Interventions   []string `json:"interventions"`
	SentimentDelta  float64  `json:"sentiment_delta"`
	CapabilityDelta float64  `json:"capability_delta"`
	SentimentPct    float64  `json:"sentiment_percent_change"`
	CapabilityPct   float64  `json:"capability_percent_change"`
}

// Meta holds runtime metadata about how notes were produced.
type Meta struct {
	GeneratedAt string `json:"generated_at"`
	RunID       string `json:"run_id"`
	NotesModel  string `json:"notes_model,omitempty"`
}

// Package is a single-file upload bundle for one phase.
type Package struct {
	Metadata       PackageMetadata `json:"metadata"`
	SentimentData  []SentimentRow  `json:"sentiment_data"`
	CapabilityData []CapabilityRow `json:"capability_data"`
}

// PackageMetadata describes the packaged phase.
type PackageMetadata struct {
	Phase          int                `json:"phase"`
	Name           string             `json:"name"`
	AssessmentDate string             `json:"assessment_date"`
	Description    string             `json:"description,omitempty"`
	Interventions  []string           `json:"interventions_applied"`
	Improvements   map[string]float64 `json:"improvements_from_baseline"`
}

// SentimentRow is one respondent in canonical column naming. Missing answers
// are null.
type SentimentRow map[string]any

// CapabilityRow is one construct score in canonical column naming.
type CapabilityRow struct {
	RespondentID string  `json:"respondent_id"`
	DimensionID  int     `json:"dimension_id"`
	Dimension    string  `json:"dimension"`
	ConstructID  int     `json:"construct_id"`
	Construct    string  `json:"construct"`
	Score        float64 `json:"score"`
	Industry     string  `json:"industry_synthetic"`
	Country      string  `json:"country_synthetic"`
	Continent    string  `json:"continent_synthetic"`
	Role         string  `json:"role_synthetic"`
}

// NotesResponse is the JSON object a narration model returns. Keys are phase
// numbers as strings.
type NotesResponse struct {
	Notes map[string][]string `json:"notes"`
}
