package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dshills/surveysim/internal/schema"
)

func sampleStory() *schema.Story {
	return &schema.Story{
		Tool:         "surveysim",
		Version:      "1.0",
		Organization: "Acme Wealth Advisors",
		Company:      "acme-wealth",
		Seed:         42,
		Inputs: []schema.Input{
			{Dataset: "sentiment", Path: "sentiment_realistic.csv", Hash: "sha256:abc", Rows: 500},
		},
		Phases: []schema.PhaseSummary{
			{
				Number:        1,
				Name:          "Oct 2024 Baseline",
				Date:          "2024-10-15",
				SurveyWave:    "oct-2024-baseline",
				Interventions: []string{},
				Cumulative:    []string{},
				Respondents:   500,
				Sentiment:     schema.DatasetStat{Records: 500, Mean: 2.1},
				Capability:    schema.DatasetStat{Records: 16000, Mean: 4.0},
				Notes:         []string{"Low trust in AI autonomy"},
			},
			{
				Number:        2,
				Name:          "March 2025 - Phase 2",
				Date:          "2025-03-15",
				SurveyWave:    "mar-2025-phase2",
				Interventions: []string{"A1", "B2", "C1"},
				Cumulative:    []string{"A1", "B2", "C1"},
				Respondents:   500,
				Sentiment:     schema.DatasetStat{Records: 500, Mean: 2.5, DeltaPrevious: 0.4, DeltaBaseline: 0.4, PercentChange: 19.0476, PercentChangeBase: 19.0476},
				Capability:    schema.DatasetStat{Records: 16000, Mean: 4.4, DeltaPrevious: 0.4, DeltaBaseline: 0.4, PercentChange: 10, PercentChangeBase: 10},
				Notes:         []string{"Strategy clarity improved"},
			},
		},
		Totals: schema.Totals{
			Phases:          2,
			Interventions:   []string{"A1", "B2", "C1"},
			SentimentDelta:  0.4,
			CapabilityDelta: 0.4,
		},
		Meta: schema.Meta{GeneratedAt: "2025-01-01T00:00:00Z", RunID: "run-1"},
	}
}

func TestNewRenderer_JSON(t *testing.T) {
	r, err := NewRenderer("json")
	if err != nil {
		t.Fatalf("NewRenderer json: %v", err)
	}
	out, err := r.Render(sampleStory())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	var decoded schema.Story
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, out)
	}
	if len(decoded.Phases) != 2 || decoded.Phases[1].SurveyWave != "mar-2025-phase2" {
		t.Errorf("phases mismatch: %+v", decoded.Phases)
	}
	if r.Ext() != "json" {
		t.Errorf("Ext = %q, want json", r.Ext())
	}
}

func TestNewRenderer_DefaultIsJSON(t *testing.T) {
	r, err := NewRenderer("")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	if r.Ext() != "json" {
		t.Errorf("Ext = %q, want json", r.Ext())
	}
}

func TestNewRenderer_Markdown(t *testing.T) {
	r, err := NewRenderer("md")
	if err != nil {
		t.Fatalf("NewRenderer md: %v", err)
	}
	out, err := r.Render(sampleStory())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	s := string(out)
	for _, want := range []string{
		"# Acme Wealth Advisors Transformation Story",
		"## Phase 2: March 2025 - Phase 2",
		"**Interventions this phase:** A1, B2, C1",
		"| Sentiment | 2.500 | +0.400 (+19.0%)",
		"- Strategy clarity improved",
		"sha256:abc",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("markdown missing %q:\n%s", want, s)
		}
	}
	if !strings.Contains(s, "**Interventions this phase:** none") {
		t.Errorf("baseline should list no interventions:\n%s", s)
	}
}

func TestPackage_ProducesValidJSON(t *testing.T) {
	pkg := &schema.Package{
		Metadata: schema.PackageMetadata{Phase: 3, Name: "Nov 2025 - Phase 3", Interventions: []string{"A1"}},
		SentimentData: []schema.SentimentRow{
			{"respondent_id": "P3_RESP_0001", "sentiment_1": 1.0, "sentiment_2": nil},
		},
		CapabilityData: []schema.CapabilityRow{{RespondentID: "P3_RESP_0001", DimensionID: 1, Score: 5.4}},
	}
	out, err := Package(pkg)
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(out) {
		t.Errorf("package renderer produced invalid JSON: %s", out)
	}
	if !strings.Contains(string(out), `"sentiment_2": null`) {
		t.Errorf("missing answer should render as null: %s", out)
	}
}

func TestNewRenderer_UnknownFormat(t *testing.T) {
	_, err := NewRenderer("xml")
	if err == nil {
		t.Error("expected error for unknown format, got nil")
	}
}
