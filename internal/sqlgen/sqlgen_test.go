package sqlgen

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/surveysim/internal/survey"
)

func samplePeriod() Period {
	return Period{
		Name:        "March 2025 - Phase 2",
		Date:        "2025-03-15",
		Wave:        "mar-2025-phase2",
		Description: "Follow-up after A1, B2 and C1",
		Interventions: []Intervention{
			{Code: "A1", Name: "AI Strategy & Governance Framework"},
			{Code: "B2", Name: "Leaders' AI Literacy"},
		},
		AppliedIn: "oct-2024-baseline",
	}
}

func respondents(n int) survey.Sentiment {
	recs := make([]*survey.Respondent, n)
	for i := range recs {
		recs[i] = &survey.Respondent{
			ID: fmt.Sprintf("MAR25_RESP_%04d", i+1), Region: "Europe", Department: "Sales",
			EmploymentType: "<3 year", Age: "25-35", Language: "EN", Industry: "Financial Services",
			Continent: "Europe", Scores: map[int]float64{1: 2.346, 2: 1},
		}
	}
	return survey.NewPopulation(recs)
}

func capability(n int) survey.Capability {
	recs := make([]*survey.CapabilityScore, n)
	for i := range recs {
		recs[i] = &survey.CapabilityScore{
			ID: "MAR25_RESP_0001", DimensionID: 1, Dimension: "Strategy and Vision", ConstructID: i%4 + 1,
			Construct: "Alignment", Score: 4.6, Industry: "Financial Services", Country: "USA",
			Continent: "North America", Role: "Analyst",
		}
	}
	return survey.NewPopulation(recs)
}

func render(t *testing.T, sent survey.Sentiment, capab survey.Capability, opts Options) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, Write(&sb, samplePeriod(), sent, capab, opts))
	return sb.String()
}

func TestWrite_BatchesOfFifty(t *testing.T) {
	out := render(t, respondents(120), capability(51), Options{CompanySlug: "acme-wealth"})

	assert.Equal(t, 3, strings.Count(out, "INSERT INTO respondents ("))
	assert.Equal(t, 2, strings.Count(out, "INSERT INTO capability_scores ("))
	// period + interventions + 3 sentiment batches + 2 capability batches
	assert.Equal(t, 7, strings.Count(out, "ON CONFLICT DO NOTHING;"))
	assert.Equal(t, 120+51, strings.Count(out, "'MAR25_RESP_"))
}

func TestWrite_CustomBatchSize(t *testing.T) {
	out := render(t, respondents(10), capability(0), Options{CompanySlug: "acme-wealth", BatchSize: 3})
	assert.Equal(t, 4, strings.Count(out, "INSERT INTO respondents ("))
	assert.Equal(t, 0, strings.Count(out, "INSERT INTO capability_scores ("))
}

func TestWrite_ValuesFormatting(t *testing.T) {
	out := render(t, respondents(1), capability(1), Options{CompanySlug: "acme-wealth"})

	assert.Contains(t, out, "'mar-2025-phase2', '2025-03-15', 2.35, 1.00, NULL, NULL")
	assert.Contains(t, out, "'Strategy and Vision', 1, 'Alignment', 4.60, 'Financial Services'")
	assert.Contains(t, out, "'Leaders'' AI Literacy'")
	assert.Contains(t, out, "ARRAY['A1', 'B2']::TEXT[]")
	assert.Contains(t, out, "survey_wave = 'oct-2024-baseline'")
}

func TestWrite_CompanyReference(t *testing.T) {
	out := render(t, respondents(1), capability(0), Options{CompanySlug: "acme-wealth"})
	assert.Contains(t, out, "(SELECT id FROM companies WHERE name = 'acme-wealth')")
	assert.NotContains(t, out, "COALESCE")

	out = render(t, respondents(1), capability(0), Options{
		CompanySlug: "acme-wealth",
		CompanyID:   "550e8400-e29b-41d4-a716-446655440001",
	})
	assert.Contains(t, out, "COALESCE((SELECT id FROM companies WHERE name = 'acme-wealth'), '550e8400-e29b-41d4-a716-446655440001'::UUID)")
}

func TestWrite_EndsWithCountUpdate(t *testing.T) {
	out := render(t, respondents(2), capability(2), Options{CompanySlug: "acme-wealth"})
	assert.True(t, strings.HasSuffix(out, "WHERE survey_wave = 'mar-2025-phase2';\n"), out[len(out)-80:])
	assert.Less(t, strings.LastIndex(out, "INSERT INTO capability_scores"), strings.Index(out, "UPDATE assessment_periods"))
}

func TestWrite_NoInterventions(t *testing.T) {
	p := samplePeriod()
	p.Interventions = nil
	var sb strings.Builder
	require.NoError(t, Write(&sb, p, respondents(1), capability(0), Options{CompanySlug: "acme-wealth"}))
	assert.NotContains(t, sb.String(), "INSERT INTO applied_interventions")
	assert.Contains(t, sb.String(), "ARRAY[]::TEXT[]")
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "'it''s'", Quote("it's"))
	assert.Equal(t, "''", Quote(""))
}
