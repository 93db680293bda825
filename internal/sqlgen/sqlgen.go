// Package sqlgen renders a phase as a Postgres SQL script that creates the
// assessment period, records applied interventions, and bulk-inserts both
// datasets.
package sqlgen

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dshills/surveysim/internal/survey"
)

// DefaultBatchSize is the number of rows per INSERT statement.
const DefaultBatchSize = 50

// Options are the per-script settings.
type Options struct {
	CompanySlug string
	CompanyID   string
	BatchSize   int
}

// Intervention is one applied program.
type Intervention struct {
	Code string
	Name string
}

// Period describes the assessment period the rows belong to.
type Period struct {
	Name          string
	Date          string
	Wave          string
	Description   string
	Interventions []Intervention
	// AppliedIn is the wave the interventions were rolled out in. Empty
	// means Wave.
	AppliedIn string
}

// Quote returns s as a SQL string literal with single quotes doubled.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func score(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// Write renders the full script for one period.
func Write(w io.Writer, p Period, sent survey.Sentiment, capab survey.Capability, opts Options) error {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	bw := bufio.NewWriter(w)
	g := &gen{w: bw, p: p, company: companyRef(opts)}

	g.header()
	g.period()
	g.interventions()
	g.section("3. INSERT SENTIMENT DATA")
	g.sentiment(sent, opts.BatchSize)
	g.section("4. INSERT CAPABILITY DATA")
	g.capability(capab, opts.BatchSize)
	g.counts()
	return bw.Flush()
}

func companyRef(opts Options) string {
	ref := fmt.Sprintf("(SELECT id FROM companies WHERE name = %s)", Quote(opts.CompanySlug))
	if opts.CompanyID == "" {
		return ref
	}
	return fmt.Sprintf("COALESCE(%s, %s::UUID)", ref, Quote(opts.CompanyID))
}

type gen struct {
	w       *bufio.Writer
	p       Period
	company string
}

func (g *gen) line(format string, args ...any) {
	fmt.Fprintf(g.w, format, args...)
	g.w.WriteByte('\n')
}

func (g *gen) section(title string) {
	g.line("-- ============================================================================")
	g.line("-- %s", title)
	g.line("-- ============================================================================")
	g.line("")
}

func (g *gen) header() {
	g.line("-- %s assessment data", g.p.Name)
	if len(g.p.Interventions) > 0 {
		g.line("-- Interventions: %s", strings.Join(g.codes(), ", "))
	}
	g.line("")
}

func (g *gen) codes() []string {
	codes := make([]string, len(g.p.Interventions))
	for i, iv := range g.p.Interventions {
		codes[i] = iv.Code
	}
	return codes
}

func (g *gen) period() {
	g.section("1. CREATE ASSESSMENT PERIOD")
	quoted := make([]string, len(g.p.Interventions))
	for i, c := range g.codes() {
		quoted[i] = Quote(c)
	}
	g.line("INSERT INTO assessment_periods (")
	g.line("  company_id,")
	g.line("  survey_wave,")
	g.line("  assessment_date,")
	g.line("  name,")
	g.line("  description,")
	g.line("  interventions_applied,")
	g.line("  status")
	g.line(")")
	g.line("SELECT")
	g.line("  %s,", g.company)
	g.line("  %s,", Quote(g.p.Wave))
	g.line("  %s::DATE,", Quote(g.p.Date))
	g.line("  %s,", Quote(g.p.Name))
	g.line("  %s,", Quote(g.p.Description))
	g.line("  ARRAY[%s]::TEXT[],", strings.Join(quoted, ", "))
	g.line("  'active'")
	g.line("ON CONFLICT DO NOTHING;")
	g.line("")
}

func (g *gen) interventions() {
	g.section("2. INSERT APPLIED INTERVENTIONS")
	if len(g.p.Interventions) == 0 {
		g.line("-- none")
		g.line("")
		return
	}
	applied := g.p.AppliedIn
	if applied == "" {
		applied = g.p.Wave
	}
	periodRef := fmt.Sprintf("(SELECT id FROM assessment_periods WHERE survey_wave = %s AND company_id = %s)", Quote(applied), g.company)

	g.line("INSERT INTO applied_interventions (")
	g.line("  company_id,")
	g.line("  assessment_period_id,")
	g.line("  intervention_code,")
	g.line("  applied_date,")
	g.line("  status,")
	g.line("  notes")
	g.line(")")
	g.line("VALUES")
	rows := make([]string, len(g.p.Interventions))
	for i, iv := range g.p.Interventions {
		rows[i] = fmt.Sprintf("  (%s, %s, %s, %s, 'completed', %s)",
			g.company, periodRef, Quote(iv.Code), Quote(g.p.Date), Quote(iv.Name))
	}
	g.line("%s", strings.Join(rows, ",\n"))
	g.line("ON CONFLICT DO NOTHING;")
	g.line("")
}

func (g *gen) sentiment(p survey.Sentiment, batch int) {
	cols := make([]string, survey.QuestionCount)
	for q := range cols {
		cols[q] = fmt.Sprintf("sentiment_%d", q+1)
	}
	for start := 0; start < p.Len(); start += batch {
		end := min(start+batch, p.Len())
		g.line("INSERT INTO respondents (")
		g.line("  company_id, respondent_id, region, department, employment_type, age, user_language, industry, continent,")
		g.line("  survey_wave, assessment_date,")
		g.line("  %s", strings.Join(cols, ", "))
		g.line(") VALUES")
		rows := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			r := p.At(i)
			scores := make([]string, survey.QuestionCount)
			for q := 1; q <= survey.QuestionCount; q++ {
				if v, ok := r.Score(q); ok {
					scores[q-1] = score(v)
				} else {
					scores[q-1] = "NULL"
				}
			}
			rows = append(rows, fmt.Sprintf("  (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)",
				g.company, Quote(r.ID), Quote(r.Region), Quote(r.Department), Quote(r.EmploymentType),
				Quote(r.Age), Quote(r.Language), Quote(r.Industry), Quote(r.Continent),
				Quote(g.p.Wave), Quote(g.p.Date), strings.Join(scores, ", ")))
		}
		g.line("%s", strings.Join(rows, ",\n"))
		g.line("ON CONFLICT DO NOTHING;")
		g.line("")
	}
}

func (g *gen) capability(p survey.Capability, batch int) {
	for start := 0; start < p.Len(); start += batch {
		end := min(start+batch, p.Len())
		g.line("INSERT INTO capability_scores (")
		g.line("  company_id, respondent_id, dimension_id, dimension, construct_id, construct, score,")
		g.line("  industry_synthetic, country_synthetic, continent_synthetic, role_synthetic,")
		g.line("  survey_wave, assessment_date")
		g.line(") VALUES")
		rows := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			c := p.At(i)
			rows = append(rows, fmt.Sprintf("  (%s, %s, %d, %s, %d, %s, %s, %s, %s, %s, %s, %s, %s)",
				g.company, Quote(c.ID), c.DimensionID, Quote(c.Dimension), c.ConstructID, Quote(c.Construct),
				score(c.Score), Quote(c.Industry), Quote(c.Country), Quote(c.Continent), Quote(c.Role),
				Quote(g.p.Wave), Quote(g.p.Date)))
		}
		g.line("%s", strings.Join(rows, ",\n"))
		g.line("ON CONFLICT DO NOTHING;")
		g.line("")
	}
}

func (g *gen) counts() {
	wave := Quote(g.p.Wave)
	g.section("5. UPDATE RESPONDENT COUNTS")
	g.line("UPDATE assessment_periods ap")
	g.line("SET")
	g.line("  sentiment_respondents = (")
	g.line("    SELECT COUNT(DISTINCT respondent_id)")
	g.line("    FROM respondents r")
	g.line("    WHERE r.company_id = ap.company_id")
	g.line("      AND r.survey_wave = %s", wave)
	g.line("  ),")
	g.line("  capability_respondents = (")
	g.line("    SELECT COUNT(DISTINCT respondent_id)")
	g.line("    FROM capability_scores cs")
	g.line("    WHERE cs.company_id = ap.company_id")
	g.line("      AND cs.survey_wave = %s", wave)
	g.line("  ),")
	g.line("  updated_at = NOW()")
	g.line("WHERE survey_wave = %s;", wave)
}
