package table

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/dshills/surveysim/internal/survey"
)

// LoadSentiment reads a wide-format sentiment file. Absent score columns,
// empty score cells and NaN cells are missing answers.
func LoadSentiment(path string) (survey.Sentiment, *Table, error) {
	t, err := Read(path)
	if err != nil {
		return survey.Sentiment{}, nil, err
	}
	p, err := SentimentFrom(t)
	if err != nil {
		return survey.Sentiment{}, nil, err
	}
	return p, t, nil
}

// SentimentFrom converts an already loaded table.
func SentimentFrom(t *Table) (survey.Sentiment, error) {
	m, err := SentimentMapping().Resolve(t.Header)
	if err != nil {
		return survey.Sentiment{}, fmt.Errorf("%s: %w", t.Path, err)
	}
	cols := make(map[int]int, survey.QuestionCount)
	for q := 1; q <= survey.QuestionCount; q++ {
		if i := t.Column(ScoreColumn(q)); i >= 0 {
			cols[q] = i
		}
	}

	recs := make([]*survey.Respondent, 0, len(t.Rows))
	for row := range t.Rows {
		id := m.Get(t, row, KeyID)
		if id == "" {
			return survey.Sentiment{}, &CellError{Path: t.Path, Row: row + 1, Column: m.Column(KeyID), Err: fmt.Errorf("empty identifier")}
		}
		r := &survey.Respondent{
			ID:             id,
			Region:         m.Get(t, row, KeyRegion),
			Department:     m.Get(t, row, KeyDepartment),
			EmploymentType: m.Get(t, row, KeyEmploymentType),
			Age:            m.Get(t, row, KeyAge),
			Language:       m.Get(t, row, KeyLanguage),
			Industry:       m.Get(t, row, KeyIndustry),
			Continent:      m.Get(t, row, KeyContinent),
			Scores:         make(map[int]float64, len(cols)),
		}
		for q, i := range cols {
			cell := t.Cell(row, i)
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return survey.Sentiment{}, &CellError{Path: t.Path, Row: row + 1, Column: ScoreColumn(q), Err: err}
			}
			if math.IsNaN(v) {
				continue
			}
			r.Scores[q] = v
		}
		recs = append(recs, r)
	}
	return survey.NewPopulation(recs), nil
}

// LoadCapability reads a long-format capability file.
func LoadCapability(path string) (survey.Capability, *Table, error) {
	t, err := Read(path)
	if err != nil {
		return survey.Capability{}, nil, err
	}
	p, err := CapabilityFrom(t)
	if err != nil {
		return survey.Capability{}, nil, err
	}
	return p, t, nil
}

// CapabilityFrom converts an already loaded table.
func CapabilityFrom(t *Table) (survey.Capability, error) {
	m, err := CapabilityMapping().Resolve(t.Header)
	if err != nil {
		return survey.Capability{}, fmt.Errorf("%s: %w", t.Path, err)
	}

	recs := make([]*survey.CapabilityScore, 0, len(t.Rows))
	for row := range t.Rows {
		cellErr := func(key string, err error) error {
			return &CellError{Path: t.Path, Row: row + 1, Column: m.Column(key), Err: err}
		}
		id := m.Get(t, row, KeyID)
		if id == "" {
			return survey.Capability{}, cellErr(KeyID, fmt.Errorf("empty identifier"))
		}
		dim, err := strconv.Atoi(m.Get(t, row, KeyDimensionID))
		if err != nil {
			return survey.Capability{}, cellErr(KeyDimensionID, err)
		}
		construct, err := strconv.Atoi(m.Get(t, row, KeyConstructID))
		if err != nil {
			return survey.Capability{}, cellErr(KeyConstructID, err)
		}
		score, err := strconv.ParseFloat(m.Get(t, row, KeyScore), 64)
		if err != nil {
			return survey.Capability{}, cellErr(KeyScore, err)
		}
		if math.IsNaN(score) {
			return survey.Capability{}, cellErr(KeyScore, errors.New("score is NaN"))
		}
		recs = append(recs, &survey.CapabilityScore{
			ID:          id,
			DimensionID: dim,
			Dimension:   m.Get(t, row, KeyDimension),
			ConstructID: construct,
			Construct:   m.Get(t, row, KeyConstruct),
			Score:       score,
			Industry:    m.Get(t, row, KeyIndustry),
			Country:     m.Get(t, row, KeyCountry),
			Continent:   m.Get(t, row, KeyContinent),
			Role:        m.Get(t, row, KeyRole),
		})
	}
	return survey.NewPopulation(recs), nil
}
