package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dshills/surveysim/internal/survey"
)

// SentimentHeader is the canonical column order of a sentiment file.
func SentimentHeader() []string {
	h := []string{"respondent_id", "region", "department", "employment_type", "age", "user_language", "industry", "continent"}
	for q := 1; q <= survey.QuestionCount; q++ {
		h = append(h, ScoreColumn(q))
	}
	return h
}

// CapabilityHeader is the canonical column order of a capability file.
var CapabilityHeader = []string{
	"ResponseId_id", "dimension_id", "dimension", "construct_id", "construct", "score",
	"industry_synthetic", "country_synthetic", "continent_synthetic", "role_synthetic",
}

// WriteSentiment writes p in canonical form. Missing answers are empty cells.
func WriteSentiment(w io.Writer, p survey.Sentiment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SentimentHeader()); err != nil {
		return err
	}
	for i := 0; i < p.Len(); i++ {
		r := p.At(i)
		row := []string{r.ID, r.Region, r.Department, r.EmploymentType, r.Age, r.Language, r.Industry, r.Continent}
		for q := 1; q <= survey.QuestionCount; q++ {
			v, ok := r.Score(q)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, formatScore(v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCapability writes p in canonical long form.
func WriteCapability(w io.Writer, p survey.Capability) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CapabilityHeader); err != nil {
		return err
	}
	for i := 0; i < p.Len(); i++ {
		c := p.At(i)
		row := []string{
			c.ID, strconv.Itoa(c.DimensionID), c.Dimension, strconv.Itoa(c.ConstructID), c.Construct,
			formatScore(c.Score), c.Industry, c.Country, c.Continent, c.Role,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates path (and its directory) and fills it with write.
func WriteFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
