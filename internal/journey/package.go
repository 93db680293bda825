package journey

import (
	"github.com/dshills/surveysim/internal/schema"
	"github.com/dshills/surveysim/internal/survey"
	"github.com/dshills/surveysim/internal/table"
)

// Package bundles one period into a single upload document. Improvements are
// percent changes of each dataset mean against the baseline.
func (r *Result) Package(i int) *schema.Package {
	p := r.Periods[i]
	codes := p.Summary.Cumulative
	if len(codes) == 0 {
		codes = p.Summary.Interventions
	}

	pkg := &schema.Package{
		Metadata: schema.PackageMetadata{
			Phase:          p.Number,
			Name:           p.Name,
			AssessmentDate: p.Date,
			Description:    p.Summary.Description,
			Interventions:  codes,
			Improvements: map[string]float64{
				"sentiment":  p.Summary.Sentiment.PercentChangeBase,
				"capability": p.Summary.Capability.PercentChangeBase,
			},
		},
		SentimentData:  make([]schema.SentimentRow, 0, p.Sentiment.Len()),
		CapabilityData: make([]schema.CapabilityRow, 0, p.Capability.Len()),
	}

	header := table.SentimentHeader()
	for j := 0; j < p.Sentiment.Len(); j++ {
		rec := p.Sentiment.At(j)
		row := schema.SentimentRow{
			header[0]: rec.ID,
			header[1]: rec.Region,
			header[2]: rec.Department,
			header[3]: rec.EmploymentType,
			header[4]: rec.Age,
			header[5]: rec.Language,
			header[6]: rec.Industry,
			header[7]: rec.Continent,
		}
		for q := 1; q <= survey.QuestionCount; q++ {
			if v, ok := rec.Score(q); ok {
				row[table.ScoreColumn(q)] = v
			} else {
				row[table.ScoreColumn(q)] = nil
			}
		}
		pkg.SentimentData = append(pkg.SentimentData, row)
	}

	for j := 0; j < p.Capability.Len(); j++ {
		c := p.Capability.At(j)
		pkg.CapabilityData = append(pkg.CapabilityData, schema.CapabilityRow{
			RespondentID: c.ID,
			DimensionID:  c.DimensionID,
			Dimension:    c.Dimension,
			ConstructID:  c.ConstructID,
			Construct:    c.Construct,
			Score:        c.Score,
			Industry:     c.Industry,
			Country:      c.Country,
			Continent:    c.Continent,
			Role:         c.Role,
		})
	}
	return pkg
}
