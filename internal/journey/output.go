package journey

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dshills/surveysim/internal/config"
	"github.com/dshills/surveysim/internal/render"
	"github.com/dshills/surveysim/internal/sqlgen"
	"github.com/dshills/surveysim/internal/table"
)

// StoryName is the base name of the story document.
const StoryName = "transformation_story"

// OutputOptions selects the artifacts Write produces.
type OutputOptions struct {
	Dir      string
	Renderer render.Renderer
	SQL      bool
	Packages bool
}

// Write regenerates every artifact of r under opts.Dir and returns the paths
// written, in order.
func (r *Result) Write(cfg *config.Config, opts OutputOptions, log *zap.Logger) ([]string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var written []string
	emit := func(name string, write func(io.Writer) error) error {
		path := filepath.Join(opts.Dir, name)
		if err := table.WriteFile(path, write); err != nil {
			return err
		}
		log.Debug("wrote artifact", zap.String("path", path))
		written = append(written, path)
		return nil
	}

	for i, p := range r.Periods {
		if err := emit(p.Slug+"_sentiment.csv", func(w io.Writer) error { return table.WriteSentiment(w, p.Sentiment) }); err != nil {
			return written, err
		}
		if err := emit(p.Slug+"_capability.csv", func(w io.Writer) error { return table.WriteCapability(w, p.Capability) }); err != nil {
			return written, err
		}
		if i == 0 {
			continue
		}
		if opts.SQL {
			sp := r.sqlPeriod(i)
			o := sqlgen.Options{CompanySlug: cfg.Company.Slug, CompanyID: cfg.Company.ID, BatchSize: cfg.SQL.BatchSize}
			if err := emit(p.Slug+".sql", func(w io.Writer) error { return sqlgen.Write(w, sp, p.Sentiment, p.Capability, o) }); err != nil {
				return written, err
			}
		}
		if opts.Packages {
			data, err := render.Package(r.Package(i))
			if err != nil {
				return written, fmt.Errorf("rendering package: %w", err)
			}
			if err := emit(p.Slug+"_upload.json", func(w io.Writer) error { _, err := w.Write(data); return err }); err != nil {
				return written, err
			}
		}
	}

	rr := opts.Renderer
	if rr == nil {
		var err error
		if rr, err = render.NewRenderer("json"); err != nil {
			return written, err
		}
	}
	story, err := rr.Render(r.Story)
	if err != nil {
		return written, fmt.Errorf("rendering story: %w", err)
	}
	if err := emit(StoryName+"."+rr.Ext(), func(w io.Writer) error { _, err := w.Write(story); return err }); err != nil {
		return written, err
	}
	return written, nil
}

// sqlPeriod describes period i for SQL generation. Interventions are recorded
// against the preceding period, when they were rolled out.
func (r *Result) sqlPeriod(i int) sqlgen.Period {
	p := r.Periods[i]
	ivs := make([]sqlgen.Intervention, len(p.Codes))
	for j, c := range p.Codes {
		ivs[j] = sqlgen.Intervention{Code: c, Name: p.Names[c]}
	}
	return sqlgen.Period{
		Name:          p.Name,
		Date:          p.Date,
		Wave:          p.Wave,
		Description:   p.Summary.Description,
		Interventions: ivs,
		AppliedIn:     r.Periods[i-1].Wave,
	}
}
