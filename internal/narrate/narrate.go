// Package narrate replaces the configured phase notes of a story with notes
// written by a language model.
package narrate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/surveysim/internal/llm"
	"github.com/dshills/surveysim/internal/profile"
	"github.com/dshills/surveysim/internal/schema"
	"github.com/dshills/surveysim/internal/schema/validate"
)

// Options tunes a narration call.
type Options struct {
	Timeout     time.Duration
	Temperature float64
	// Profiles describe the datasets to the model.
	Profiles []*profile.Profile
}

// Story asks p for notes and writes them into story. On any failure story is
// left untouched and the error is returned; callers treat it as advisory.
// Phases the model did not write notes for keep their configured notes.
func Story(ctx context.Context, p llm.Provider, story *schema.Story, opts Options, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	if len(story.Phases) == 0 {
		return fmt.Errorf("story has no phases")
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req := &llm.Request{
		SystemPrompt: llm.BuildSystemPrompt(opts.Profiles...),
		UserPrompt:   llm.BuildUserPrompt(story),
		Temperature:  opts.Temperature,
	}
	start := time.Now()
	resp, err := p.Complete(ctx, req)
	if err != nil {
		return fmt.Errorf("narration request: %w", err)
	}

	phases := make([]int, len(story.Phases))
	for i, ps := range story.Phases {
		phases[i] = ps.Number
	}
	notes, err := validate.Parse(resp.Content, phases)
	if err != nil {
		return fmt.Errorf("narration response: %w", err)
	}

	for i := range story.Phases {
		if n, ok := notes[story.Phases[i].Number]; ok {
			story.Phases[i].Notes = n
		}
	}
	story.Meta.NotesModel = resp.Model
	log.Info("notes narrated",
		zap.String("model", resp.Model),
		zap.Int("phases", len(notes)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
