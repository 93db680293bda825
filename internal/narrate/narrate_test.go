package narrate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dshills/surveysim/internal/llm"
	"github.com/dshills/surveysim/internal/profile"
	"github.com/dshills/surveysim/internal/schema"
)

type fakeProvider struct {
	content string
	err     error
	got     *llm.Request
	wait    bool
}

func (f *fakeProvider) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	f.got = req
	if f.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Content: f.content, Model: "fake:model"}, nil
}

func story() *schema.Story {
	return &schema.Story{
		Organization: "Acme",
		Phases: []schema.PhaseSummary{
			{Number: 1, Name: "Baseline", Notes: []string{"configured 1"}},
			{Number: 2, Name: "Phase 2", Notes: []string{"configured 2"}},
			{Number: 3, Name: "Phase 3", Notes: []string{"configured 3"}},
		},
	}
}

func TestStory_ReplacesNotes(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sp, err := profile.Get("sentiment")
	require.NoError(t, err)

	p := &fakeProvider{content: "```json\n{\"notes\": {\"2\": [\"Resistance eased.\"], \"3\": [\"Maturity rose.\", \"Adoption held.\"]}}\n```"}
	s := story()
	require.NoError(t, Story(context.Background(), p, s, Options{Profiles: []*profile.Profile{sp}}, zap.New(core)))

	assert.Equal(t, []string{"configured 1"}, s.Phases[0].Notes)
	assert.Equal(t, []string{"Resistance eased."}, s.Phases[1].Notes)
	assert.Equal(t, []string{"Maturity rose.", "Adoption held."}, s.Phases[2].Notes)
	assert.Equal(t, "fake:model", s.Meta.NotesModel)

	assert.Contains(t, p.got.SystemPrompt, sp.FormatForPrompt())
	assert.Contains(t, p.got.UserPrompt, "Organization: Acme")
	require.Equal(t, 1, logs.FilterMessage("notes narrated").Len())
}

func TestStory_FailureLeavesStoryUntouched(t *testing.T) {
	tests := map[string]*fakeProvider{
		"provider error": {err: errors.New("boom")},
		"bad json":       {content: "the notes are great"},
		"unknown phase":  {content: `{"notes": {"9": ["x"]}}`},
	}
	for name, p := range tests {
		t.Run(name, func(t *testing.T) {
			s := story()
			err := Story(context.Background(), p, s, Options{}, nil)
			require.Error(t, err)
			assert.Equal(t, story(), s)
		})
	}
}

func TestStory_Timeout(t *testing.T) {
	p := &fakeProvider{wait: true}
	err := Story(context.Background(), p, story(), Options{Timeout: 10 * time.Millisecond}, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStory_NoPhases(t *testing.T) {
	err := Story(context.Background(), &fakeProvider{}, &schema.Story{}, Options{}, nil)
	assert.Error(t, err)
}
