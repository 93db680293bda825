package llm

import (
	"fmt"
	"strings"

	"github.com/dshills/surveysim/internal/profile"
	"github.com/dshills/surveysim/internal/schema"
)

const systemPromptBase = `You are writing the narrative notes of a synthetic organizational-transformation case study.
The data you are given is SYNTHETIC. It was generated to tell a story, not measured.

Rules:
- Write two to four notes per phase, one sentence each
- Ground every note in the numbers provided: means, deltas, and intervention codes
- Never invent interventions, phases, or numbers that are not in the input
- Report the direction of each change as the deltas show it; use the dataset direction below only to describe it
- Do not mention that you are a model

Output rules:
- Return JSON only, no prose and no markdown fences
- The JSON object has a single key "notes" mapping the phase number (as a string) to an array of notes`

const notesExample = `{
  "notes": {
    "1": ["Baseline assessment of 500 respondents establishes the starting point."],
    "2": ["Sentiment mean fell by 0.41 after interventions A1, B2 and C1."]
  }
}`

// BuildSystemPrompt constructs the system prompt with the scale of every
// dataset in the story.
func BuildSystemPrompt(profiles ...*profile.Profile) string {
	var sb strings.Builder
	sb.WriteString(systemPromptBase)
	for _, p := range profiles {
		if p == nil {
			continue
		}
		sb.WriteString("\n\n")
		sb.WriteString(p.FormatForPrompt())
	}
	return sb.String()
}

// BuildUserPrompt lays out every phase of story with its statistics.
func BuildUserPrompt(story *schema.Story) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Organization: %s\n", story.Organization)
	fmt.Fprintf(&sb, "Phases: %d\n\n", len(story.Phases))

	for _, p := range story.Phases {
		fmt.Fprintf(&sb, "<phase number=%d name=%q date=%q>\n", p.Number, p.Name, p.Date)
		if p.Description != "" {
			fmt.Fprintf(&sb, "Description: %s\n", p.Description)
		}
		if len(p.Interventions) > 0 {
			fmt.Fprintf(&sb, "Interventions this phase: %s\n", strings.Join(p.Interventions, ", "))
		}
		fmt.Fprintf(&sb, "Respondents: %d\n", p.Respondents)
		writeStat(&sb, "Sentiment", p.Sentiment)
		writeStat(&sb, "Capability", p.Capability)
		sb.WriteString("</phase>\n")
	}

	sb.WriteString("\nReturn the notes as JSON with this structure:\n")
	sb.WriteString(notesExample)
	return sb.String()
}

func writeStat(sb *strings.Builder, label string, s schema.DatasetStat) {
	fmt.Fprintf(sb, "%s: mean %.2f over %d records, delta vs previous %+.2f, delta vs baseline %+.2f (%+.1f%%)\n",
		label, s.Mean, s.Records, s.DeltaPrevious, s.DeltaBaseline, s.PercentChangeBase)
}
