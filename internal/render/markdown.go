package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/dshills/surveysim/internal/schema"
)

type markdownRenderer struct{}

var mdFuncs = template.FuncMap{
	"join":   func(s []string) string { return strings.Join(s, ", ") },
	"num":    func(v float64) string { return fmt.Sprintf("%.3f", v) },
	"signed": func(v float64) string { return fmt.Sprintf("%+.3f", v) },
	"pct":    func(v float64) string { return fmt.Sprintf("%+.1f%%", v) },
}

var mdTemplate = template.Must(template.New("story").Funcs(mdFuncs).Parse(`# {{ .Organization }} Transformation Story

**Company:** {{ .Company }} | **Phases:** {{ .Totals.Phases }} | **Seed:** {{ .Seed }}
**Interventions:** {{ if .Totals.Interventions }}{{ join .Totals.Interventions }}{{ else }}none{{ end }}
**Sentiment change:** {{ signed .Totals.SentimentDelta }} ({{ pct .Totals.SentimentPct }}) | **Capability change:** {{ signed .Totals.CapabilityDelta }} ({{ pct .Totals.CapabilityPct }})
{{ range .Phases }}
---

## Phase {{ .Number }}: {{ .Name }}

*{{ .Date }} · wave ` + "`{{ .SurveyWave }}`" + ` · {{ .Respondents }} respondents*
{{ if .Description }}
{{ .Description }}
{{ end }}
**Interventions this phase:** {{ if .Interventions }}{{ join .Interventions }}{{ else }}none{{ end }}
**Cumulative:** {{ if .Cumulative }}{{ join .Cumulative }}{{ else }}none{{ end }}

| Dataset | Mean | vs previous | vs baseline |
|---|---|---|---|
| Sentiment | {{ num .Sentiment.Mean }} | {{ signed .Sentiment.DeltaPrevious }} ({{ pct .Sentiment.PercentChange }}) | {{ signed .Sentiment.DeltaBaseline }} ({{ pct .Sentiment.PercentChangeBase }}) |
| Capability | {{ num .Capability.Mean }} | {{ signed .Capability.DeltaPrevious }} ({{ pct .Capability.PercentChange }}) | {{ signed .Capability.DeltaBaseline }} ({{ pct .Capability.PercentChangeBase }}) |
{{ if .Notes }}
{{ range .Notes }}- {{ . }}
{{ end }}{{ end }}{{ end }}{{ if .Inputs }}
---

## Inputs
{{ range .Inputs }}
- {{ .Dataset }}: ` + "`{{ .Path }}`" + ` ({{ .Rows }} rows, {{ .Hash }})
{{- end }}
{{ end }}
---
*Run {{ .Meta.RunID }} at {{ .Meta.GeneratedAt }}{{ if .Meta.NotesModel }} | Notes: {{ .Meta.NotesModel }}{{ end }}*
`))

func (r *markdownRenderer) Render(story *schema.Story) ([]byte, error) {
	var buf bytes.Buffer
	if err := mdTemplate.Execute(&buf, story); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *markdownRenderer) Ext() string { return "md" }
