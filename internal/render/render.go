package render

import (
	"fmt"

	"github.com/dshills/surveysim/internal/schema"
)

// Renderer formats a Story into bytes for output.
type Renderer interface {
	Render(story *schema.Story) ([]byte, error)
	// Ext is the file extension of the rendered output, without the dot.
	Ext() string
}

// NewRenderer returns a Renderer for the given format string.
// Supported formats: "json" (default), "md".
func NewRenderer(format string) (Renderer, error) {
	switch format {
	case "json", "":
		return &jsonRenderer{}, nil
	case "md":
		return &markdownRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q: supported formats are json, md", format)
	}
}
