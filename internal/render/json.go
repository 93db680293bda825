package render

import (
	"encoding/json"

	"github.com/dshills/surveysim/internal/schema"
)

type jsonRenderer struct{}

func (r *jsonRenderer) Render(story *schema.Story) ([]byte, error) {
	return json.MarshalIndent(story, "", "  ")
}

func (r *jsonRenderer) Ext() string { return "json" }

// Package renders an upload package as indented JSON.
func Package(pkg *schema.Package) ([]byte, error) {
	return json.MarshalIndent(pkg, "", "  ")
}
