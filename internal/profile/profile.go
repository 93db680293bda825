// Package profile holds the built-in dataset profiles: the score bound,
// precision, and scale direction of each dataset kind.
package profile

import (
	"fmt"
	"strings"

	"github.com/dshills/surveysim/internal/survey"
)

// Kind names the record kind a profile applies to.
type Kind string

const (
	KindSentiment  Kind = "sentiment"
	KindCapability Kind = "capability"
)

// Profile defines the numeric rules for one dataset.
type Profile struct {
	Name  string
	Kind  Kind
	Bound survey.Bound
	// Precision is the number of decimals generated scores are rounded to.
	Precision int
	// HigherIsBetter is false for resistance-style scales where a lower
	// score is the desired outcome.
	HigherIsBetter bool
	Description    string
}

// Get returns the built-in profile for the given name.
func Get(name string) (*Profile, error) {
	switch name {
	case "sentiment", "":
		return sentiment(), nil
	case "sentiment-wide":
		return sentimentWide(), nil
	case "capability":
		return capability(), nil
	case "capability-5":
		return capabilityFive(), nil
	default:
		return nil, fmt.Errorf("unknown profile %q: valid profiles are %s", name, strings.Join(Names(), ", "))
	}
}

// Names lists the built-in profile names.
func Names() []string {
	return []string{"sentiment", "sentiment-wide", "capability", "capability-5"}
}

// FormatForPrompt describes the profile's scale for the narration prompt.
func (p *Profile) FormatForPrompt() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Dataset: %s (%s)\n", p.Name, p.Kind))
	sb.WriteString(fmt.Sprintf("Scale: %.1f to %.1f\n", p.Bound.Lower, p.Bound.Upper))
	if p.HigherIsBetter {
		sb.WriteString("Direction: higher scores are better\n")
	} else {
		sb.WriteString("Direction: lower scores mean less resistance\n")
	}
	if p.Description != "" {
		sb.WriteString(p.Description)
		sb.WriteString("\n")
	}
	return sb.String()
}
