package phase

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"strings"
)

// Policy selects how an effect combines with a score.
type Policy string

const (
	// Additive shifts the score by a draw from N(mean, std).
	Additive Policy = "additive"
	// Multiplicative scales the score by a draw from N(mean, std).
	Multiplicative Policy = "multiplicative"
)

// Effect is a named rule shifting or scaling a subset of fields. An effect
// with no targets is an ambient effect and applies to every field.
type Effect struct {
	Code    string  `yaml:"code" json:"code"`
	Name    string  `yaml:"name,omitempty" json:"name,omitempty"`
	Targets []int   `yaml:"targets,omitempty" json:"targets,omitempty"`
	Policy  Policy  `yaml:"policy,omitempty" json:"policy,omitempty"`
	Mean    float64 `yaml:"mean" json:"mean"`
	Std     float64 `yaml:"std" json:"std"`
}

// Validate reports an unusable effect.
func (e Effect) Validate() error {
	switch e.policy() {
	case Additive, Multiplicative:
	default:
		return fmt.Errorf("effect %s: unknown policy %q: supported policies are additive, multiplicative", e.label(), e.Policy)
	}
	if e.Std < 0 || math.IsNaN(e.Std) {
		return fmt.Errorf("effect %s: std must be >= 0, got %g", e.label(), e.Std)
	}
	if math.IsNaN(e.Mean) || math.IsInf(e.Mean, 0) {
		return fmt.Errorf("effect %s: mean must be finite", e.label())
	}
	for _, t := range e.Targets {
		if t <= 0 {
			return fmt.Errorf("effect %s: target %d must be > 0", e.label(), t)
		}
	}
	return nil
}

// targets reports whether the effect applies to field.
func (e Effect) targets(field int) bool {
	return len(e.Targets) == 0 || slices.Contains(e.Targets, field)
}

// IsZero reports whether applying the effect can never change a score.
func (e Effect) IsZero() bool {
	if e.Std != 0 {
		return false
	}
	if e.policy() == Multiplicative {
		return e.Mean == 1
	}
	return e.Mean == 0
}

// apply combines one draw with v. A zero std consumes no randomness.
func (e Effect) apply(v float64, rng *rand.Rand) float64 {
	x := e.Mean
	if e.Std != 0 {
		x += rng.NormFloat64() * e.Std
	}
	if e.policy() == Multiplicative {
		return v * x
	}
	return v + x
}

func (e Effect) policy() Policy {
	if e.Policy == "" {
		return Additive
	}
	return e.Policy
}

func (e Effect) label() string {
	if e.Code != "" {
		return e.Code
	}
	return "(ambient)"
}

// Scope selects which fields receive the ambient effect.
type Scope string

const (
	// ScopeAll applies the ambient effect to every field.
	ScopeAll Scope = "all"
	// ScopeUntargeted applies it only to fields no intervention targeted.
	ScopeUntargeted Scope = "untargeted"
)

// RetagRule rewrites identifiers for a new phase: any one leading prefix
// from Strip is removed, then Prefix is prepended.
type RetagRule struct {
	Prefix string   `yaml:"prefix" json:"prefix"`
	Strip  []string `yaml:"strip,omitempty" json:"strip,omitempty"`
}

// Apply returns the retagged identifier.
func (r RetagRule) Apply(id string) string {
	for _, s := range r.Strip {
		if s != "" && strings.HasPrefix(id, s) {
			id = strings.TrimPrefix(id, s)
			break
		}
	}
	return r.Prefix + id
}

// Validate reports an unusable rule.
func (r RetagRule) Validate() error {
	if r.Prefix == "" {
		return errors.New("retag prefix is required")
	}
	if slices.Contains(r.Strip, r.Prefix) {
		return fmt.Errorf("retag prefix %q must not also be stripped", r.Prefix)
	}
	return nil
}
