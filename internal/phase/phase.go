// Package phase derives a new survey population from a prior one by
// re-tagging identifiers and applying intervention and ambient effects.
//
// Apply is pure: the input population is never modified, so a baseline
// stays usable as the reference for any number of chained phases.
package phase

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/dshills/surveysim/internal/survey"
)

// ErrIDCollision is returned when re-tagging would produce an identifier
// that is duplicated or already used by the input population.
var ErrIDCollision = errors.New("identifier collision")

// Step is the full configuration of one phase transform.
type Step struct {
	Retag   RetagRule
	Effects []Effect
	Ambient Effect
	Scope   Scope
	Bound   survey.Bound
}

// Validate reports the first problem with the step.
func (s Step) Validate() error {
	if err := s.Retag.Validate(); err != nil {
		return err
	}
	if err := s.Bound.Validate(); err != nil {
		return fmt.Errorf("bound: %w", err)
	}
	for i, e := range s.Effects {
		if len(e.Targets) == 0 {
			return fmt.Errorf("effect[%d] %s: targets are required", i, e.label())
		}
		if err := e.Validate(); err != nil {
			return fmt.Errorf("effect[%d]: %w", i, err)
		}
	}
	if len(s.Ambient.Targets) != 0 {
		return errors.New("ambient effect must not declare targets")
	}
	if err := s.Ambient.Validate(); err != nil {
		return err
	}
	switch s.Scope {
	case "", ScopeAll, ScopeUntargeted:
	default:
		return fmt.Errorf("unknown ambient scope %q: supported scopes are all, untargeted", s.Scope)
	}
	return nil
}

// Apply produces the next phase of p.
//
// Records are visited in order and fields in ascending key order. Each
// effect targeting a field is applied in declaration order, then the ambient
// effect; the value is clamped to the step's bound after every application.
func Apply[R survey.Record[R]](p survey.Population[R], s Step, rng *rand.Rand) (survey.Population[R], error) {
	if err := s.Validate(); err != nil {
		return survey.Population[R]{}, fmt.Errorf("invalid phase step: %w", err)
	}
	ids, err := retag(p, s.Retag)
	if err != nil {
		return survey.Population[R]{}, err
	}

	out := make([]R, p.Len())
	for i := 0; i < p.Len(); i++ {
		rec := p.At(i)
		out[i] = rec.Derive(ids[rec.RecordID()], func(field int, v float64) float64 {
			return s.adjust(field, v, rng)
		})
	}
	return survey.NewPopulation(out), nil
}

func (s Step) adjust(field int, v float64, rng *rand.Rand) float64 {
	targeted := false
	for _, e := range s.Effects {
		if !e.targets(field) {
			continue
		}
		targeted = true
		v = s.Bound.Clamp(e.apply(v, rng))
	}
	if s.Scope == ScopeUntargeted && targeted {
		return v
	}
	return s.Bound.Clamp(s.Ambient.apply(v, rng))
}

// retag maps every distinct input id to its new id and checks that the
// mapping is injective and disjoint from the input ids.
func retag[R survey.Record[R]](p survey.Population[R], rule RetagRule) (map[string]string, error) {
	old := p.DistinctIDs()
	oldSet := make(map[string]struct{}, len(old))
	for _, id := range old {
		oldSet[id] = struct{}{}
	}

	mapped := make(map[string]string, len(old))
	owner := make(map[string]string, len(old))
	for _, id := range old {
		n := rule.Apply(id)
		if _, ok := oldSet[n]; ok {
			return nil, fmt.Errorf("%w: %q retags to existing id %q", ErrIDCollision, id, n)
		}
		if prev, ok := owner[n]; ok {
			return nil, fmt.Errorf("%w: %q and %q both retag to %q", ErrIDCollision, prev, id, n)
		}
		owner[n] = id
		mapped[id] = n
	}
	return mapped, nil
}

// Chain applies steps in order, feeding each output into the next step, and
// returns every derived population. The input is not included.
func Chain[R survey.Record[R]](base survey.Population[R], steps []Step, rng *rand.Rand) ([]survey.Population[R], error) {
	out := make([]survey.Population[R], 0, len(steps))
	cur := base
	for i, s := range steps {
		next, err := Apply(cur, s, rng)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		out = append(out, next)
		cur = next
	}
	return out, nil
}
