// Package survey defines the record kinds produced and transformed by
// surveysim and the immutable Population container that holds them.
package survey

import (
	"maps"
	"slices"
)

// QuestionCount is the number of sentiment questions per respondent.
const QuestionCount = 25

// Record is implemented by every record kind the phase pipeline can adjust.
// R is the concrete record type, normally a pointer.
type Record[R any] interface {
	// RecordID returns the record's identifier.
	RecordID() string
	// Fields returns the keys of the record's present scored fields in
	// ascending order (question indices or a dimension id).
	Fields() []int
	// Value returns the score for a field key.
	Value(field int) float64
	// Derive returns a deep copy carrying id whose scores are replaced by
	// adjust(field, old). The receiver is left untouched.
	Derive(id string, adjust func(field int, v float64) float64) R
}

// Respondent is one simulated survey participant.
type Respondent struct {
	ID             string
	Region         string
	Department     string
	EmploymentType string
	Age            string
	Language       string
	Industry       string
	Continent      string

	// Scores maps question index (1..QuestionCount) to a score. Absent keys
	// are missing answers.
	Scores map[int]float64
}

// RecordID implements Record.
func (r *Respondent) RecordID() string { return r.ID }

// Fields implements Record.
func (r *Respondent) Fields() []int {
	return slices.Sorted(maps.Keys(r.Scores))
}

// Value implements Record.
func (r *Respondent) Value(field int) float64 { return r.Scores[field] }

// Derive implements Record.
func (r *Respondent) Derive(id string, adjust func(field int, v float64) float64) *Respondent {
	out := *r
	out.ID = id
	out.Scores = make(map[int]float64, len(r.Scores))
	for _, q := range r.Fields() {
		out.Scores[q] = adjust(q, r.Scores[q])
	}
	return &out
}

// Score returns the score for question q and whether it is present.
func (r *Respondent) Score(q int) (float64, bool) {
	v, ok := r.Scores[q]
	return v, ok
}

// CapabilityScore is a single construct score in long format: one row per
// construct per respondent.
type CapabilityScore struct {
	ID          string
	DimensionID int
	Dimension   string
	ConstructID int
	Construct   string
	Score       float64

	Industry  string
	Country   string
	Continent string
	Role      string
}

// RecordID implements Record.
func (c *CapabilityScore) RecordID() string { return c.ID }

// Fields implements Record. A capability row has a single field keyed by
// its dimension id.
func (c *CapabilityScore) Fields() []int { return []int{c.DimensionID} }

// Value implements Record.
func (c *CapabilityScore) Value(int) float64 { return c.Score }

// Derive implements Record.
func (c *CapabilityScore) Derive(id string, adjust func(field int, v float64) float64) *CapabilityScore {
	out := *c
	out.ID = id
	out.Score = adjust(c.DimensionID, c.Score)
	return &out
}

// Population is an ordered, read-only collection of records of one kind.
// Transforms build new populations; nothing mutates an existing one.
type Population[R Record[R]] struct {
	records []R
}

// NewPopulation wraps records. The slice is copied so later changes by the
// caller do not leak into the population.
func NewPopulation[R Record[R]](records []R) Population[R] {
	return Population[R]{records: slices.Clone(records)}
}

// Len returns the number of records.
func (p Population[R]) Len() int { return len(p.records) }

// At returns the i-th record. Callers must treat it as read-only.
func (p Population[R]) At(i int) R { return p.records[i] }

// Records returns a copy of the record slice.
func (p Population[R]) Records() []R { return slices.Clone(p.records) }

// IDs returns the record identifiers in order.
func (p Population[R]) IDs() []string {
	ids := make([]string, len(p.records))
	for i, r := range p.records {
		ids[i] = r.RecordID()
	}
	return ids
}

// DistinctIDs returns the unique identifiers in first-seen order. Capability
// populations repeat an id once per construct.
func (p Population[R]) DistinctIDs() []string {
	seen := make(map[string]struct{}, len(p.records))
	var ids []string
	for _, r := range p.records {
		id := r.RecordID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// Sentiment and Capability name the two population kinds.
type (
	Sentiment  = Population[*Respondent]
	Capability = Population[*CapabilityScore]
)
