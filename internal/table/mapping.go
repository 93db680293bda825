package table

import (
	"fmt"
	"strings"
)

// Field is one logical column: the header names accepted for it in
// preference order and the placeholder used when none is present.
type Field struct {
	Key      string
	Names    []string
	Default  string
	Required bool
}

// Mapping lists the logical fields of one file kind.
type Mapping []Field

// Resolved binds a mapping to one file's header.
type Resolved struct {
	index    map[string]int
	defaults map[string]string
	names    map[string]string
}

// Resolve finds each field's column once. A required field with no matching
// column is an error naming every accepted spelling.
func (m Mapping) Resolve(header []string) (Resolved, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	r := Resolved{
		index:    make(map[string]int, len(m)),
		defaults: make(map[string]string, len(m)),
		names:    make(map[string]string, len(m)),
	}
	for _, f := range m {
		r.index[f.Key] = -1
		r.defaults[f.Key] = f.Default
		r.names[f.Key] = f.Names[0]
		for _, n := range f.Names {
			if i, ok := pos[n]; ok {
				r.index[f.Key] = i
				r.names[f.Key] = n
				break
			}
		}
		if f.Required && r.index[f.Key] < 0 {
			return Resolved{}, fmt.Errorf("missing required column %s (accepted: %s)", f.Key, strings.Join(f.Names, ", "))
		}
	}
	return r, nil
}

func (r Resolved) present(key string) bool {
	i, ok := r.index[key]
	return ok && i >= 0
}

// Column returns the header name the field was resolved to.
func (r Resolved) Column(key string) string { return r.names[key] }

// Get returns the field's value in row, or its default when the column is
// absent.
func (r Resolved) Get(t *Table, row int, key string) string {
	if !r.present(key) {
		return r.defaults[key]
	}
	return t.Cell(row, r.index[key])
}

// Logical field keys.
const (
	KeyID             = "id"
	KeyRegion         = "region"
	KeyDepartment     = "department"
	KeyEmploymentType = "employment_type"
	KeyAge            = "age"
	KeyLanguage       = "language"
	KeyIndustry       = "industry"
	KeyContinent      = "continent"

	KeyDimensionID = "dimension_id"
	KeyDimension   = "dimension"
	KeyConstructID = "construct_id"
	KeyConstruct   = "construct"
	KeyScore       = "score"
	KeyCountry     = "country"
	KeyRole        = "role"
)

// SentimentMapping returns the accepted columns of a sentiment file. Score
// columns are matched separately by ScoreColumn.
func SentimentMapping() Mapping {
	return Mapping{
		{Key: KeyID, Names: []string{"respondent_id", "RespondentID"}, Required: true},
		{Key: KeyRegion, Names: []string{"region", "Region"}, Default: "Unknown"},
		{Key: KeyDepartment, Names: []string{"department", "Department"}, Default: "Unknown"},
		{Key: KeyEmploymentType, Names: []string{"employment_type", "EmploymentType"}, Default: "Full-time"},
		{Key: KeyAge, Names: []string{"age", "Age"}, Default: "30-39"},
		{Key: KeyLanguage, Names: []string{"user_language", "UserLanguage"}, Default: "en"},
		{Key: KeyIndustry, Names: []string{"industry", "Industry"}, Default: "Financial Services"},
		{Key: KeyContinent, Names: []string{"continent", "Continent"}, Default: "North America"},
	}
}

// CapabilityMapping returns the accepted columns of a long-format
// capability file.
func CapabilityMapping() Mapping {
	return Mapping{
		{Key: KeyID, Names: []string{"ResponseId_id", "respondent_id"}, Required: true},
		{Key: KeyDimensionID, Names: []string{"dimension_id"}, Required: true},
		{Key: KeyDimension, Names: []string{"dimension"}, Required: true},
		{Key: KeyConstructID, Names: []string{"construct_id"}, Required: true},
		{Key: KeyConstruct, Names: []string{"construct"}, Required: true},
		{Key: KeyScore, Names: []string{"score"}, Required: true},
		{Key: KeyIndustry, Names: []string{"industry_synthetic"}, Default: "Financial Services"},
		{Key: KeyCountry, Names: []string{"country_synthetic"}, Default: "USA"},
		{Key: KeyContinent, Names: []string{"continent_synthetic"}, Default: "North America"},
		{Key: KeyRole, Names: []string{"role_synthetic"}, Default: "Analyst"},
	}
}

// ScoreColumn returns the column name of sentiment question q.
func ScoreColumn(q int) string { return fmt.Sprintf("sentiment_%d", q) }
