// Package spread checks whether the score columns of a dataset vary enough
// to be useful as demo data.
package spread

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/dshills/surveysim/internal/table"
)

// Verdict is the outcome of a spread check.
type Verdict string

const (
	VerdictOK     Verdict = "OK"
	VerdictNarrow Verdict = "NARROW"
)

// Thresholds below which a dataset is flagged as narrow.
type Thresholds struct {
	MinStd   float64
	MinRange float64
}

// DefaultThresholds flags data with std < 0.3 or range < 1.0.
func DefaultThresholds() Thresholds {
	return Thresholds{MinStd: 0.3, MinRange: 1.0}
}

// Column holds the statistics of one numeric column. Std is the sample
// standard deviation and is 0 for fewer than two values.
type Column struct {
	Name  string
	Count int
	Min   float64
	Max   float64
	Mean  float64
	Std   float64
	Range float64
}

// Report is the result of analyzing one table.
type Report struct {
	Path    string
	Rows    int
	Header  []string
	Columns []Column
	// Count, Std and Range describe every value of every selected column
	// pooled together; Std is the population standard deviation.
	Count      int
	Std        float64
	Range      float64
	Thresholds Thresholds
	Verdict    Verdict
}

// Narrow reports whether the dataset was flagged.
func (r *Report) Narrow() bool { return r.Verdict == VerdictNarrow }

// SelectColumns returns the columns to analyze: the explicit list if given,
// otherwise every header column whose name contains "sentiment" in any case.
func SelectColumns(header, explicit []string) ([]string, error) {
	if len(explicit) > 0 {
		for _, c := range explicit {
			if !contains(header, c) {
				return nil, fmt.Errorf("column %q not found", c)
			}
		}
		return explicit, nil
	}
	var cols []string
	for _, h := range header {
		if strings.Contains(strings.ToLower(h), "sentiment") {
			cols = append(cols, h)
		}
	}
	if len(cols) == 0 {
		return nil, errors.New("no sentiment columns found")
	}
	return cols, nil
}

func contains(header []string, name string) bool {
	for _, h := range header {
		if h == name {
			return true
		}
	}
	return false
}

// Analyze computes per-column and pooled statistics of the selected columns
// and assigns a verdict. Empty and NaN cells are skipped.
func Analyze(t *table.Table, columns []string, th Thresholds) (*Report, error) {
	cols, err := SelectColumns(t.Header, columns)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.Path, err)
	}

	r := &Report{Path: t.Path, Rows: len(t.Rows), Header: t.Header, Thresholds: th}
	var all []float64
	for _, name := range cols {
		i := t.Column(name)
		var vals []float64
		for row := range t.Rows {
			cell := t.Cell(row, i)
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, &table.CellError{Path: t.Path, Row: row + 1, Column: name, Err: err}
			}
			if math.IsNaN(v) {
				continue
			}
			vals = append(vals, v)
		}
		r.Columns = append(r.Columns, describe(name, vals))
		all = append(all, vals...)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%s: no numeric values in %s", t.Path, strings.Join(cols, ", "))
	}

	lo, hi, mean := summary(all)
	var ss float64
	for _, v := range all {
		ss += (v - mean) * (v - mean)
	}
	r.Count = len(all)
	r.Std = math.Sqrt(ss / float64(len(all)))
	r.Range = hi - lo

	r.Verdict = VerdictOK
	if r.Std < th.MinStd || r.Range < th.MinRange {
		r.Verdict = VerdictNarrow
	}
	return r, nil
}

func describe(name string, vals []float64) Column {
	c := Column{Name: name, Count: len(vals)}
	if len(vals) == 0 {
		return c
	}
	c.Min, c.Max, c.Mean = summary(vals)
	c.Range = c.Max - c.Min
	if len(vals) > 1 {
		var ss float64
		for _, v := range vals {
			ss += (v - c.Mean) * (v - c.Mean)
		}
		c.Std = math.Sqrt(ss / float64(len(vals)-1))
	}
	return c
}

func summary(vals []float64) (lo, hi, mean float64) {
	lo, hi = vals[0], vals[0]
	var sum float64
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		sum += v
	}
	return lo, hi, sum / float64(len(vals))
}

// Write prints a human-readable report. At most limit columns are listed
// individually; limit <= 0 lists all of them.
func (r *Report) Write(w io.Writer, limit int) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found: %s\n", r.Path)
	fmt.Fprintf(&sb, "Rows: %d\n", r.Rows)
	header := r.Header
	if len(header) > 10 {
		header = header[:10]
	}
	fmt.Fprintf(&sb, "Columns: %s", strings.Join(header, ", "))
	if len(r.Header) > 10 {
		sb.WriteString(", ...")
	}
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Score columns: %d\n", len(r.Columns))
	cols := r.Columns
	if limit > 0 && len(cols) > limit {
		cols = cols[:limit]
	}
	for _, c := range cols {
		if c.Count == 0 {
			continue
		}
		fmt.Fprintf(&sb, "%s:\n", c.Name)
		fmt.Fprintf(&sb, "  Min: %.2f\n  Max: %.2f\n  Mean: %.2f\n  Std: %.2f\n  Range: %.2f\n",
			c.Min, c.Max, c.Mean, c.Std, c.Range)
	}

	sb.WriteString("\nOverall statistics:\n")
	fmt.Fprintf(&sb, "  Range: %.2f\n", r.Range)
	fmt.Fprintf(&sb, "  Std Dev: %.2f\n", r.Std)
	fmt.Fprintf(&sb, "\nVerdict: %s\n", r.Verdict)
	if r.Narrow() {
		fmt.Fprintf(&sb, "  Range of %.2f and std dev of %.2f is too narrow (minimum %.2f and %.2f)\n",
			r.Range, r.Std, r.Thresholds.MinRange, r.Thresholds.MinStd)
		sb.WriteString("  Regenerate with cells spread across low (1.2-1.5), medium (2.0-2.5) and high (2.7-3.0) resistance.\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
