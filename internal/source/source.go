// Package source locates an input table among several candidate paths.
package source

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/surveysim/internal/table"
)

// ErrNoCandidate is returned when none of the candidate paths can be read.
var ErrNoCandidate = errors.New("no candidate file could be read")

// Failure records why one candidate was skipped.
type Failure struct {
	Path string
	Err  error
}

// First returns the first candidate that reads as a table. Each failing
// candidate is logged and returned alongside the result. log may be nil.
func First(paths []string, log *zap.Logger) (*table.Table, []Failure, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var failures []Failure
	for _, p := range paths {
		t, err := table.Read(p)
		if err != nil {
			log.Warn("candidate skipped", zap.String("path", p), zap.Error(err))
			failures = append(failures, Failure{Path: p, Err: err})
			continue
		}
		log.Info("candidate found", zap.String("path", p), zap.Int("rows", len(t.Rows)))
		return t, failures, nil
	}
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("%w: no paths given", ErrNoCandidate)
	}
	tried := make([]string, len(failures))
	for i, f := range failures {
		tried[i] = f.Path
	}
	return nil, failures, fmt.Errorf("%w: tried %s", ErrNoCandidate, strings.Join(tried, ", "))
}
