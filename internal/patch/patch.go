// Package patch renders text changes as diff-match-patch patches, used to
// preview an encoding repair without writing it.
package patch

import (
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Change is one file's text before and after a rewrite.
type Change struct {
	Name   string
	Before string
	After  string
}

// GenerateDiff converts changes into a single patch document with one
// "# patch for <name>" section per changed file. Both sides are normalized
// before diffing; a change that disappears under normalization is skipped
// with a note written to w (may be nil).
func GenerateDiff(changes []Change, w io.Writer) string {
	if len(changes) == 0 {
		return ""
	}

	dmp := diffmatchpatch.New()
	var out strings.Builder

	for _, c := range changes {
		if c.Before == c.After {
			continue
		}
		before, after := normalize(c.Before), normalize(c.After)
		if before == after {
			if w != nil {
				fmt.Fprintf(w, "WARN: %s differs only in whitespace or line endings; not shown\n", c.Name)
			}
			continue
		}

		diffs := dmp.DiffMain(before, after, false)
		patchText := dmp.PatchToText(dmp.PatchMake(before, diffs))
		if patchText == "" {
			continue
		}

		out.WriteString(fmt.Sprintf("# patch for %s\n", c.Name))
		out.WriteString(patchText)
		out.WriteString("\n")
	}

	return out.String()
}

// normalize trims trailing whitespace from each line and converts CRLF to LF.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
