package validate

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dshills/surveysim/internal/schema"
)

const (
	// MaxNotesPerPhase bounds the notes accepted for a single phase.
	MaxNotesPerPhase = 6
	// MaxNoteLength bounds a single note in runes.
	MaxNoteLength = 400
)

// Parse strips markdown fences, unmarshals JSON, and validates a narration
// response against the phase numbers of the story. The returned map is keyed
// by phase number. Phases the model skipped are absent.
func Parse(raw string, phases []int) (map[int][]string, error) {
	cleaned := stripFences(raw)

	var resp schema.NotesResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("JSON parse failed: %w", err)
	}
	if len(resp.Notes) == 0 {
		return nil, fmt.Errorf("response has no notes")
	}

	out := make(map[int][]string, len(resp.Notes))
	for key, notes := range resp.Notes {
		n, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("notes key %q is not a phase number", key)
		}
		if !slices.Contains(phases, n) {
			return nil, fmt.Errorf("notes for unknown phase %d", n)
		}
		cleanedNotes, err := validateNotes(notes, fmt.Sprintf("phase[%d]", n))
		if err != nil {
			return nil, err
		}
		out[n] = cleanedNotes
	}
	return out, nil
}

// stripFences removes leading/trailing markdown code fences (```json ... ``` or ``` ... ```).
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		// Remove first line (the fence opener)
		idx := strings.Index(s, "\n")
		if idx >= 0 {
			s = s[idx+1:]
		}
	}
	if strings.HasSuffix(s, "```") {
		idx := strings.LastIndex(s, "\n```")
		if idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

func validateNotes(notes []string, prefix string) ([]string, error) {
	if len(notes) == 0 {
		return nil, fmt.Errorf("%s: at least one note is required", prefix)
	}
	if len(notes) > MaxNotesPerPhase {
		return nil, fmt.Errorf("%s: %d notes exceeds the limit of %d", prefix, len(notes), MaxNotesPerPhase)
	}
	out := make([]string, 0, len(notes))
	for i, note := range notes {
		note = strings.TrimSpace(note)
		if note == "" {
			return nil, fmt.Errorf("%s.notes[%d]: note is empty", prefix, i)
		}
		if n := len([]rune(note)); n > MaxNoteLength {
			return nil, fmt.Errorf("%s.notes[%d]: %d characters exceeds the limit of %d", prefix, i, n, MaxNoteLength)
		}
		out = append(out, note)
	}
	return out, nil
}
