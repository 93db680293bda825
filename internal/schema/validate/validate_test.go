package validate

import (
	"strings"
	"testing"
)

var storyPhases = []int{1, 2, 3}

const validJSON = `{
  "notes": {
    "1": ["Baseline of 500 respondents."],
    "2": ["Sentiment fell by 0.4.", "  Capability rose after A1.  "]
  }
}`

func TestParse_Valid(t *testing.T) {
	notes, err := Parse(validJSON, storyPhases)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(notes))
	}
	if got := notes[2][1]; got != "Capability rose after A1." {
		t.Errorf("note not trimmed: %q", got)
	}
	if _, ok := notes[3]; ok {
		t.Error("phase 3 should be absent")
	}
}

func TestParse_StripsFences(t *testing.T) {
	fenced := "```json\n" + validJSON + "\n```"
	notes, err := Parse(fenced, storyPhases)
	if err != nil {
		t.Fatalf("Parse with fences: %v", err)
	}
	if len(notes[1]) != 1 {
		t.Errorf("expected 1 note for phase 1, got %v", notes[1])
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse("{not valid json}", storyPhases)
	if err == nil {
		t.Error("expected error for invalid JSON, got nil")
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", `{"notes": {}}`, "no notes"},
		{"non numeric key", `{"notes": {"one": ["x"]}}`, "not a phase number"},
		{"unknown phase", `{"notes": {"4": ["x"]}}`, "unknown phase 4"},
		{"no notes for phase", `{"notes": {"2": []}}`, "at least one note"},
		{"blank note", `{"notes": {"2": ["ok", "   "]}}`, "notes[1]: note is empty"},
		{"too many", `{"notes": {"2": ["a","b","c","d","e","f","g"]}}`, "exceeds the limit"},
		{"too long", `{"notes": {"2": ["` + strings.Repeat("x", MaxNoteLength+1) + `"]}}`, "characters exceeds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw, storyPhases)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{}\n```": "{}",
		"```\n{}\n```":     "{}",
		"  {}  ":           "{}",
	}
	for in, want := range cases {
		if got := stripFences(in); got != want {
			t.Errorf("stripFences(%q) = %q, want %q", in, got, want)
		}
	}
}
