package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFirst_SkipsMissing(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "data", "sentiment_demo.csv")
	found := writeTempFile(t, dir, "sample_sentiment.csv", "respondent_id,sentiment_1\nR1,2\n")
	later := writeTempFile(t, dir, "later.csv", "respondent_id\nR9\n")

	core, logs := observer.New(zap.InfoLevel)
	tbl, failures, err := First([]string{missing, found, later}, zap.New(core))
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	if tbl.Path != found {
		t.Errorf("Path = %q, want %q", tbl.Path, found)
	}
	if len(failures) != 1 || failures[0].Path != missing {
		t.Fatalf("failures = %+v", failures)
	}
	if !errors.Is(failures[0].Err, os.ErrNotExist) {
		t.Errorf("failure error = %v, want not-exist", failures[0].Err)
	}
	if logs.FilterMessage("candidate skipped").Len() != 1 {
		t.Error("expected one skip to be logged")
	}
}

func TestFirst_UnreadableContinues(t *testing.T) {
	dir := t.TempDir()
	bad := writeTempFile(t, dir, "bad.csv", "a,\"unterminated\n")
	good := writeTempFile(t, dir, "good.csv", "sentiment_1\n1\n")

	tbl, failures, err := First([]string{bad, good}, nil)
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	if tbl.Path != good || len(failures) != 1 {
		t.Errorf("got %q with %d failures", tbl.Path, len(failures))
	}
}

func TestFirst_NoCandidate(t *testing.T) {
	dir := t.TempDir()
	_, failures, err := First([]string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")}, nil)
	if !errors.Is(err, ErrNoCandidate) {
		t.Fatalf("expected ErrNoCandidate, got %v", err)
	}
	if len(failures) != 2 {
		t.Errorf("expected 2 failures, got %d", len(failures))
	}

	if _, _, err := First(nil, nil); !errors.Is(err, ErrNoCandidate) {
		t.Errorf("expected ErrNoCandidate for empty list, got %v", err)
	}
}
