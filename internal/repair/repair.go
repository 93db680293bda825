// Package repair re-encodes legacy text files as UTF-8 and replaces the
// punctuation that commonly survives a bad Windows export.
package repair

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ErrUndecodable is returned when no candidate encoding decodes the input
// without replacement characters.
var ErrUndecodable = errors.New("could not decode input with any candidate encoding")

// DefaultEncodings are tried in order.
var DefaultEncodings = []string{"utf-8", "windows-1252", "latin-1", "iso-8859-1"}

// punctuation maps C1 control codes, the replacement character, curly quotes
// and dashes to plain ASCII.
var punctuation = strings.NewReplacer(
	"\u0091", "'",
	"\u0092", "'",
	"\u0093", `"`,
	"\u0094", `"`,
	"\u0096", "-",
	"\u0097", "-",
	"\u0085", "...",
	"\ufffd", "'",
	"\u201c", `"`,
	"\u201d", `"`,
	"\u2018", "'",
	"\u2019", "'",
	"\u2013", "-",
	"\u2014", "-",
	"\u2026", "...",
)

// Fix applies the punctuation table to s.
func Fix(s string) string {
	return punctuation.Replace(s)
}

func lookup(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "utf-8", "utf8":
		return nil, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "latin-1", "latin1":
		return charmap.ISO8859_1, nil
	case "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "iso-8859-15":
		return charmap.ISO8859_15, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// Decode returns data decoded by the first candidate that succeeds and that
// candidate's name. A nil candidates list means DefaultEncodings.
func Decode(data []byte, candidates []string) (string, string, error) {
	if candidates == nil {
		candidates = DefaultEncodings
	}
	for _, name := range candidates {
		enc, err := lookup(name)
		if err != nil {
			return "", "", err
		}
		if enc == nil {
			if utf8.Valid(data) {
				return string(data), name, nil
			}
			continue
		}
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil || strings.ContainsRune(string(out), utf8.RuneError) {
			continue
		}
		return string(out), name, nil
	}
	return "", "", ErrUndecodable
}

// Result describes one repaired input.
type Result struct {
	Path     string
	Encoding string
	// Decoded is the text before punctuation fixes; Fixed is what gets
	// written.
	Decoded string
	Fixed   string
	Changed bool
}

// Bytes decodes data and applies the punctuation table.
func Bytes(data []byte, candidates []string) (Result, error) {
	text, enc, err := Decode(data, candidates)
	if err != nil {
		return Result{}, err
	}
	fixed := Fix(text)
	return Result{
		Encoding: enc,
		Decoded:  text,
		Fixed:    fixed,
		Changed:  fixed != string(data),
	}, nil
}

// File repairs the file at path. Unless dryRun is set, a changed file is
// rewritten in place as UTF-8 with its permissions preserved.
func File(path string, candidates []string, dryRun bool) (Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	res, err := Bytes(data, candidates)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	res.Path = path
	if dryRun || !res.Changed {
		return res, nil
	}
	if err := os.WriteFile(path, []byte(res.Fixed), info.Mode().Perm()); err != nil {
		return Result{}, fmt.Errorf("writing %s: %w", path, err)
	}
	return res, nil
}
