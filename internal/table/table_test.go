package table

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/surveysim/internal/survey"
)

func writeTempTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "table.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRead_HashStable(t *testing.T) {
	path := writeTempTable(t, "a,b\n1,2\n")

	t1, err := Read(path)
	require.NoError(t, err)
	t2, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, t1.Hash, t2.Hash)
	assert.True(t, strings.HasPrefix(t1.Hash, "sha256:"), t1.Hash)
	assert.Equal(t, []string{"a", "b"}, t1.Header)
	assert.Len(t, t1.Rows, 1)
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read("/nonexistent/path/table.csv")
	assert.Error(t, err)
}

func TestParse_StripsByteOrderMark(t *testing.T) {
	tbl, err := Parse(strings.NewReader("\ufeffrespondent_id,region\nR1,EU\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Column("respondent_id"))
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.Error(t, err)
}

func TestResolve_PrefersFirstAcceptedName(t *testing.T) {
	m, err := SentimentMapping().Resolve([]string{"RespondentID", "respondent_id", "Region"})
	require.NoError(t, err)
	assert.Equal(t, "respondent_id", m.Column(KeyID))
	assert.Equal(t, "Region", m.Column(KeyRegion))
	assert.False(t, m.present(KeyDepartment))
	assert.False(t, m.present("no_such_key"))
}

func TestResolve_MissingRequired(t *testing.T) {
	_, err := SentimentMapping().Resolve([]string{"region", "sentiment_1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "respondent_id, RespondentID")
}

func TestLoadSentiment_DefaultsAndMissingAnswers(t *testing.T) {
	path := writeTempTable(t, "RespondentID,Region,sentiment_1,sentiment_2\nR1,Europe,1.5,\nR2,,2.0,2.5\n")

	p, tbl, err := LoadSentiment(path)
	require.NoError(t, err)
	require.Equal(t, 2, p.Len())
	assert.Equal(t, path, tbl.Path)

	r1 := p.At(0)
	assert.Equal(t, "R1", r1.ID)
	assert.Equal(t, "Europe", r1.Region)
	assert.Equal(t, "Unknown", r1.Department)
	assert.Equal(t, "Full-time", r1.EmploymentType)
	assert.Equal(t, "30-39", r1.Age)
	assert.Equal(t, "en", r1.Language)
	assert.Equal(t, "Financial Services", r1.Industry)
	assert.Equal(t, "North America", r1.Continent)
	assert.Equal(t, map[int]float64{1: 1.5}, r1.Scores)

	assert.Equal(t, map[int]float64{1: 2.0, 2: 2.5}, p.At(1).Scores)
}

func TestLoadSentiment_BadScoreLocatesCell(t *testing.T) {
	path := writeTempTable(t, "respondent_id,sentiment_3\nR1,2.0\nR2,high\n")

	_, _, err := LoadSentiment(path)
	require.Error(t, err)
	var ce *CellError
	require.True(t, errors.As(err, &ce), err.Error())
	assert.Equal(t, 2, ce.Row)
	assert.Equal(t, "sentiment_3", ce.Column)
	assert.Contains(t, err.Error(), path)
}

func TestLoadSentiment_NaNIsMissingAnswer(t *testing.T) {
	path := writeTempTable(t, "respondent_id,sentiment_1,sentiment_2\nR1,NaN,2.5\n")

	p, _, err := LoadSentiment(path)
	require.NoError(t, err)
	require.Equal(t, 1, p.Len())
	assert.Equal(t, map[int]float64{2: 2.5}, p.At(0).Scores)
}

func TestLoadCapability_NaNScoreRejected(t *testing.T) {
	path := writeTempTable(t, "respondent_id,dimension_id,dimension,construct_id,construct,score\n"+
		"R1,1,Data,1,Data Quality,4.0\nR1,1,Data,2,Data Governance,NaN\n")

	_, _, err := LoadCapability(path)
	require.Error(t, err)
	var ce *CellError
	require.True(t, errors.As(err, &ce), err.Error())
	assert.Equal(t, 2, ce.Row)
	assert.Equal(t, "score", ce.Column)
}

func TestLoadCapability(t *testing.T) {
	path := writeTempTable(t, "respondent_id,dimension_id,dimension,construct_id,construct,score,role_synthetic\n"+
		"R1,1,Strategy and Vision,1,Alignment,4.25,Manager\n")

	p, _, err := LoadCapability(path)
	require.NoError(t, err)
	require.Equal(t, 1, p.Len())
	want := survey.CapabilityScore{
		ID: "R1", DimensionID: 1, Dimension: "Strategy and Vision", ConstructID: 1, Construct: "Alignment",
		Score: 4.25, Industry: "Financial Services", Country: "USA", Continent: "North America", Role: "Manager",
	}
	if diff := cmp.Diff(want, *p.At(0)); diff != "" {
		t.Errorf("capability row mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCapability_MissingRequiredColumn(t *testing.T) {
	path := writeTempTable(t, "ResponseId_id,dimension_id,dimension,construct_id,construct\nR1,1,D,1,C\n")
	_, _, err := LoadCapability(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "score")
}

func TestWriteSentiment_RoundTrip(t *testing.T) {
	in := survey.NewPopulation([]*survey.Respondent{
		{ID: "MAR25_R1", Region: "Europe", Department: "HR", EmploymentType: "<3 year", Age: "25-35",
			Language: "EN", Industry: "Retail", Continent: "Europe", Scores: map[int]float64{1: 1.5, 25: 2.75}},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteSentiment(&buf, in))
	assert.True(t, strings.HasPrefix(buf.String(), "respondent_id,region,department,"))

	path := writeTempTable(t, buf.String())
	out, _, err := LoadSentiment(path)
	require.NoError(t, err)
	if diff := cmp.Diff(in.Records(), out.Records()); diff != "" {
		t.Errorf("round trip mismatch (-in +out):\n%s", diff)
	}
}

func TestWriteCapability_RoundTrip(t *testing.T) {
	in := survey.NewPopulation([]*survey.CapabilityScore{
		{ID: "R1", DimensionID: 8, Dimension: "Ethics, Responsibility", ConstructID: 32, Construct: "Fairness",
			Score: 6.13, Industry: "Retail", Country: "USA", Continent: "North America", Role: "Analyst"},
	})
	path := filepath.Join(t.TempDir(), "out", "capability.csv")
	require.NoError(t, WriteFile(path, func(w io.Writer) error { return WriteCapability(w, in) }))

	out, _, err := LoadCapability(path)
	require.NoError(t, err)
	if diff := cmp.Diff(in.Records(), out.Records()); diff != "" {
		t.Errorf("round trip mismatch (-in +out):\n%s", diff)
	}
}
