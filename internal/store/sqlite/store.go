// Package sqlite keeps journey runs in a local SQLite database so several
// runs can be compared with plain SQL.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/dshills/surveysim/internal/journey"
	"github.com/dshills/surveysim/internal/survey"
	"github.com/dshills/surveysim/internal/table"
)

// Store persists journey results. Each run is written in a single
// transaction; saving a run id again replaces its rows.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "surveysim.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	for _, ddl := range schema() {
		if _, err := db.Exec(ddl); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create tables: %w", err)
		}
	}
	return &Store{db: db, path: path}, nil
}

func scoreColumns() []string {
	cols := make([]string, survey.QuestionCount)
	for q := 1; q <= survey.QuestionCount; q++ {
		cols[q-1] = table.ScoreColumn(q)
	}
	return cols
}

func schema() []string {
	scores := scoreColumns()
	for i, c := range scores {
		scores[i] = c + " REAL"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			organization TEXT NOT NULL,
			company TEXT NOT NULL,
			seed INTEGER NOT NULL,
			generated_at TEXT NOT NULL,
			story BLOB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS periods (
			run_id TEXT NOT NULL,
			phase INTEGER NOT NULL,
			name TEXT NOT NULL,
			survey_wave TEXT NOT NULL,
			assessment_date TEXT NOT NULL,
			respondents INTEGER NOT NULL,
			sentiment_mean REAL NOT NULL,
			capability_mean REAL NOT NULL,
			PRIMARY KEY (run_id, phase)
		)`,
		`CREATE TABLE IF NOT EXISTS respondents (
			run_id TEXT NOT NULL,
			survey_wave TEXT NOT NULL,
			respondent_id TEXT NOT NULL,
			region TEXT, department TEXT, employment_type TEXT, age TEXT,
			user_language TEXT, industry TEXT, continent TEXT,
			` + strings.Join(scores, ", ") + `
		)`,
		`CREATE TABLE IF NOT EXISTS capability_scores (
			run_id TEXT NOT NULL,
			survey_wave TEXT NOT NULL,
			respondent_id TEXT NOT NULL,
			dimension_id INTEGER NOT NULL,
			dimension TEXT NOT NULL,
			construct_id INTEGER NOT NULL,
			construct TEXT NOT NULL,
			score REAL NOT NULL,
			industry TEXT, country TEXT, continent TEXT, role TEXT
		)`,
	}
}

var runTables = []string{"capability_scores", "respondents", "periods", "runs"}

// SaveRun writes every period of res under the story's run id.
func (s *Store) SaveRun(ctx context.Context, res *journey.Result) (retErr error) {
	story, err := json.Marshal(res.Story)
	if err != nil {
		return fmt.Errorf("encode story: %w", err)
	}
	runID := res.Story.Meta.RunID

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	for _, t := range runTables {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t+` WHERE run_id = ?`, runID); err != nil {
			return fmt.Errorf("clear %s: %w", t, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO runs(run_id, organization, company, seed, generated_at, story) VALUES(?,?,?,?,?,?)`,
		runID, res.Story.Organization, res.Story.Company, res.Story.Seed, res.Story.Meta.GeneratedAt, story); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for _, p := range res.Periods {
		if err := savePeriod(ctx, tx, runID, p); err != nil {
			return fmt.Errorf("phase %d: %w", p.Number, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func savePeriod(ctx context.Context, tx *sql.Tx, runID string, p journey.Period) error {
	sum := p.Summary
	if _, err := tx.ExecContext(ctx, `INSERT INTO periods(run_id, phase, name, survey_wave, assessment_date, respondents, sentiment_mean, capability_mean) VALUES(?,?,?,?,?,?,?,?)`,
		runID, p.Number, p.Name, p.Wave, p.Date, sum.Respondents, sum.Sentiment.Mean, sum.Capability.Mean); err != nil {
		return fmt.Errorf("insert period: %w", err)
	}

	cols := scoreColumns()
	marks := strings.TrimSuffix(strings.Repeat("?,", 10+len(cols)), ",")
	rs, err := tx.PrepareContext(ctx, `INSERT INTO respondents(run_id, survey_wave, respondent_id, region, department, employment_type, age, user_language, industry, continent, `+
		strings.Join(cols, ", ")+`) VALUES(`+marks+`)`)
	if err != nil {
		return fmt.Errorf("prepare respondents: %w", err)
	}
	defer func() { _ = rs.Close() }()
	for i := 0; i < p.Sentiment.Len(); i++ {
		r := p.Sentiment.At(i)
		args := []any{runID, p.Wave, r.ID, r.Region, r.Department, r.EmploymentType, r.Age, r.Language, r.Industry, r.Continent}
		for q := 1; q <= survey.QuestionCount; q++ {
			if v, ok := r.Score(q); ok {
				args = append(args, v)
			} else {
				args = append(args, nil)
			}
		}
		if _, err := rs.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert respondent %s: %w", r.ID, err)
		}
	}

	cs, err := tx.PrepareContext(ctx, `INSERT INTO capability_scores(run_id, survey_wave, respondent_id, dimension_id, dimension, construct_id, construct, score, industry, country, continent, role) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare capability_scores: %w", err)
	}
	defer func() { _ = cs.Close() }()
	for i := 0; i < p.Capability.Len(); i++ {
		c := p.Capability.At(i)
		if _, err := cs.ExecContext(ctx, runID, p.Wave, c.ID, c.DimensionID, c.Dimension, c.ConstructID, c.Construct, c.Score,
			c.Industry, c.Country, c.Continent, c.Role); err != nil {
			return fmt.Errorf("insert capability score %s/%d: %w", c.ID, c.ConstructID, err)
		}
	}
	return nil
}

// Counts returns the number of stored rows per table for a run.
func (s *Store) Counts(ctx context.Context, runID string) (map[string]int, error) {
	out := make(map[string]int, len(runTables))
	for _, t := range runTables {
		var n int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+t+` WHERE run_id = ?`, runID).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", t, err)
		}
		out[t] = n
	}
	return out, nil
}

// PeriodMeans returns the stored sentiment and capability means of a run,
// ordered by phase.
func (s *Store) PeriodMeans(ctx context.Context, runID string) ([][2]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT sentiment_mean, capability_mean FROM periods WHERE run_id = ? ORDER BY phase`, runID)
	if err != nil {
		return nil, fmt.Errorf("select periods: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out [][2]float64
	for rows.Next() {
		var m [2]float64
		if err := rows.Scan(&m[0], &m[1]); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
