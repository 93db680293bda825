package sqlite

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/surveysim/internal/config"
	"github.com/dshills/surveysim/internal/journey"
)

func runJourney(t *testing.T, count int) *journey.Result {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Sentiment.Count = count
	rng := rand.New(rand.NewSource(cfg.Seed))
	base, err := journey.Generate(cfg, rng)
	require.NoError(t, err)
	res, err := journey.Run(cfg, base, rng, nil)
	require.NoError(t, err)
	return res
}

func TestStore_SaveRunCounts(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(filepath.Join(t.TempDir(), "nested", "runs.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	res := runJourney(t, 20)
	require.NoError(t, store.SaveRun(ctx, res))

	counts, err := store.Counts(ctx, res.Story.Meta.RunID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"runs":              1,
		"periods":           3,
		"respondents":       3 * 20,
		"capability_scores": 3 * 20 * 32,
	}, counts)

	means, err := store.PeriodMeans(ctx, res.Story.Meta.RunID)
	require.NoError(t, err)
	require.Len(t, means, 3)
	for i, p := range res.Periods {
		assert.InDelta(t, p.Summary.Sentiment.Mean, means[i][0], 1e-9)
		assert.InDelta(t, p.Summary.Capability.Mean, means[i][1], 1e-9)
	}
}

func TestStore_SaveRunReplaces(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	res := runJourney(t, 5)
	require.NoError(t, store.SaveRun(ctx, res))
	require.NoError(t, store.SaveRun(ctx, res))

	counts, err := store.Counts(ctx, res.Story.Meta.RunID)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["runs"])
	assert.Equal(t, 15, counts["respondents"])
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	res := runJourney(t, 5)
	require.NoError(t, store.SaveRun(ctx, res))
	require.NoError(t, store.Close())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	assert.Equal(t, path, reopened.Path())

	var org string
	require.NoError(t, reopened.db.QueryRowContext(ctx, `SELECT organization FROM runs WHERE run_id = ?`, res.Story.Meta.RunID).Scan(&org))
	assert.Equal(t, "Acme Wealth Advisors", org)

	var ids int
	require.NoError(t, reopened.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM respondents WHERE respondent_id LIKE 'NOV25_%'`).Scan(&ids))
	assert.Equal(t, 5, ids)
}

func TestStore_MissingScoresStoredAsNull(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	res := runJourney(t, 3)
	delete(res.Periods[0].Sentiment.At(0).Scores, 7)
	require.NoError(t, store.SaveRun(ctx, res))

	var nulls int
	require.NoError(t, store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM respondents WHERE sentiment_7 IS NULL`).Scan(&nulls))
	assert.Equal(t, 1, nulls)
}
