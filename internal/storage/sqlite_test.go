package storage

import (
	"context"
	"testing"
	"time"

	"github.com/Enucatl/therocktrading-blockchain-data/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func TestSaveAndListRuns(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	run := Run{
		StartedAt:     time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC),
		LedgerPath:    "transactions.csv",
		EntryCount:    10,
		OutboundCount: 3,
		MatchedCount:  2,
	}
	results := []model.MatchResult{
		{
			EntryID: "7",
			Transactions: []model.OnChainTransaction{
				{
					Hash:      "abc",
					Time:      time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC),
					Value:     decimal.NewFromInt(50000000),
					Recipient: "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa",
				},
			},
		},
		{EntryID: "8"},
	}

	runID, err := store.SaveRun(ctx, run, results)
	require.NoError(t, err)
	assert.Positive(t, runID)

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, runID, got.ID)
	assert.Equal(t, "transactions.csv", got.LedgerPath)
	assert.Equal(t, 10, got.EntryCount)
	assert.Equal(t, 3, got.OutboundCount)
	assert.Equal(t, 2, got.MatchedCount)
}

func TestGetMatches(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	results := []model.MatchResult{
		{
			EntryID: "7",
			Transactions: []model.OnChainTransaction{
				{Hash: "a", Time: time.Date(2021, 3, 1, 9, 0, 0, 0, time.UTC), Value: decimal.NewFromInt(1)},
				{Hash: "b", Time: time.Date(2021, 3, 1, 11, 0, 0, 0, time.UTC), Value: decimal.NewFromInt(2)},
			},
		},
	}

	runID, err := store.SaveRun(ctx, Run{StartedAt: time.Now(), LedgerPath: "t.csv"}, results)
	require.NoError(t, err)

	matches, err := store.GetMatches(ctx, runID)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "7", matches[0].EntryID)
	assert.Equal(t, "a", matches[0].TransactionHash)
	assert.Equal(t, "1", matches[0].Value)
	assert.Equal(t, "b", matches[1].TransactionHash)
}

func TestListRunsOrder(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	older := Run{StartedAt: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), LedgerPath: "old.csv"}
	newer := Run{StartedAt: time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC), LedgerPath: "new.csv"}

	_, err := store.SaveRun(ctx, older, nil)
	require.NoError(t, err)
	_, err = store.SaveRun(ctx, newer, nil)
	require.NoError(t, err)

	runs, err := store.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "new.csv", runs[0].LedgerPath)
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := newTestStorage(t)
	require.NoError(t, store.Migrate(context.Background()))
}

func TestMigrateReachesExpectedSchemaVersion(t *testing.T) {
	store := newTestStorage(t)

	var version int
	require.NoError(t, store.db.QueryRow(
		`SELECT MAX(version) FROM schema_versions`).Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestCountMatched(t *testing.T) {
	results := []model.MatchResult{
		{EntryID: "1", Transactions: []model.OnChainTransaction{{Hash: "a"}}},
		{EntryID: "2"},
		{EntryID: "3", Transactions: []model.OnChainTransaction{{Hash: "b"}, {Hash: "c"}}},
	}

	assert.Equal(t, 2, CountMatched(results))
}
