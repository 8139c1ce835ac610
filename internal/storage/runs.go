package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Enucatl/therocktrading-blockchain-data/internal/model"
)

// Run summarizes one reconciliation run.
type Run struct {
	StartedAt     time.Time
	LedgerPath    string
	ID            int64
	EntryCount    int
	OutboundCount int
	MatchedCount  int
}

// StoredMatch is one surviving candidate as persisted for a run.
type StoredMatch struct {
	Time            time.Time
	EntryID         string
	TransactionHash string
	Value           string
	Recipient       string
}

// SaveRun inserts the run and every surviving candidate in one
// transaction, returning the new run id.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run Run, results []model.MatchResult) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, ledger_path, entry_count, outbound_count, matched_count)
		 VALUES (?, ?, ?, ?, ?)`,
		run.StartedAt, run.LedgerPath, run.EntryCount, run.OutboundCount, run.MatchedCount)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	for _, result := range results {
		for _, t := range result.Transactions {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO matches (run_id, entry_id, transaction_hash, time, value, recipient)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				runID, result.EntryID, t.Hash, t.Time, t.Value.String(), t.Recipient); err != nil {
				_ = tx.Rollback()
				return 0, fmt.Errorf("failed to insert match for entry %s: %w", result.EntryID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	return runID, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, ledger_path, entry_count, outbound_count, matched_count
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.LedgerPath,
			&r.EntryCount, &r.OutboundCount, &r.MatchedCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetMatches returns the stored candidates for one run, in insertion order.
func (s *SQLiteStorage) GetMatches(ctx context.Context, runID int64) ([]StoredMatch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry_id, transaction_hash, time, value, recipient
		 FROM matches WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var matches []StoredMatch
	for rows.Next() {
		var m StoredMatch
		if err := rows.Scan(&m.EntryID, &m.TransactionHash, &m.Time, &m.Value, &m.Recipient); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// CountMatched counts results carrying at least one candidate.
func CountMatched(results []model.MatchResult) int {
	matched := 0
	for _, r := range results {
		if r.Matched() {
			matched++
		}
	}
	return matched
}
