// Package report writes the merged reconciliation output: every outbound
// ledger row joined to its resolved on-chain fields by Id.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/Enucatl/therocktrading-blockchain-data/internal/model"
)

const (
	dateFormat = "2006-01-02"
	timeFormat = "2006-01-02 15:04:05"
)

// onChainColumns are appended after the ledger and balance columns.
var onChainColumns = []string{"transaction_hash", "time", "value", "recipient"}

// Write renders outbound entries joined to their match results as CSV.
// An entry with k surviving candidates yields k rows; an unmatched entry
// yields a single row with empty on-chain fields rather than being
// dropped.
func Write(w io.Writer, outbound []model.LedgerEntry, results []model.MatchResult) error {
	byID := make(map[string][]model.OnChainTransaction, len(results))
	for _, r := range results {
		byID[r.EntryID] = append(byID[r.EntryID], r.Transactions...)
	}

	currencies := balanceColumns(outbound)

	cw := csv.NewWriter(w)

	header := []string{"Id", "Date", "Currency", "Type", "Price", "Note"}
	for _, c := range currencies {
		header = append(header, string(c))
	}
	header = append(header, onChainColumns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, entry := range outbound {
		base := make([]string, 0, len(header))
		base = append(base,
			entry.ID,
			formatDate(entry.Date),
			string(entry.Currency),
			string(entry.Type),
			entry.Price.String(),
			entry.Note,
		)
		for _, c := range currencies {
			base = append(base, entry.Balance(c).String())
		}

		matches := byID[entry.ID]
		if len(matches) == 0 {
			row := append(append([]string{}, base...), "", "", "", "")
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
			continue
		}

		for _, tx := range matches {
			row := append(append([]string{}, base...),
				tx.Hash,
				tx.Time.Format(timeFormat),
				tx.Value.String(),
				tx.Recipient,
			)
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes the merged table to path. The file is only created once
// matching has already succeeded, so a failed run leaves no output behind.
func WriteFile(path string, outbound []model.LedgerEntry, results []model.MatchResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := Write(f, outbound, results); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// formatDate keeps the precision the ledger row was parsed with: rows
// carrying a time-of-day keep it, date-only rows stay date-only.
func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(dateFormat)
	}
	return t.Format(timeFormat)
}

// balanceColumns collects the sorted union of currencies carried on the
// entries' balance snapshots.
func balanceColumns(entries []model.LedgerEntry) []model.Currency {
	seen := make(map[model.Currency]bool)
	var currencies []model.Currency
	for _, e := range entries {
		for c := range e.Balances {
			if !seen[c] {
				seen[c] = true
				currencies = append(currencies, c)
			}
		}
	}
	sort.Slice(currencies, func(i, j int) bool {
		return currencies[i] < currencies[j]
	})
	return currencies
}
