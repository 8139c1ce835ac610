package ledger

import (
	"sort"

	"github.com/Enucatl/therocktrading-blockchain-data/internal/model"
	"github.com/shopspring/decimal"
)

// balancePrecision matches the precision used by the source spreadsheet
// and keeps repeated additions from accumulating rounding drift.
const balancePrecision = 8

// ComputeRunningBalances sorts entries ascending by date (stable) and
// attaches to every entry the post-transaction cumulative balance of each
// currency present anywhere in the ledger. Currencies a row does not touch
// carry the prior cumulative value forward, so the last chronological row
// holds the final state of the whole portfolio.
//
// The input slice is not modified.
func ComputeRunningBalances(entries []model.LedgerEntry) []model.LedgerEntry {
	out := make([]model.LedgerEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})

	// One accumulator cell per currency, zero before its first entry.
	running := make(map[model.Currency]decimal.Decimal)
	for _, e := range out {
		if _, ok := running[e.Currency]; !ok {
			running[e.Currency] = decimal.Zero
		}
	}

	// The accumulators stay exact; only the per-row snapshots are
	// rounded, so amounts finer than the display precision still add up
	// across entries.
	for i := range out {
		c := out[i].Currency
		running[c] = running[c].Add(out[i].Price)

		snapshot := make(map[model.Currency]decimal.Decimal, len(running))
		for currency, balance := range running {
			snapshot[currency] = balance.Round(balancePrecision)
		}
		out[i].Balances = snapshot
	}

	return out
}

// SelectOutbound filters to the rows that represent funds leaving the
// portfolio and therefore need on-chain reconciliation. Pure filter, no
// side effects.
func SelectOutbound(entries []model.LedgerEntry) []model.LedgerEntry {
	outbound := make([]model.LedgerEntry, 0)
	for _, e := range entries {
		if e.Type.IsOutbound() {
			outbound = append(outbound, e)
		}
	}
	return outbound
}

// FinalBalances returns the running balance of every currency after the
// last chronological entry.
func FinalBalances(entries []model.LedgerEntry) map[model.Currency]decimal.Decimal {
	withBalances := ComputeRunningBalances(entries)
	if len(withBalances) == 0 {
		return map[model.Currency]decimal.Decimal{}
	}
	return withBalances[len(withBalances)-1].Balances
}
