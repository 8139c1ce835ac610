// Package matcher resolves outbound ledger entries to on-chain
// transactions through a two-stage policy: a time-and-value (or
// time-and-recipient) query against the transaction index, followed by a
// local recipient re-filter.
package matcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Enucatl/therocktrading-blockchain-data/internal/blockchair"
	"github.com/Enucatl/therocktrading-blockchain-data/internal/model"
	"github.com/shopspring/decimal"
)

// ChainConfig describes how one currency maps onto the transaction index.
type ChainConfig struct {
	// Path is the chain dashboard, e.g. "bitcoin/outputs".
	Path string
	// Exponent is the decimal shift from native units to base units:
	// 8 for satoshi-denominated chains, 18 for wei.
	Exponent int32
}

// chains is a fixed configuration table. Currencies outside it yield empty
// matches without ever touching the index.
var chains = map[model.Currency]ChainConfig{
	model.CurrencyBTC: {Path: "bitcoin/outputs", Exponent: 8},
	model.CurrencyBCH: {Path: "bitcoin-cash/outputs", Exponent: 8},
	model.CurrencyETH: {Path: "ethereum/transactions", Exponent: 18},
}

// Supported reports whether a currency has a configured chain.
func Supported(currency model.Currency) bool {
	_, ok := chains[currency]
	return ok
}

// BaseUnits converts a native-unit price to an integer base-unit amount,
// rendered as a decimal string: round(|price| * 10^exponent).
func BaseUnits(price decimal.Decimal, exponent int32) string {
	return price.Abs().Shift(exponent).Round(0).String()
}

// Window returns the inclusive calendar bounds searched around a ledger
// date. One day of slack on each side tolerates explorer/ledger clock skew
// and timezone rounding.
func Window(date time.Time) (from, to time.Time) {
	return date.AddDate(0, 0, -1), date.AddDate(0, 0, 1)
}

// Matcher runs the matching policy against a transaction index.
type Matcher struct {
	index blockchair.TransactionIndex
}

// New creates a Matcher backed by the given index.
func New(index blockchair.TransactionIndex) *Matcher {
	return &Matcher{index: index}
}

// Match resolves one ledger entry to its surviving on-chain candidates.
// The result may hold zero, one, or many transactions; disambiguating
// collisions is left to the caller. An unsupported currency yields an
// empty result without a network call. Index failures abort the entry.
func (m *Matcher) Match(ctx context.Context, entry model.LedgerEntry) (model.MatchResult, error) {
	result := model.MatchResult{EntryID: entry.ID}

	cfg, ok := chains[entry.Currency]
	if !ok {
		slog.Debug("No chain configured for currency, skipping entry",
			"id", entry.ID,
			"currency", entry.Currency)
		return result, nil
	}

	from, to := Window(entry.Date)
	query := blockchair.Query{From: from, To: to}
	if entry.Note != "" {
		// Combining value and recipient filters server-side has proven
		// unreliable, so the note replaces the value filter entirely.
		query.Recipient = entry.Note
	} else {
		query.Value = BaseUnits(entry.Price, cfg.Exponent)
	}

	candidates, err := m.index.Search(ctx, cfg.Path, query)
	if err != nil {
		return model.MatchResult{}, fmt.Errorf("entry %s: %w", entry.ID, err)
	}

	result.Transactions = refineByRecipient(candidates, entry.Note)
	return result, nil
}

// Reconcile matches every entry in ledger order, one blocking call at a
// time, invoking progress after each. Entries are independent of each
// other; the first index failure aborts the whole run.
func (m *Matcher) Reconcile(ctx context.Context, entries []model.LedgerEntry, progress func()) ([]model.MatchResult, error) {
	results := make([]model.MatchResult, 0, len(entries))
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		result, err := m.Match(ctx, entry)
		if err != nil {
			return nil, err
		}
		results = append(results, result)

		if progress != nil {
			progress()
		}
	}
	return results, nil
}

// refineByRecipient narrows candidates to exact recipient matches. The
// explorer's own recipient filter cannot be trusted, so a non-empty
// narrowed set supersedes the raw one, while an empty narrowed set leaves
// the raw candidates untouched.
func refineByRecipient(candidates []model.OnChainTransaction, note string) []model.OnChainTransaction {
	if note == "" {
		return candidates
	}

	narrowed := make([]model.OnChainTransaction, 0, len(candidates))
	for _, tx := range candidates {
		if tx.Recipient == note {
			narrowed = append(narrowed, tx)
		}
	}
	if len(narrowed) > 0 {
		return narrowed
	}
	return candidates
}
