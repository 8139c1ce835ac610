package ledger

import (
	"testing"
	"time"

	"github.com/Enucatl/therocktrading-blockchain-data/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func entry(id string, day time.Time, currency model.Currency, entryType model.EntryType, price string) model.LedgerEntry {
	return model.LedgerEntry{
		ID:       id,
		Date:     day,
		Currency: currency,
		Type:     entryType,
		Price:    decimal.RequireFromString(price),
	}
}

func TestComputeRunningBalances(t *testing.T) {
	entries := []model.LedgerEntry{
		entry("1", date(2021, 1, 1), model.CurrencyBTC, "buy", "1.0"),
		entry("2", date(2021, 2, 1), model.CurrencyBTC, model.TypeWithdraw, "-0.3"),
	}

	out := ComputeRunningBalances(entries)
	require.Len(t, out, 2)

	assert.True(t, out[0].Balance(model.CurrencyBTC).Equal(decimal.RequireFromString("1.0")))
	assert.True(t, out[1].Balance(model.CurrencyBTC).Equal(decimal.RequireFromString("0.7")))
}

func TestComputeRunningBalancesCarriesForward(t *testing.T) {
	entries := []model.LedgerEntry{
		entry("1", date(2021, 1, 1), model.CurrencyBTC, "buy", "2.0"),
		entry("2", date(2021, 1, 2), model.CurrencyETH, "buy", "10.0"),
		entry("3", date(2021, 1, 3), model.CurrencyETH, model.TypeWithdraw, "-4.0"),
	}

	out := ComputeRunningBalances(entries)
	require.Len(t, out, 3)

	// Every row carries a cell for every currency in the ledger,
	// zero before the first touch and carried forward afterwards.
	assert.True(t, out[0].Balance(model.CurrencyETH).IsZero())
	assert.True(t, out[1].Balance(model.CurrencyBTC).Equal(decimal.RequireFromString("2.0")))
	assert.True(t, out[2].Balance(model.CurrencyBTC).Equal(decimal.RequireFromString("2.0")))
	assert.True(t, out[2].Balance(model.CurrencyETH).Equal(decimal.RequireFromString("6.0")))
}

func TestComputeRunningBalancesSortsByDate(t *testing.T) {
	entries := []model.LedgerEntry{
		entry("2", date(2021, 3, 1), model.CurrencyBTC, model.TypeWithdraw, "-0.3"),
		entry("1", date(2021, 1, 1), model.CurrencyBTC, "buy", "1.0"),
	}

	out := ComputeRunningBalances(entries)
	require.Len(t, out, 2)

	assert.Equal(t, "1", out[0].ID)
	assert.True(t, out[1].Balance(model.CurrencyBTC).Equal(decimal.RequireFromString("0.7")))
}

func TestComputeRunningBalancesRounding(t *testing.T) {
	// Per-row balance snapshots are rounded to 8 decimal places so drift
	// cannot accumulate across many additions.
	entries := []model.LedgerEntry{
		entry("1", date(2021, 1, 1), model.CurrencyBTC, "buy", "0.123456789"),
		entry("2", date(2021, 1, 2), model.CurrencyBTC, "buy", "0.000000001"),
	}

	out := ComputeRunningBalances(entries)
	require.Len(t, out, 2)

	assert.Equal(t, "0.12345679", out[0].Balance(model.CurrencyBTC).String())
	assert.Equal(t, "0.12345679", out[1].Balance(model.CurrencyBTC).String())
}

func TestComputeRunningBalancesKeepsSubPrecisionAmounts(t *testing.T) {
	// Amounts below the 8-decimal display precision round away in each
	// individual snapshot but must still accumulate, so the final
	// balance equals the rounded total sum rather than a sum of rounded
	// steps. Relevant for ETH, where a ledger price can carry up to 18
	// fractional digits.
	entries := []model.LedgerEntry{
		entry("1", date(2021, 1, 1), model.CurrencyETH, "buy", "0.000000004"),
		entry("2", date(2021, 1, 2), model.CurrencyETH, "buy", "0.000000004"),
	}

	out := ComputeRunningBalances(entries)
	require.Len(t, out, 2)

	assert.True(t, out[0].Balance(model.CurrencyETH).IsZero())
	assert.Equal(t, "0.00000001", out[1].Balance(model.CurrencyETH).String())

	final := FinalBalances(entries)
	assert.Equal(t, "0.00000001", final[model.CurrencyETH].String())
}

func TestComputeRunningBalancesLastRowIsTotal(t *testing.T) {
	entries := []model.LedgerEntry{
		entry("1", date(2021, 1, 1), model.CurrencyBTC, "buy", "1.1"),
		entry("2", date(2021, 1, 2), model.CurrencyBTC, "buy", "2.2"),
		entry("3", date(2021, 1, 3), model.CurrencyBTC, model.TypeWithdraw, "-0.4"),
	}

	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Price)
	}

	final := FinalBalances(entries)
	assert.True(t, final[model.CurrencyBTC].Equal(total.Round(8)))
}

func TestFinalBalancesEmptyLedger(t *testing.T) {
	final := FinalBalances(nil)
	assert.Empty(t, final)
}

func TestSelectOutbound(t *testing.T) {
	entries := []model.LedgerEntry{
		entry("1", date(2021, 1, 1), model.CurrencyBTC, "buy", "1.0"),
		entry("2", date(2021, 1, 2), model.CurrencyBTC, model.TypeWithdraw, "-0.3"),
		entry("3", date(2021, 1, 3), model.CurrencyBTC, "sell", "-0.1"),
		entry("4", date(2021, 1, 4), model.CurrencyETH, model.TypeATMPayment, "-0.2"),
		entry("5", date(2021, 1, 5), model.CurrencyBTC, "deposit", "0.5"),
	}

	outbound := SelectOutbound(entries)
	require.Len(t, outbound, 2)
	assert.Equal(t, "2", outbound[0].ID)
	assert.Equal(t, "4", outbound[1].ID)
}
