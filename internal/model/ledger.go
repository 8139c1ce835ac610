// Package model defines the core types shared across the reconciliation
// pipeline.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency identifies the cryptocurrency a ledger row is denominated in.
type Currency string

// Currencies with a configured chain matcher.
const (
	CurrencyBTC Currency = "BTC"
	CurrencyBCH Currency = "BCH"
	CurrencyETH Currency = "ETH"
)

// EntryType categorizes a ledger row.
type EntryType string

const (
	// TypeWithdraw is an on-chain withdrawal to an external address.
	TypeWithdraw EntryType = "withdraw"
	// TypeATMPayment is a payment made through a crypto ATM.
	TypeATMPayment EntryType = "atm_payment"
)

// IsOutbound reports whether entries of this type move funds out of the
// portfolio and therefore need an on-chain counterpart.
func (t EntryType) IsOutbound() bool {
	return t == TypeWithdraw || t == TypeATMPayment
}

// LedgerEntry represents a single row of the user's transaction history.
type LedgerEntry struct {
	Date     time.Time
	Balances map[Currency]decimal.Decimal
	ID       string
	Currency Currency
	Type     EntryType
	Note     string // Optional recipient hint, may be empty
	Price    decimal.Decimal
}

// Balance returns the running balance of the given currency after this
// entry, or zero when the ledger never touches that currency.
func (e *LedgerEntry) Balance(currency Currency) decimal.Decimal {
	if b, ok := e.Balances[currency]; ok {
		return b
	}
	return decimal.Zero
}
