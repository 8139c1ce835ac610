package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OnChainTransaction is one transaction record returned by the external
// transaction index. Value is the integer amount in the chain's base unit
// (satoshi, wei).
type OnChainTransaction struct {
	Time      time.Time
	Hash      string
	Recipient string
	Value     decimal.Decimal
}

// MatchResult attaches the surviving on-chain candidates to the ledger
// entry that produced them. Zero, one, or many candidates are all valid
// outcomes; an empty slice means no match was found and is not an error.
type MatchResult struct {
	EntryID      string
	Transactions []OnChainTransaction
}

// Matched reports whether at least one candidate survived.
func (r MatchResult) Matched() bool {
	return len(r.Transactions) > 0
}
