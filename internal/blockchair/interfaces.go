package blockchair

import (
	"context"

	"github.com/Enucatl/therocktrading-blockchain-data/internal/model"
)

// TransactionIndex defines the contract for querying on-chain transaction
// records. This interface allows for easy mocking in tests and swapping
// explorers.
type TransactionIndex interface {
	// Search runs one filter query against a chain dashboard, e.g.
	// "bitcoin/outputs" or "ethereum/transactions".
	Search(ctx context.Context, chain string, query Query) ([]model.OnChainTransaction, error)
}
