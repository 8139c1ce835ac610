package blockchair

import (
	"context"

	"github.com/Enucatl/therocktrading-blockchain-data/internal/model"
)

// MockIndex is a mock implementation of TransactionIndex for testing.
type MockIndex struct {
	// SearchFn can be set by tests to control behavior.
	SearchFn func(ctx context.Context, chain string, query Query) ([]model.OnChainTransaction, error)

	// Call tracking.
	SearchCalls []SearchCall
}

// SearchCall records the parameters of a Search call.
type SearchCall struct {
	Chain string
	Query Query
}

// NewMockIndex creates a new mock transaction index.
func NewMockIndex() *MockIndex {
	return &MockIndex{
		SearchCalls: []SearchCall{},
	}
}

// Search implements TransactionIndex.Search.
func (m *MockIndex) Search(ctx context.Context, chain string, query Query) ([]model.OnChainTransaction, error) {
	m.SearchCalls = append(m.SearchCalls, SearchCall{
		Chain: chain,
		Query: query,
	})

	if m.SearchFn != nil {
		return m.SearchFn(ctx, chain, query)
	}

	// Default behavior: return empty slice
	return []model.OnChainTransaction{}, nil
}

// Reset clears all call tracking.
func (m *MockIndex) Reset() {
	m.SearchCalls = []SearchCall{}
}

// Ensure MockIndex implements the TransactionIndex interface.
var _ TransactionIndex = (*MockIndex)(nil)
