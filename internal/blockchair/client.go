// Package blockchair provides a client for the Blockchair transaction index.
package blockchair

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Enucatl/therocktrading-blockchain-data/internal/common"
	"github.com/Enucatl/therocktrading-blockchain-data/internal/model"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the public Blockchair API endpoint.
const DefaultBaseURL = "https://api.blockchair.com"

// timeLayout is how Blockchair renders transaction timestamps (UTC).
const timeLayout = "2006-01-02 15:04:05"

// Client implements TransactionIndex against the Blockchair HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// record is one row of the response data list. Bitcoin-family outputs
// dashboards name the hash column transaction_hash, the ethereum
// transactions dashboard names it hash; we accept either.
type record struct {
	TransactionHash string          `json:"transaction_hash"`
	Hash            string          `json:"hash"`
	Time            string          `json:"time"`
	Recipient       string          `json:"recipient"`
	Value           decimal.Decimal `json:"value"`
}

// NewClient creates a client against the public Blockchair endpoint.
func NewClient(apiKey string) *Client {
	return NewClientWithBaseURL(DefaultBaseURL, apiKey)
}

// NewClientWithBaseURL creates a client against a custom endpoint, used by
// tests to point at a local server.
func NewClientWithBaseURL(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Search runs one filter query against a chain dashboard. Failures are not
// retried; a response without the expected data list is a parsing error.
func (c *Client) Search(ctx context.Context, chain string, query Query) ([]model.OnChainTransaction, error) {
	u, err := url.Parse(fmt.Sprintf("%s/%s", c.baseURL, chain))
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	q := u.Query()
	q.Set("q", query.Encode())
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	slog.Debug("Querying blockchair",
		"chain", chain,
		"q", query.Encode())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrBlockchairConnection, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("blockchair API error: %d - %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrBadResponse, err)
	}
	if len(payload.Data) == 0 || string(payload.Data) == "null" {
		return nil, fmt.Errorf("%w: missing data list", common.ErrBadResponse)
	}

	var records []record
	if err := json.Unmarshal(payload.Data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrBadResponse, err)
	}

	transactions := make([]model.OnChainTransaction, 0, len(records))
	for _, r := range records {
		hash := r.TransactionHash
		if hash == "" {
			hash = r.Hash
		}

		t, err := parseTime(r.Time)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrBadResponse, err)
		}

		transactions = append(transactions, model.OnChainTransaction{
			Hash:      hash,
			Time:      t,
			Value:     r.Value,
			Recipient: r.Recipient,
		})
	}

	return transactions, nil
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// Ensure Client implements the TransactionIndex interface.
var _ TransactionIndex = (*Client)(nil)
