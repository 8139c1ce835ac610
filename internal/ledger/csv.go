// Package ledger loads the portfolio transaction history and prepares it
// for reconciliation: CSV parsing, running per-currency balances, and
// selection of the outbound rows that need an on-chain counterpart.
package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Enucatl/therocktrading-blockchain-data/internal/common"
	"github.com/Enucatl/therocktrading-blockchain-data/internal/model"
	"github.com/shopspring/decimal"
)

// requiredColumns must all be present in the CSV header, by name.
var requiredColumns = []string{"Id", "Date", "Currency", "Type", "Price", "Note"}

// dateLayouts accepted for the Date column.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Load reads the ledger CSV at path. Any malformed row is fatal: there is
// no partial-row fallback at this stage.
func Load(path string) ([]model.LedgerEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	entries, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Read parses ledger rows from r. The first record is the header; required
// columns are located by name so extra columns and column order don't
// matter.
func Read(r io.Reader) ([]model.LedgerEntry, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", common.ErrMissingColumn, name)
		}
	}

	var entries []model.LedgerEntry
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		date, err := parseDate(record[cols["Date"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		priceField := strings.TrimSpace(record[cols["Price"]])
		price, err := decimal.NewFromString(priceField)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %q", line, common.ErrBadPrice, priceField)
		}

		entries = append(entries, model.LedgerEntry{
			ID:       strings.TrimSpace(record[cols["Id"]]),
			Date:     date,
			Currency: model.Currency(strings.TrimSpace(record[cols["Currency"]])),
			Type:     model.EntryType(strings.TrimSpace(record[cols["Type"]])),
			Price:    price,
			Note:     strings.TrimSpace(record[cols["Note"]]),
		})
	}

	return entries, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", common.ErrBadDate, s)
}
