package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/Enucatl/therocktrading-blockchain-data/internal/common"
	"github.com/Enucatl/therocktrading-blockchain-data/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr error
	}{
		{
			name: "valid ledger",
			input: "Id,Date,Currency,Type,Price,Note\n" +
				"1,2021-01-01,BTC,buy,1.0,\n" +
				"2,2021-01-05,BTC,withdraw,-0.5,1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa\n",
			want: 2,
		},
		{
			name: "columns located by name",
			input: "Note,Price,Id,Type,Currency,Date,Extra\n" +
				",2.5,7,buy,ETH,2021-03-01,ignored\n",
			want: 1,
		},
		{
			name: "datetime date accepted",
			input: "Id,Date,Currency,Type,Price,Note\n" +
				"1,2021-01-01 10:30:00,BTC,buy,1.0,\n",
			want: 1,
		},
		{
			name:    "missing column",
			input:   "Id,Date,Currency,Type,Price\n1,2021-01-01,BTC,buy,1.0\n",
			wantErr: common.ErrMissingColumn,
		},
		{
			name: "bad date",
			input: "Id,Date,Currency,Type,Price,Note\n" +
				"1,yesterday,BTC,buy,1.0,\n",
			wantErr: common.ErrBadDate,
		},
		{
			name: "bad price",
			input: "Id,Date,Currency,Type,Price,Note\n" +
				"1,2021-01-01,BTC,buy,one,\n",
			wantErr: common.ErrBadPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := Read(strings.NewReader(tt.input))

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Len(t, entries, tt.want)
		})
	}
}

func TestReadFields(t *testing.T) {
	input := "Id,Date,Currency,Type,Price,Note\n" +
		"42,2021-03-01,BTC,withdraw,-0.5,1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa\n"

	entries, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "42", e.ID)
	assert.Equal(t, time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), e.Date)
	assert.Equal(t, model.CurrencyBTC, e.Currency)
	assert.Equal(t, model.TypeWithdraw, e.Type)
	assert.Equal(t, "-0.5", e.Price.String())
	assert.Equal(t, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", e.Note)
}

func TestReadEmptyNote(t *testing.T) {
	input := "Id,Date,Currency,Type,Price,Note\n" +
		"1,2021-01-01,ETH,withdraw,-1.5,\n"

	entries, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Note)
}
