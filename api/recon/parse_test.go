package recon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUploadFile_CSV(t *testing.T) {
	data := []byte("external_ref,amount,payment_date,agreement_no,method\nTXN-1,500.00,2024-06-01,AGR-1001,transfer\nTXN-2,200.00,2024-06-02,AGR-1002\n")

	records, err := parseUploadFile(data, ".csv")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "TXN-1", records[1][0])
	// Ragged rows are tolerated at parse time; padding happens later.
	assert.Len(t, records[2], 4)
}

func TestParseUploadFile_UnsupportedExtension(t *testing.T) {
	_, err := parseUploadFile([]byte("whatever"), ".pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestNormalizeHeader(t *testing.T) {
	got := normalizeHeader([]string{" External Ref ", "AMOUNT", "Payment  Date"})
	assert.Equal(t, []string{"external_ref", "amount", "payment_date"}, got)
}

func TestRowsFromRecords(t *testing.T) {
	tests := []struct {
		name     string
		records  [][]string
		wantRows int
		wantErr  bool
	}{
		{
			name: "header plus data",
			records: [][]string{
				{"External Ref", "Amount"},
				{"TXN-1", "500.00"},
				{"TXN-2", "200.00"},
			},
			wantRows: 2,
		},
		{
			name: "trailing empty lines skipped",
			records: [][]string{
				{"external_ref", "amount"},
				{"TXN-1", "500.00"},
				{"", ""},
				{" ", ""},
			},
			wantRows: 1,
		},
		{
			name:    "header only",
			records: [][]string{{"external_ref", "amount"}},
			wantErr: true,
		},
		{
			name: "header with only blank rows",
			records: [][]string{
				{"external_ref", "amount"},
				{"", ""},
			},
			wantErr: true,
		},
		{
			name:    "empty input",
			records: [][]string{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, rows, err := rowsFromRecords(tt.records)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrEmptyFile)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "external_ref", header[0])
			assert.Len(t, rows, tt.wantRows)
		})
	}
}

func TestNewRawRow_PadsShortRows(t *testing.T) {
	header := []string{"external_ref", "amount", "payment_date"}
	row := NewRawRow(header, []string{"TXN-1", "500.00"})

	assert.Equal(t, "TXN-1", row.Get("external_ref"))
	assert.Equal(t, "500.00", row.Get("amount"))
	assert.Equal(t, "", row.Get("payment_date"))
}
