package recon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "iso date",
			input: "2024-04-03",
			want:  time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "slash date is day first",
			input: "03/04/2024",
			want:  time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "single digit day first",
			input: "3/4/2024",
			want:  time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "dashed day first",
			input: "03-04-2024",
			want:  time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "month name",
			input: "03-Apr-2024",
			want:  time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "excel serial for 2024-04-03",
			input: "45386",
			want:  time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "nbsp padded",
			input: " 2024-04-03 ",
			want:  time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "gibberish",
			input:   "next tuesday",
			wantErr: true,
		},
		{
			name:    "implausible serial",
			input:   "7",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "500.00", want: "500"},
		{name: "thousands separator", input: "1,200.50", want: "1200.5"},
		{name: "euro symbol", input: "€80.00", want: "80"},
		{name: "currency code suffix", input: "200 EUR", want: "200"},
		{name: "currency code prefix", input: "EUR 200", want: "200"},
		{name: "accounting negative", input: "(75.00)", want: "-75"},
		{name: "explicit negative", input: "-75.00", want: "-75"},
		{name: "empty", input: "", wantErr: true},
		{name: "words", input: "eighty", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestCanonicalMethodAndCategory(t *testing.T) {
	assert.Equal(t, "transfer", canonicalMethod("SEPA"))
	assert.Equal(t, "transfer", canonicalMethod(" Bank Transfer "))
	assert.Equal(t, "card", canonicalMethod("Visa"))
	assert.Equal(t, MethodOther, canonicalMethod("carrier pigeon"))

	assert.Equal(t, "speeding", canonicalCategory("Radar"))
	assert.Equal(t, "parking", canonicalCategory("no parking"))
	assert.Equal(t, CategoryPending, canonicalCategory("unknown thing"))
}

func TestNormalizeRow_Payment(t *testing.T) {
	header := []string{"external_ref", "amount", "payment_date", "agreement_no", "method"}
	row := NewRawRow(header, []string{" txn-9 ", "€1,200.00", "03/04/2024", "AGR-1001", "SEPA"})

	rec, issue := NormalizeRow(row, RecordTypePayment, 1)
	require.Nil(t, issue)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "TXN-9", rec.ExternalRef)
	assert.True(t, rec.Amount.Equal(decimal.RequireFromString("1200.00")))
	assert.Equal(t, time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), rec.OccurredOn)
	assert.Equal(t, RecordTypePayment, rec.RecordType)
	assert.Equal(t, "transfer", rec.Method)
	assert.Empty(t, rec.Category)
}

func TestNormalizeRow_Fine(t *testing.T) {
	header := []string{"external_ref", "fine_amount", "violation_date", "license_plate", "category"}
	row := NewRawRow(header, []string{"FINE-7", "80.00", "2024-05-20", "B-MD 1234", "radar"})

	rec, issue := NormalizeRow(row, RecordTypeFine, 2)
	require.Nil(t, issue)

	assert.Equal(t, "FINE-7", rec.ExternalRef)
	assert.Equal(t, "speeding", rec.Category)
	assert.Empty(t, rec.Method)
}

func TestNormalizeRow_Idempotent(t *testing.T) {
	header := []string{"external_ref", "amount", "payment_date", "agreement_no", "method"}
	row := NewRawRow(header, []string{"TXN-9", "€1,200.00", "03/04/2024", "AGR-1001", "SEPA"})

	rec, issue := NormalizeRow(row, RecordTypePayment, 1)
	require.Nil(t, issue)

	// Re-serializing the canonical forms and parsing again must not
	// change the values.
	amount, err := parseAmount(FormatAmount(rec.Amount))
	require.NoError(t, err)
	assert.True(t, amount.Equal(rec.Amount))

	occurred, err := parseDate(FormatDate(rec.OccurredOn))
	require.NoError(t, err)
	assert.True(t, occurred.Equal(rec.OccurredOn))
}
