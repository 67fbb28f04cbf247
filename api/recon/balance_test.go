package recon

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceUpdater_RejectsUnassigned(t *testing.T) {
	ledger := newFakeLedger(map[string]decimal.Decimal{})
	updater := NewBalanceUpdater(ledger)

	res := AssignmentResult{
		Record:         FinancialRecord{ExternalRef: "TXN-1", RecordType: RecordTypePayment},
		AmountAssigned: decimal.Zero,
		Confidence:     ConfidenceNone,
	}
	_, _, err := updater.Apply(context.Background(), "batch-1", res)
	require.Error(t, err)
	assert.Empty(t, ledger.inserted)
}

func TestBalanceUpdater_PaymentNegatesDelta(t *testing.T) {
	ledger := newFakeLedger(map[string]decimal.Decimal{"ag-1": decimal.NewFromInt(700)})
	updater := NewBalanceUpdater(ledger)

	res := AssignmentResult{
		Record: FinancialRecord{
			ExternalRef: "TXN-1",
			Amount:      decimal.NewFromInt(500),
			RecordType:  RecordTypePayment,
		},
		AgreementID:    "ag-1",
		AmountAssigned: decimal.NewFromInt(500),
		Confidence:     ConfidenceExact,
	}
	applied, newBalance, err := updater.Apply(context.Background(), "batch-1", res)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.True(t, newBalance.Equal(decimal.NewFromInt(200)))
	require.Len(t, ledger.inserted, 1)
}

func TestBalanceUpdater_RefundAddsBack(t *testing.T) {
	ledger := newFakeLedger(map[string]decimal.Decimal{"ag-1": decimal.NewFromInt(100)})
	updater := NewBalanceUpdater(ledger)

	res := AssignmentResult{
		Record: FinancialRecord{
			ExternalRef: "TXN-R1",
			Amount:      decimal.NewFromInt(-50),
			RecordType:  RecordTypePayment,
		},
		AgreementID:    "ag-1",
		AmountAssigned: decimal.NewFromInt(-50),
		Confidence:     ConfidenceExact,
	}
	applied, newBalance, err := updater.Apply(context.Background(), "batch-1", res)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.True(t, newBalance.Equal(decimal.NewFromInt(150)))
}

func TestBalanceUpdater_FineAddsDelta(t *testing.T) {
	ledger := newFakeLedger(map[string]decimal.Decimal{"ag-1": decimal.NewFromInt(100)})
	updater := NewBalanceUpdater(ledger)

	res := AssignmentResult{
		Record: FinancialRecord{
			ExternalRef: "FINE-1",
			Amount:      decimal.NewFromInt(80),
			RecordType:  RecordTypeFine,
		},
		AgreementID:    "ag-1",
		AmountAssigned: decimal.NewFromInt(80),
		Confidence:     ConfidenceHeuristic,
	}
	applied, newBalance, err := updater.Apply(context.Background(), "batch-1", res)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.True(t, newBalance.Equal(decimal.NewFromInt(180)))
}

func TestBalanceUpdater_SecondApplyIsNoop(t *testing.T) {
	ledger := newFakeLedger(map[string]decimal.Decimal{"ag-1": decimal.NewFromInt(700)})
	updater := NewBalanceUpdater(ledger)

	res := AssignmentResult{
		Record: FinancialRecord{
			ExternalRef: "TXN-1",
			Amount:      decimal.NewFromInt(500),
			RecordType:  RecordTypePayment,
		},
		AgreementID:    "ag-1",
		AmountAssigned: decimal.NewFromInt(500),
		Confidence:     ConfidenceExact,
	}
	applied, _, err := updater.Apply(context.Background(), "batch-1", res)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, newBalance, err := updater.Apply(context.Background(), "batch-2", res)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.True(t, newBalance.Equal(decimal.NewFromInt(200)), "balance unchanged by replay")
}
