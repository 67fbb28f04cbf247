package recon

import (
	"context"
	"errors"

	"FleetRentOps/api/rental"

	"github.com/shopspring/decimal"
)

// AgreementFinder is the read-only lookup the matcher needs. The rental
// package provides the SQL-backed implementation.
type AgreementFinder interface {
	FindAgreements(ctx context.Context, f rental.AgreementFilter) ([]rental.Agreement, error)
}

// Ledger persists normalized records and applies balance deltas. Both
// operations must be atomic with respect to the dedup key
// (agreement_id, external_ref): replaying a ref is a no-op, never a
// double count.
type Ledger interface {
	InsertFinancialRecord(ctx context.Context, batchID string, rec FinancialRecord) error
	// ApplyBalanceDelta returns applied=false when the (agreementID,
	// externalRef) pair was already applied earlier; newBalance is the
	// current balance either way.
	ApplyBalanceDelta(ctx context.Context, agreementID string, delta decimal.Decimal, externalRef string) (applied bool, newBalance decimal.Decimal, err error)
}

var errUnassignedRecord = errors.New("cannot apply an unassigned record to a balance")

// BalanceUpdater turns an assignment into a ledger write. Balance is
// what the customer still owes: fines add to it, payments reduce it
// (and a negative payment, a refund, adds back).
type BalanceUpdater struct {
	ledger Ledger
}

func NewBalanceUpdater(ledger Ledger) *BalanceUpdater {
	return &BalanceUpdater{ledger: ledger}
}

// Apply persists the record and moves the agreement balance exactly
// once per external ref. Only call with Confidence != none.
func (u *BalanceUpdater) Apply(ctx context.Context, batchID string, res AssignmentResult) (bool, decimal.Decimal, error) {
	if res.Confidence == ConfidenceNone || res.AgreementID == "" {
		return false, decimal.Zero, errUnassignedRecord
	}

	if err := u.ledger.InsertFinancialRecord(ctx, batchID, res.Record); err != nil {
		return false, decimal.Zero, err
	}

	delta := res.AmountAssigned
	if res.Record.RecordType == RecordTypePayment {
		delta = delta.Neg()
	}
	return u.ledger.ApplyBalanceDelta(ctx, res.AgreementID, delta, res.Record.ExternalRef)
}
