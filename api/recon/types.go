package recon

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RecordType selects the import variant. Each variant carries its own
// required header set, validation rules and canonicalization table.
type RecordType string

const (
	RecordTypePayment RecordType = "payment"
	RecordTypeFine    RecordType = "fine"
)

// ParseRecordType maps a route/user supplied string to a RecordType.
func ParseRecordType(s string) (RecordType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "payment", "payments":
		return RecordTypePayment, true
	case "fine", "fines":
		return RecordTypeFine, true
	}
	return "", false
}

// RawRow is one parsed line of an uploaded file: column name -> cell
// value, with the original column order preserved. Rows live only for
// the duration of the batch.
type RawRow struct {
	Columns []string          `json:"columns"`
	Values  map[string]string `json:"values"`
}

// Get returns the trimmed cell value of a column, "" when absent.
func (r RawRow) Get(col string) string {
	return strings.TrimSpace(r.Values[col])
}

// NewRawRow pairs a header with one data row. Short rows pad with "".
func NewRawRow(header, cells []string) RawRow {
	values := make(map[string]string, len(header))
	for i, col := range header {
		v := ""
		if i < len(cells) {
			v = cells[i]
		}
		values[col] = v
	}
	return RawRow{Columns: append([]string(nil), header...), Values: values}
}

// ImportIssue is one per-row rejection. RowIndex is 1-based, counting
// data rows (the header is row 0). Issues live in the batch report
// only; they are never persisted.
type ImportIssue struct {
	RowIndex int    `json:"row_index"`
	Field    string `json:"field"`
	Message  string `json:"message"`
}

// FinancialRecord is a validated, normalized payment or fine. Immutable
// once built by the normalizer.
type FinancialRecord struct {
	ID          string          `json:"id"`
	ExternalRef string          `json:"external_ref"`
	Amount      decimal.Decimal `json:"amount"`
	OccurredOn  time.Time       `json:"occurred_on"`
	RecordType  RecordType      `json:"record_type"`
	Method      string          `json:"method,omitempty"`   // payments: canonical payment method
	Category    string          `json:"category,omitempty"` // fines: canonical violation category
	Raw         RawRow          `json:"-"`
}

// Confidence grades how an assignment decision was reached.
type Confidence string

const (
	ConfidenceExact     Confidence = "exact"
	ConfidenceHeuristic Confidence = "heuristic"
	ConfidenceNone      Confidence = "none"
)

// AssignmentResult links one financial record to at most one agreement.
// AgreementID is empty and AmountAssigned zero when unassigned.
type AssignmentResult struct {
	Record         FinancialRecord `json:"record"`
	AgreementID    string          `json:"agreement_id,omitempty"`
	AmountAssigned decimal.Decimal `json:"amount_assigned"`
	Confidence     Confidence      `json:"confidence"`
}

// RowOutcome is the terminal state of one processed row.
type RowOutcome string

const (
	OutcomeAssigned   RowOutcome = "assigned"
	OutcomeUnassigned RowOutcome = "unassigned"
	OutcomeRejected   RowOutcome = "rejected"
	OutcomeFailed     RowOutcome = "failed" // persistence failure, eligible for retry
)

// FailedRow records a row whose balance update could not be persisted.
// The raw index lets an explicit retry pass re-submit exactly these rows.
type FailedRow struct {
	RowIndex    int             `json:"row_index"`
	Record      FinancialRecord `json:"record"`
	AgreementID string          `json:"agreement_id"`
	Reason      string          `json:"reason"`
}

// Batch terminal states. PartiallyCompleted is a normal outcome for the
// caller, not an error: the report enumerates what needs remediation.
const (
	BatchStatusProcessing         = "PROCESSING"
	BatchStatusCompleted          = "COMPLETED"
	BatchStatusPartiallyCompleted = "PARTIALLY_COMPLETED"
)

// BatchReport is the single structured result of one import session.
// It is surfaced to the caller and kept in the in-memory batch registry
// until retention; it is not a persisted domain object.
type BatchReport struct {
	BatchID     string             `json:"batch_id"`
	RecordType  RecordType         `json:"record_type"`
	TotalRows   int                `json:"total_rows"`
	ValidRows   int                `json:"valid_rows"`
	InvalidRows int                `json:"invalid_rows"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Issues      []ImportIssue      `json:"issues"`
	Assignments []AssignmentResult `json:"assignments"`
	Failed      []FailedRow        `json:"failed"`
	Status      string             `json:"status"`
}

// AssignedSum is the total amount actually assigned in this batch. It
// can never exceed TotalAmount: nothing is fabricated or double-counted.
func (r *BatchReport) AssignedSum() decimal.Decimal {
	sum := decimal.Zero
	for _, a := range r.Assignments {
		sum = sum.Add(a.AmountAssigned)
	}
	return sum
}
