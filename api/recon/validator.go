package recon

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"FleetRentOps/api/constants"
)

// Sentinel errors for structural batch failures. These abort the whole
// batch before any row runs, unlike per-row issues.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrEmptyFile           = errors.New("file has no data rows")
	ErrFileAlreadyUploaded = errors.New("batch file already imported")
	ErrMissingHeaders      = errors.New("required columns missing from file header")
)

// Column names per record type. The identifier columns must be present
// in the header but may be blank on individual rows; the matcher then
// falls back to heuristics.
const (
	colExternalRef   = "external_ref"
	colAmount        = "amount"
	colFineAmount    = "fine_amount"
	colPaymentDate   = "payment_date"
	colViolationDate = "violation_date"
	colAgreementNo   = "agreement_no"
	colLicensePlate  = "license_plate"
	colCustomerName  = "customer_name"
	colMethod        = "method"
	colCategory      = "category"
)

var requiredHeaders = map[RecordType][]string{
	RecordTypePayment: {colExternalRef, colAmount, colPaymentDate, colAgreementNo, colMethod},
	RecordTypeFine:    {colExternalRef, colFineAmount, colViolationDate, colLicensePlate, colCategory},
}

// Per-row required values. agreement_no / license_plate may be blank on
// a given row even though the columns themselves are mandatory.
var requiredValues = map[RecordType][]string{
	RecordTypePayment: {colExternalRef, colAmount, colPaymentDate},
	RecordTypeFine:    {colExternalRef, colFineAmount, colViolationDate},
}

func amountColumn(rt RecordType) string {
	if rt == RecordTypeFine {
		return colFineAmount
	}
	return colAmount
}

func dateColumn(rt RecordType) string {
	if rt == RecordTypeFine {
		return colViolationDate
	}
	return colPaymentDate
}

// ValidateHeaders checks the header row against the exact required set
// for the record type. A miss rejects the whole batch, reported once,
// before any row is processed.
func ValidateHeaders(header []string, rt RecordType) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.ToLower(strings.TrimSpace(h))] = true
	}
	var missing []string
	for _, want := range requiredHeaders[rt] {
		if !present[want] {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingHeaders, strings.Join(missing, ", "))
	}
	return nil
}

// ValidateRow checks one raw row. It is pure: nil means the row may be
// normalized, a non-nil issue carries the 1-based row index and reason.
// The session continues with the next row either way.
func ValidateRow(row RawRow, rt RecordType, rowIndex int) *ImportIssue {
	for _, col := range requiredValues[rt] {
		if row.Get(col) == "" {
			return &ImportIssue{
				RowIndex: rowIndex,
				Field:    col,
				Message:  constants.FormatMissingFieldError(col),
			}
		}
	}

	amtCol := amountColumn(rt)
	amount, err := parseAmount(row.Get(amtCol))
	if err != nil {
		return &ImportIssue{
			RowIndex: rowIndex,
			Field:    amtCol,
			Message:  constants.FormatFieldError(amtCol, "not a number"),
		}
	}
	// Negative payments are refunds and pass through; a negative fine is
	// semantically nonsensical and gets flagged, never coerced.
	if rt == RecordTypeFine && amount.IsNegative() {
		return &ImportIssue{
			RowIndex: rowIndex,
			Field:    amtCol,
			Message:  constants.FormatFieldError(amtCol, "fine amount cannot be negative"),
		}
	}

	dateCol := dateColumn(rt)
	occurred, err := parseDate(row.Get(dateCol))
	if err != nil {
		return &ImportIssue{
			RowIndex: rowIndex,
			Field:    dateCol,
			Message:  constants.FormatFieldError(dateCol, "unparseable date"),
		}
	}
	if rt == RecordTypeFine && occurred.After(time.Now().AddDate(0, 0, 1)) {
		return &ImportIssue{
			RowIndex: rowIndex,
			Field:    dateCol,
			Message:  constants.FormatFieldError(dateCol, "violation date is in the future"),
		}
	}

	return nil
}
