package recon

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"FleetRentOps/api/constants"
	"FleetRentOps/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Day-first is the fixed convention for the whole batch: 03/04/2024 is
// always the 3rd of April, never inferred per row. dd/mm layouts MUST
// come before mm/dd fallbacks.
var dateLayouts = []string{
	constants.DateFormat, // ISO first, unambiguous
	"02/01/2006", "2/1/2006", "02/01/06", "2/1/06",
	constants.DateFormatAlt, "2-1-2006",
	constants.DateFormatDash, constants.DateFormatSlash,
	"2 Jan 2006", "2 January 2006",
	"2006/01/02",
	constants.DateTimeFormat, constants.DateFormatISO, time.RFC3339,
}

func parseDate(s string) (time.Time, error) {
	s = validation.NormalizeCell(s)
	if s == "" {
		return time.Time{}, errors.New("empty date string")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	// Spreadsheet exports sometimes hand over raw Excel serials.
	if t, err := parseExcelSerialDate(s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("could not parse date: %s", s)
}

// parseExcelSerialDate converts an Excel serial date (possibly with a
// fractional day) into a time.Time. Excel counts from 1899-12-30 and
// includes the fake 1900-02-29 day.
func parseExcelSerialDate(s string) (time.Time, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, err
	}
	if f < 60 || f > 200000 {
		return time.Time{}, fmt.Errorf("implausible excel serial: %s", s)
	}
	days := int(f)
	frac := f - float64(days)
	if days > 59 { // Excel leap-year bug adjustment
		days--
	}
	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	d := base.AddDate(0, 0, days)
	d = d.Add(time.Duration(frac * float64(24*time.Hour)))
	return d, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	cleaned := validation.CleanAmount(s)
	if cleaned == "" {
		return decimal.Zero, errors.New("empty amount")
	}
	return decimal.NewFromString(cleaned)
}

// Canonical payment methods and fine categories. Unrecognized inputs
// map to the visible defaults below instead of blocking the import, so
// the operator can review them later.
const (
	MethodOther     = "other"
	CategoryPending = "pending"
)

var paymentMethods = map[string]string{
	"cash":          "cash",
	"bar":           "cash",
	"transfer":      "transfer",
	"bank transfer": "transfer",
	"sepa":          "transfer",
	"wire":          "transfer",
	"card":          "card",
	"credit card":   "card",
	"debit card":    "card",
	"visa":          "card",
	"mastercard":    "card",
	"direct debit":  "direct_debit",
	"lastschrift":   "direct_debit",
	"cheque":        "cheque",
	"check":         "cheque",
}

var fineCategories = map[string]string{
	"speeding":      "speeding",
	"speed":         "speeding",
	"radar":         "speeding",
	"parking":       "parking",
	"no parking":    "parking",
	"red light":     "red_light",
	"toll":          "toll",
	"toll evasion":  "toll",
	"environmental": "environmental",
	"emission zone": "environmental",
	"seatbelt":      "seatbelt",
	"phone":         "phone_use",
	"mobile phone":  "phone_use",
}

func canonicalMethod(s string) string {
	if v, ok := paymentMethods[validation.NormalizeString(s)]; ok {
		return v
	}
	return MethodOther
}

func canonicalCategory(s string) string {
	if v, ok := fineCategories[validation.NormalizeString(s)]; ok {
		return v
	}
	return CategoryPending
}

// NormalizeRow builds the immutable FinancialRecord from a row that
// already passed validation. A parse failure at this stage is reported
// through the same issue contract as the validator, never a panic.
func NormalizeRow(row RawRow, rt RecordType, rowIndex int) (FinancialRecord, *ImportIssue) {
	amtCol := amountColumn(rt)
	amount, err := parseAmount(row.Get(amtCol))
	if err != nil {
		return FinancialRecord{}, &ImportIssue{
			RowIndex: rowIndex,
			Field:    amtCol,
			Message:  constants.FormatFieldError(amtCol, err.Error()),
		}
	}

	dateCol := dateColumn(rt)
	occurred, err := parseDate(row.Get(dateCol))
	if err != nil {
		return FinancialRecord{}, &ImportIssue{
			RowIndex: rowIndex,
			Field:    dateCol,
			Message:  constants.FormatFieldError(dateCol, err.Error()),
		}
	}
	// Store the canonical day only; time-of-day from exports is noise.
	occurred = occurred.Truncate(24 * time.Hour)

	rec := FinancialRecord{
		ID:          uuid.New().String(),
		ExternalRef: strings.ToUpper(validation.NormalizeCell(row.Get(colExternalRef))),
		Amount:      amount,
		OccurredOn:  occurred,
		RecordType:  rt,
		Raw:         row,
	}
	switch rt {
	case RecordTypePayment:
		rec.Method = canonicalMethod(row.Get(colMethod))
	case RecordTypeFine:
		rec.Category = canonicalCategory(row.Get(colCategory))
	}
	return rec, nil
}

// FormatAmount and FormatDate are the canonical serializations used in
// persisted rows and reports. Normalizing an already-normalized value
// is a no-op: parse(format(x)) == x.
func FormatAmount(d decimal.Decimal) string {
	return d.String()
}

func FormatDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}
