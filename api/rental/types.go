package rental

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Agreement is the read model of a rental agreement as the import
// subsystem sees it. Agreements are owned by the back-office CRUD
// screens; this package only ever reads them.
//
// AgreementNumber is human-assigned and may repeat across historical
// records; ID is system-assigned and unique.
type Agreement struct {
	ID              string          `json:"agreement_id"`
	AgreementNumber string          `json:"agreement_number"`
	CustomerName    string          `json:"customer_name"`
	LicensePlate    string          `json:"license_plate"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	Balance         decimal.Decimal `json:"balance"`
	Status          string          `json:"status"`
}

// AgreementFilter narrows FindAgreements. Zero-value fields are ignored;
// ActiveOn keeps only agreements whose [start_date, end_date] interval
// contains the given day (inclusive).
type AgreementFilter struct {
	AgreementNumber string
	LicensePlate    string
	CustomerName    string
	ActiveOn        *time.Time
}

// parseBalance scans the NUMERIC column without going through float64.
func parseBalance(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
