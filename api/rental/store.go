package rental

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"FleetRentOps/api/constants"
)

// AgreementStore reads rental agreements. Writes happen elsewhere in
// the back office; the import subsystem must never create or delete
// agreements.
type AgreementStore struct {
	db *sql.DB
}

func NewAgreementStore(db *sql.DB) *AgreementStore {
	return &AgreementStore{db: db}
}

const agreementColumns = `agreement_id, agreement_number, customer_name, license_plate, start_date, end_date, balance, status`

// FindAgreements returns live agreements matching the filter, newest
// term first. An empty filter returns every live agreement.
func (s *AgreementStore) FindAgreements(ctx context.Context, f AgreementFilter) ([]Agreement, error) {
	var (
		conds = []string{"LOWER(status) = 'active'"}
		args  []interface{}
	)
	add := func(col, val string) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(constants.FormatSQLColumnArg, col, len(args)))
	}
	if f.AgreementNumber != "" {
		add("UPPER(agreement_number)", strings.ToUpper(strings.TrimSpace(f.AgreementNumber)))
	}
	if f.LicensePlate != "" {
		add("REPLACE(REPLACE(UPPER(license_plate), ' ', ''), '-', '')", f.LicensePlate)
	}
	if f.CustomerName != "" {
		add("LOWER(customer_name)", strings.ToLower(strings.TrimSpace(f.CustomerName)))
	}
	if f.ActiveOn != nil {
		args = append(args, *f.ActiveOn)
		conds = append(conds, fmt.Sprintf("start_date <= $%d", len(args)))
		args = append(args, *f.ActiveOn)
		conds = append(conds, fmt.Sprintf("end_date >= $%d", len(args)))
	}

	query := fmt.Sprintf(
		`SELECT %s FROM rental_agreements WHERE %s ORDER BY start_date DESC, agreement_number`,
		agreementColumns, strings.Join(conds, " AND "),
	)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch agreements: %w", err)
	}
	defer rows.Close()

	agreements := []Agreement{}
	for rows.Next() {
		var a Agreement
		var balance string
		if err := rows.Scan(&a.ID, &a.AgreementNumber, &a.CustomerName, &a.LicensePlate,
			&a.StartDate, &a.EndDate, &balance, &a.Status); err != nil {
			return nil, fmt.Errorf("failed to scan agreement: %w", err)
		}
		if a.Balance, err = parseBalance(balance); err != nil {
			return nil, fmt.Errorf("agreement %s has invalid balance %q: %w", a.ID, balance, err)
		}
		agreements = append(agreements, a)
	}
	return agreements, rows.Err()
}

// GetAgreement returns one agreement by system id.
func (s *AgreementStore) GetAgreement(ctx context.Context, id string) (*Agreement, error) {
	query := fmt.Sprintf(`SELECT %s FROM rental_agreements WHERE agreement_id = $1`, agreementColumns)

	var a Agreement
	var balance string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.AgreementNumber, &a.CustomerName, &a.LicensePlate,
		&a.StartDate, &a.EndDate, &balance, &a.Status,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %s", constants.ErrAgreementNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf(constants.ErrQueryFailed+"%w", err)
	}
	if a.Balance, err = parseBalance(balance); err != nil {
		return nil, fmt.Errorf("agreement %s has invalid balance %q: %w", a.ID, balance, err)
	}
	return &a, nil
}
