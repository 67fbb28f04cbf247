package rental

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var storeColumns = []string{
	"agreement_id", "agreement_number", "customer_name", "license_plate",
	"start_date", "end_date", "balance", "status",
}

func TestFindAgreements_NoFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT agreement_id, agreement_number, customer_name, license_plate, start_date, end_date, balance, status FROM rental_agreements WHERE LOWER(status) = 'active' ORDER BY start_date DESC, agreement_number`)).
		WillReturnRows(sqlmock.NewRows(storeColumns).
			AddRow("ag-1", "AGR-1001", "Erika Muster", "B-MD 1234", start, end, "700.00", "active").
			AddRow("ag-2", "AGR-1002", "Hans Beispiel", "M-XY 77", start, end, "-25.50", "active"))

	store := NewAgreementStore(db)
	got, err := store.FindAgreements(context.Background(), AgreementFilter{})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "ag-1", got[0].ID)
	assert.Equal(t, "700", got[0].Balance.String())
	assert.Equal(t, "-25.5", got[1].Balance.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAgreements_PlateFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`REPLACE\(REPLACE\(UPPER\(license_plate\), ' ', ''\), '-', ''\) = \$1`).
		WithArgs("BMD1234").
		WillReturnRows(sqlmock.NewRows(storeColumns).
			AddRow("ag-1", "AGR-1001", "Erika Muster", "B-MD 1234", start, end, "0", "active"))

	store := NewAgreementStore(db)
	got, err := store.FindAgreements(context.Background(), AgreementFilter{LicensePlate: "BMD1234"})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "AGR-1001", got[0].AgreementNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAgreements_ActiveOnWindow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`start_date <= \$1 AND end_date >= \$2`).
		WithArgs(day, day).
		WillReturnRows(sqlmock.NewRows(storeColumns))

	store := NewAgreementStore(db)
	got, err := store.FindAgreements(context.Background(), AgreementFilter{ActiveOn: &day})
	require.NoError(t, err)

	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAgreements_InvalidBalance(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM rental_agreements`).
		WillReturnRows(sqlmock.NewRows(storeColumns).
			AddRow("ag-1", "AGR-1001", "Erika Muster", "B-MD 1234", start, end, "not-a-number", "active"))

	store := NewAgreementStore(db)
	_, err = store.FindAgreements(context.Background(), AgreementFilter{})
	assert.Error(t, err)
}

func TestGetAgreement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE agreement_id = \$1`).
		WithArgs("ag-1").
		WillReturnRows(sqlmock.NewRows(storeColumns).
			AddRow("ag-1", "AGR-1001", "Erika Muster", "B-MD 1234", start, end, "700.00", "active"))

	store := NewAgreementStore(db)
	got, err := store.GetAgreement(context.Background(), "ag-1")
	require.NoError(t, err)

	assert.Equal(t, "AGR-1001", got.AgreementNumber)
	assert.Equal(t, "700", got.Balance.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAgreement_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE agreement_id = \$1`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(storeColumns))

	store := NewAgreementStore(db)
	_, err = store.GetAgreement(context.Background(), "nope")
	assert.Error(t, err)
}
