package recon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"FleetRentOps/internal/validation"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxLedger is the persistence layer of the import subsystem: batch
// registration, raw-row staging, financial records and the agreement
// ledger that guards balances against double application.
type PgxLedger struct {
	pool *pgxpool.Pool
}

func NewPgxLedger(pool *pgxpool.Pool) *PgxLedger {
	return &PgxLedger{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// RegisterBatch records the batch and its file hash. A duplicate hash
// means the identical file was imported before; the whole upload is
// refused as a structural error.
func (l *PgxLedger) RegisterBatch(ctx context.Context, batchID string, rt RecordType, fileHash, userID string) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO import_batches (batch_id, record_type, file_hash, uploaded_by, uploaded_at)
		VALUES ($1, $2, $3, $4, now())
	`, batchID, string(rt), fileHash, userID)
	if isUniqueViolation(err) {
		return ErrFileAlreadyUploaded
	}
	if err != nil {
		return fmt.Errorf("failed to register batch: %w", err)
	}
	return nil
}

// StageRows bulk-copies the raw rows into the staging table. Staged
// rows are the source for the explicit retry pass and are purged by the
// janitor after retention.
func (l *PgxLedger) StageRows(ctx context.Context, batchID string, rt RecordType, rows []RawRow) error {
	copyRows := make([][]interface{}, 0, len(rows))
	for i, row := range rows {
		sanitized := RawRow{Columns: row.Columns, Values: make(map[string]string, len(row.Values))}
		for k, v := range row.Values {
			sanitized.Values[k] = validation.SanitizeForPostgres(v)
		}
		payload, err := json.Marshal(sanitized)
		if err != nil {
			return fmt.Errorf("failed to encode row %d: %w", i+1, err)
		}
		copyRows = append(copyRows, []interface{}{batchID, string(rt), i + 1, string(payload)})
	}

	_, err := l.pool.CopyFrom(
		ctx,
		pgx.Identifier{"import_rows_staging"},
		[]string{"batch_id", "record_type", "row_index", "payload"},
		pgx.CopyFromRows(copyRows),
	)
	if err != nil {
		return fmt.Errorf("failed to stage rows: %w", err)
	}
	return nil
}

// StagedRows loads the staged raw rows of a batch, optionally narrowed
// to specific 1-based row indexes, in file order.
func (l *PgxLedger) StagedRows(ctx context.Context, batchID string, indexes []int) ([]RawRow, error) {
	query := `SELECT payload FROM import_rows_staging WHERE batch_id = $1 ORDER BY row_index`
	args := []interface{}{batchID}
	if len(indexes) > 0 {
		idx := make([]int32, len(indexes))
		for i, v := range indexes {
			idx[i] = int32(v)
		}
		query = `SELECT payload FROM import_rows_staging WHERE batch_id = $1 AND row_index = ANY($2) ORDER BY row_index`
		args = append(args, idx)
	}

	rows, err := l.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load staged rows: %w", err)
	}
	defer rows.Close()

	var out []RawRow
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan staged row: %w", err)
		}
		var row RawRow
		if err := json.Unmarshal(payload, &row); err != nil {
			return nil, fmt.Errorf("corrupt staged row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// PurgeStagedRows deletes staged rows older than the retention window.
func (l *PgxLedger) PurgeStagedRows(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := l.pool.Exec(ctx, `
		DELETE FROM import_rows_staging WHERE staged_at < now() - $1::interval
	`, fmt.Sprintf("%d seconds", int(olderThan.Seconds())))
	if err != nil {
		return 0, fmt.Errorf("failed to purge staged rows: %w", err)
	}
	return tag.RowsAffected(), nil
}

// InsertFinancialRecord persists a normalized record. Re-inserting the
// same (record_type, external_ref) is a no-op so a retry pass can run
// over rows whose record landed but whose balance update failed.
func (l *PgxLedger) InsertFinancialRecord(ctx context.Context, batchID string, rec FinancialRecord) error {
	raw, err := json.Marshal(rec.Raw)
	if err != nil {
		return fmt.Errorf("failed to encode raw payload: %w", err)
	}
	methodOrCategory := rec.Method
	if rec.RecordType == RecordTypeFine {
		methodOrCategory = rec.Category
	}
	_, err = l.pool.Exec(ctx, `
		INSERT INTO financial_records (id, batch_id, external_ref, record_type, amount, occurred_on, method_or_category, raw_payload, created_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6::date, $7, $8, now())
		ON CONFLICT (record_type, external_ref) DO NOTHING
	`, rec.ID, batchID, rec.ExternalRef, string(rec.RecordType),
		FormatAmount(rec.Amount), FormatDate(rec.OccurredOn), methodOrCategory, string(raw))
	if err != nil {
		return fmt.Errorf("failed to insert financial record: %w", err)
	}
	return nil
}

// ApplyBalanceDelta moves an agreement balance exactly once per
// (agreement_id, external_ref). The ledger insert and the balance
// update share one transaction; the row update re-reads the current
// balance at write time, so concurrent sessions serialize on the
// agreement row instead of in-process locks.
func (l *PgxLedger) ApplyBalanceDelta(ctx context.Context, agreementID string, delta decimal.Decimal, externalRef string) (bool, decimal.Decimal, error) {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return false, decimal.Zero, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO agreement_ledger (agreement_id, external_ref, delta, applied_at)
		VALUES ($1, $2, $3::numeric, now())
		ON CONFLICT (agreement_id, external_ref) DO NOTHING
	`, agreementID, externalRef, FormatAmount(delta))
	if err != nil {
		return false, decimal.Zero, fmt.Errorf("failed to write ledger entry: %w", err)
	}

	var balanceStr string
	if tag.RowsAffected() == 0 {
		// Already applied earlier: report the current balance untouched.
		err = tx.QueryRow(ctx,
			`SELECT balance::text FROM rental_agreements WHERE agreement_id = $1`,
			agreementID).Scan(&balanceStr)
		if err != nil {
			return false, decimal.Zero, fmt.Errorf("failed to read balance: %w", err)
		}
		balance, err := decimal.NewFromString(balanceStr)
		if err != nil {
			return false, decimal.Zero, fmt.Errorf("invalid balance %q: %w", balanceStr, err)
		}
		return false, balance, tx.Commit(ctx)
	}

	err = tx.QueryRow(ctx, `
		UPDATE rental_agreements SET balance = balance + $2::numeric
		WHERE agreement_id = $1
		RETURNING balance::text
	`, agreementID, FormatAmount(delta)).Scan(&balanceStr)
	if err != nil {
		return false, decimal.Zero, fmt.Errorf("failed to update balance: %w", err)
	}
	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return false, decimal.Zero, fmt.Errorf("invalid balance %q: %w", balanceStr, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, decimal.Zero, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, balance, nil
}
