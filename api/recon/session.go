package recon

import (
	"context"
	"fmt"
	"log"

	"FleetRentOps/api/rental"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProgressFunc receives one notification per processed row. It replaces
// the live toast channel of the old dashboard: the orchestrator emits,
// the caller decides what to do with it (SSE, buffer, nothing).
type ProgressFunc func(batchID string, rowIndex int, outcome RowOutcome, message string)

// Session processes one batch: rows stream through validate ->
// normalize -> assign -> apply, strictly in file order, one at a time.
// All session state is created per batch and discarded with the report;
// nothing global is mutated.
type Session struct {
	recordType RecordType
	finder     AgreementFinder
	updater    *BalanceUpdater
	progress   ProgressFunc
}

func NewSession(rt RecordType, finder AgreementFinder, ledger Ledger) *Session {
	return &Session{
		recordType: rt,
		finder:     finder,
		updater:    NewBalanceUpdater(ledger),
	}
}

// SetProgressFunc installs the per-row callback. Optional.
func (s *Session) SetProgressFunc(fn ProgressFunc) {
	s.progress = fn
}

func (s *Session) emit(batchID string, rowIndex int, outcome RowOutcome, message string) {
	if s.progress != nil {
		s.progress(batchID, rowIndex, outcome, message)
	}
}

// Run executes the batch and returns its report. A header mismatch is
// the only error return: every per-row problem lands in the report and
// the batch keeps going. One row's outcome never affects another's.
func (s *Session) Run(ctx context.Context, batchID string, header []string, rows []RawRow) (*BatchReport, error) {
	if err := ValidateHeaders(header, s.recordType); err != nil {
		return nil, err
	}
	if batchID == "" {
		batchID = uuid.New().String()
	}

	report := &BatchReport{
		BatchID:     batchID,
		RecordType:  s.recordType,
		TotalAmount: decimal.Zero,
		Issues:      []ImportIssue{},
		Assignments: []AssignmentResult{},
		Failed:      []FailedRow{},
		Status:      BatchStatusProcessing,
	}

	// One candidate fetch per batch: the matcher works against a stable
	// snapshot of live agreements for all rows.
	candidates, err := s.finder.FindAgreements(ctx, rental.AgreementFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate agreements: %w", err)
	}

	// Pairs applied within this batch, keyed like the ledger dedup key
	// (agreement, external ref). The same ref against two different
	// agreements is two real balance moves, not a duplicate.
	appliedKeys := make(map[string]bool)

	for i, row := range rows {
		idx := i + 1
		report.TotalRows++

		if issue := ValidateRow(row, s.recordType, idx); issue != nil {
			report.InvalidRows++
			report.Issues = append(report.Issues, *issue)
			s.emit(batchID, idx, OutcomeRejected, issue.Message)
			continue
		}

		rec, issue := NormalizeRow(row, s.recordType, idx)
		if issue != nil {
			report.InvalidRows++
			report.Issues = append(report.Issues, *issue)
			s.emit(batchID, idx, OutcomeRejected, issue.Message)
			continue
		}

		report.ValidRows++
		report.TotalAmount = report.TotalAmount.Add(rec.Amount)

		res := Assign(rec, candidates)
		if res.Confidence == ConfidenceNone {
			report.Assignments = append(report.Assignments, res)
			s.emit(batchID, idx, OutcomeUnassigned, "no unambiguous agreement match")
			continue
		}

		applied, _, err := s.updater.Apply(ctx, batchID, res)
		if err != nil {
			report.Failed = append(report.Failed, FailedRow{
				RowIndex:    idx,
				Record:      rec,
				AgreementID: res.AgreementID,
				Reason:      err.Error(),
			})
			s.emit(batchID, idx, OutcomeFailed, err.Error())
			continue
		}
		dedupKey := res.AgreementID + "|" + rec.ExternalRef
		if !applied || appliedKeys[dedupKey] {
			// Pair seen before (earlier batch or earlier in this one):
			// balance untouched, assignment reported with zero amount.
			res.AmountAssigned = decimal.Zero
			log.Printf("[Recon] batch %s row %d ref %s already applied to agreement %s, balance unchanged", batchID, idx, rec.ExternalRef, res.AgreementID)
		}
		appliedKeys[dedupKey] = true
		report.Assignments = append(report.Assignments, res)
		s.emit(batchID, idx, OutcomeAssigned, string(res.Confidence))
	}

	if len(report.Issues) == 0 && len(report.Failed) == 0 {
		report.Status = BatchStatusCompleted
	} else {
		report.Status = BatchStatusPartiallyCompleted
	}
	return report, nil
}
