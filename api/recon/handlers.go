package recon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"FleetRentOps/api/constants"
	"FleetRentOps/internal/checksum"
	"FleetRentOps/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// handleBatchReport serves GET /recon/batches/{id}: the finished (or
// in-flight) state of one batch from the in-memory registry.
func (s *ReconService) handleBatchReport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	b, ok := s.registry.Get(id)
	if !ok {
		http.Error(w, constants.ErrBatchNotFound, http.StatusNotFound)
		return
	}
	w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":     true,
		"batch_id":    b.ID,
		"record_type": b.RecordType,
		"status":      b.Status,
		"started_at":  b.StartedAt,
		"report":      b.Report,
	})
}

// handleBatchEvents replays the buffered row events of a batch for
// clients that were not subscribed while it ran.
func (s *ReconService) handleBatchEvents(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := s.registry.Get(id); !ok {
		http.Error(w, constants.ErrBatchNotFound, http.StatusNotFound)
		return
	}
	w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"events":  s.buffer.Snapshot(id),
	})
}

// handleBatchProgress upgrades to an SSE stream of row events.
func (s *ReconService) handleBatchProgress(w http.ResponseWriter, r *http.Request) {
	s.sse.HandleSSE(mux.Vars(r)["id"], w, r)
}

// handleRetry re-submits the failed rows of a previous batch as a NEW
// batch. This is the only retry path: sessions themselves never retry.
func (s *ReconService) handleRetry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	b, ok := s.registry.Get(id)
	if !ok {
		http.Error(w, constants.ErrBatchNotFound, http.StatusNotFound)
		return
	}
	report, ok := b.Report.(*BatchReport)
	if !ok || report == nil {
		http.Error(w, "Batch has no report to retry", http.StatusConflict)
		return
	}
	if len(report.Failed) == 0 {
		http.Error(w, "Batch has no failed rows", http.StatusConflict)
		return
	}

	indexes := make([]int, 0, len(report.Failed))
	for _, f := range report.Failed {
		indexes = append(indexes, f.RowIndex)
	}
	rows, err := s.ledger.StagedRows(ctx, id, indexes)
	if err != nil {
		http.Error(w, constants.ErrDatabaseError, http.StatusInternalServerError)
		return
	}
	if len(rows) == 0 {
		http.Error(w, "Staged rows for this batch were already purged", http.StatusConflict)
		return
	}
	header := rows[0].Columns

	retryID := uuid.New().String()
	// Each retry attempt is its own batch; the hash covers the attempt,
	// not the file, so retrying twice is allowed.
	attemptHash := checksum.FileHash([]byte(fmt.Sprintf("retry:%s:%d", id, time.Now().UnixNano())))
	if err := s.ledger.RegisterBatch(ctx, retryID, RecordType(b.RecordType), attemptHash, b.UserID); err != nil {
		http.Error(w, constants.ErrDatabaseError, http.StatusInternalServerError)
		return
	}
	s.registry.Create(retryID, b.RecordType, b.UserID)

	if err := s.ledger.StageRows(ctx, retryID, RecordType(b.RecordType), rows); err != nil {
		s.registry.Finish(retryID, "REJECTED", nil)
		http.Error(w, constants.ErrDatabaseError, http.StatusInternalServerError)
		return
	}

	sess := NewSession(RecordType(b.RecordType), s.finder, s.ledger)
	sess.SetProgressFunc(s.publishProgress)
	retryReport, err := sess.Run(ctx, retryID, header, rows)
	if err != nil {
		s.registry.Finish(retryID, "REJECTED", nil)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.registry.Finish(retryID, retryReport.Status, retryReport)

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit(fmt.Sprintf(
			"retry of batch %s as %s: %d rows re-submitted, status %s",
			id, retryID, len(rows), retryReport.Status))
	}

	w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": constants.FormatError(constants.SuccessRetried, retryID),
		"report":  retryReport,
	})
}
