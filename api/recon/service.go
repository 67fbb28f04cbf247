package recon

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"FleetRentOps/api/rental"
	"FleetRentOps/internal/progress"
	"FleetRentOps/internal/serviceiface"
	"FleetRentOps/internal/session"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReconService hosts the import/reconciliation HTTP surface. The
// agreement lookup runs over database/sql like the rest of the read
// paths; the ledger uses the pgx pool for CopyFrom and transactions.
type ReconService struct {
	config   map[string]interface{}
	finder   AgreementFinder
	ledger   *PgxLedger
	registry *session.Manager
	sse      *progress.SSEServer
	buffer   *progress.Buffer
}

func NewReconService(cfg map[string]interface{}, db *sql.DB, pool *pgxpool.Pool, registry *session.Manager) serviceiface.Service {
	s := &ReconService{
		config:   cfg,
		finder:   rental.NewAgreementStore(db),
		ledger:   NewPgxLedger(pool),
		registry: registry,
		sse:      progress.NewSSEServer(),
		buffer:   progress.NewBuffer(),
	}
	// Buffered row events live exactly as long as the registry entry.
	registry.SetOnRemove(s.buffer.Clear)
	return s
}

func (s *ReconService) Name() string {
	return "recon"
}

func (s *ReconService) Start() error {
	go s.startHTTP()
	return nil
}

func (s *ReconService) Stop() error {
	s.sse.Stop()
	return nil
}

// publishProgress fans one row event out to the live SSE stream and the
// replay buffer.
func (s *ReconService) publishProgress(batchID string, rowIndex int, outcome RowOutcome, message string) {
	ev := progress.Event{
		Type:     "row",
		BatchID:  batchID,
		RowIndex: rowIndex,
		Outcome:  string(outcome),
		Message:  message,
		Time:     time.Now().Format(time.RFC3339),
	}
	s.sse.Publish(ev)
	s.buffer.Add(ev)
}

func (s *ReconService) startHTTP() {
	port := 6143
	if p, ok := s.config["port"].(int); ok && p > 0 {
		port = p
	} else if p, ok := s.config["port"].(float64); ok && p > 0 {
		port = int(p)
	}

	r := mux.NewRouter()
	r.Handle("/recon/payments/upload", s.handleUpload(RecordTypePayment)).Methods("POST")
	r.Handle("/recon/fines/upload", s.handleUpload(RecordTypeFine)).Methods("POST")
	r.HandleFunc("/recon/batches/{id}", s.handleBatchReport).Methods("GET")
	r.HandleFunc("/recon/batches/{id}/events", s.handleBatchEvents).Methods("GET")
	r.HandleFunc("/recon/batches/{id}/progress", s.handleBatchProgress).Methods("GET")
	r.HandleFunc("/recon/batches/{id}/retry", s.handleRetry).Methods("POST")

	addr := fmt.Sprintf(":%d", port)
	log.Println("Recon Service started on", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("Recon Service failed: %v", err)
	}
}
