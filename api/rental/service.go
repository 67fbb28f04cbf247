package rental

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"FleetRentOps/internal/serviceiface"

	"github.com/gorilla/mux"
)

type RentalService struct {
	config map[string]interface{}
	db     *sql.DB
}

func NewRentalService(cfg map[string]interface{}, db *sql.DB) serviceiface.Service {
	return &RentalService{config: cfg, db: db}
}

func (s *RentalService) Name() string {
	return "rental"
}

func (s *RentalService) Start() error {
	go s.startHTTP()
	return nil
}

func (s *RentalService) Stop() error {
	return nil
}

func (s *RentalService) startHTTP() {
	port := 6243
	if p, ok := s.config["port"].(int); ok && p > 0 {
		port = p
	} else if p, ok := s.config["port"].(float64); ok && p > 0 {
		port = int(p)
	}

	r := mux.NewRouter()
	r.Handle("/rental/agreements", GetAgreementsHandler(s.db)).Methods("GET")
	r.Handle("/rental/agreements/{id}", GetAgreementHandler(s.db)).Methods("GET")

	addr := fmt.Sprintf(":%d", port)
	log.Println("Rental Service started on", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("Rental Service failed: %v", err)
	}
}
