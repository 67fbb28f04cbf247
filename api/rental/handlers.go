package rental

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"FleetRentOps/api/constants"
	"FleetRentOps/internal/validation"

	"github.com/gorilla/mux"
)

// GetAgreementsHandler serves GET /rental/agreements with optional
// number, plate, customer and active_on query filters. Operators use it
// to resolve unassigned records by hand.
func GetAgreementsHandler(db *sql.DB) http.Handler {
	store := NewAgreementStore(db)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := AgreementFilter{
			AgreementNumber: q.Get("number"),
			LicensePlate:    validation.NormalizePlate(q.Get("plate")),
			CustomerName:    q.Get("customer"),
		}
		if v := q.Get("active_on"); v != "" {
			t, err := time.Parse(constants.DateFormat, v)
			if err != nil {
				http.Error(w, "active_on must be "+constants.DateFormat, http.StatusBadRequest)
				return
			}
			filter.ActiveOn = &t
		}

		agreements, err := store.FindAgreements(r.Context(), filter)
		if err != nil {
			http.Error(w, constants.ErrFailedToQuery+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":    true,
			"agreements": agreements,
		})
	})
}

// GetAgreementHandler serves GET /rental/agreements/{id}.
func GetAgreementHandler(db *sql.DB) http.Handler {
	store := NewAgreementStore(db)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		agreement, err := store.GetAgreement(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":   true,
			"agreement": agreement,
		})
	})
}
