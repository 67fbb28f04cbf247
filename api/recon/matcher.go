package recon

import (
	"strings"
	"time"

	"FleetRentOps/api/rental"
	"FleetRentOps/internal/validation"

	"github.com/shopspring/decimal"
)

// Assign links a normalized record to the best-matching agreement, in
// strict priority order: exact identifier, then a single unambiguous
// heuristic hit, then nothing. A wrong assignment moves real money, so
// an ambiguous heuristic always loses to "unassigned".
func Assign(rec FinancialRecord, candidates []rental.Agreement) AssignmentResult {
	if id := exactMatch(rec.Raw.Get(colAgreementNo), candidates); id != "" {
		return AssignmentResult{
			Record:         rec,
			AgreementID:    id,
			AmountAssigned: rec.Amount,
			Confidence:     ConfidenceExact,
		}
	}

	if id := heuristicMatch(rec, candidates); id != "" {
		return AssignmentResult{
			Record:         rec,
			AgreementID:    id,
			AmountAssigned: rec.Amount,
			Confidence:     ConfidenceHeuristic,
		}
	}

	return AssignmentResult{
		Record:         rec,
		AmountAssigned: decimal.Zero,
		Confidence:     ConfidenceNone,
	}
}

// exactMatch compares the raw agreement identifier against live
// agreement numbers and system ids.
func exactMatch(ref string, candidates []rental.Agreement) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	for _, a := range candidates {
		if strings.EqualFold(a.AgreementNumber, ref) || a.ID == ref {
			return a.ID
		}
	}
	return ""
}

// heuristicMatch searches by secondary keys (license plate, customer
// name) within agreements whose term contains the record date. Exactly
// one hit assigns; zero or several leave the record unassigned.
func heuristicMatch(rec FinancialRecord, candidates []rental.Agreement) string {
	plate := validation.NormalizePlate(rec.Raw.Get(colLicensePlate))
	customer := validation.NormalizeString(rec.Raw.Get(colCustomerName))
	if plate == "" && customer == "" {
		return ""
	}

	seen := map[string]bool{}
	var hits []string
	for _, a := range candidates {
		if !withinTerm(a, rec.OccurredOn) || seen[a.ID] {
			continue
		}
		if plate != "" && validation.NormalizePlate(a.LicensePlate) == plate {
			seen[a.ID] = true
			hits = append(hits, a.ID)
			continue
		}
		if customer != "" && validation.NormalizeString(a.CustomerName) == customer {
			seen[a.ID] = true
			hits = append(hits, a.ID)
		}
	}

	if len(hits) == 1 {
		return hits[0]
	}
	return ""
}

// withinTerm reports whether day d falls inside the agreement term,
// boundaries inclusive.
func withinTerm(a rental.Agreement, d time.Time) bool {
	return !d.Before(a.StartDate) && !d.After(a.EndDate)
}
