package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"FleetRentOps/api/constants"
)

// ExtractUserID parses the request body ONCE and extracts user_id.
// Upload handlers accept both JSON bodies and multipart forms, so the
// body is restored for the caller after every attempt.
func ExtractUserID(r *http.Request) (string, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	defer r.Body.Close()

	// Try JSON first (we already have bytes)
	var reqMap map[string]interface{}
	if err := json.Unmarshal(body, &reqMap); err == nil {
		if userID, ok := reqMap["user_id"].(string); ok && userID != "" {
			r.Body = io.NopCloser(bytes.NewBuffer(body))
			return userID, nil
		}
	}

	// Restore body so form parsing can read it
	r.Body = io.NopCloser(bytes.NewBuffer(body))
	ct := r.Header.Get(constants.ContentTypeText)
	if strings.Contains(strings.ToLower(ct), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err == nil {
			if userID := r.FormValue("user_id"); userID != "" {
				r.Body = io.NopCloser(bytes.NewBuffer(body))
				return userID, nil
			}
		}
	} else {
		if err := r.ParseForm(); err == nil {
			if userID := r.FormValue("user_id"); userID != "" {
				r.Body = io.NopCloser(bytes.NewBuffer(body))
				return userID, nil
			}
		}
	}

	r.Body = io.NopCloser(bytes.NewBuffer(body))
	return "", fmt.Errorf("user_id not found in request")
}

// NormalizeString trims whitespace and converts to lowercase for comparisons
func NormalizeString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeCell trims, removes non-breaking spaces and collapses whitespace
func NormalizeCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, constants.NBSP, " ")
	return strings.Join(strings.Fields(s), " ")
}

// NormalizePlate canonicalizes a license plate for comparison: uppercase,
// no spaces or dashes. "b-md 1234" and "BMD1234" compare equal.
func NormalizePlate(s string) string {
	s = strings.ToUpper(NormalizeCell(s))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}

// CleanAmount strips currency symbols, thousands separators and stray
// whitespace so the remainder parses as a plain decimal. Accounting-style
// parentheses denote a negative value.
func CleanAmount(s string) string {
	s = NormalizeCell(s)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	for _, sym := range []string{"€", "$", "£", "₹"} {
		s = strings.ReplaceAll(s, sym, "")
	}
	// Currency codes sometimes prefix or suffix the number in exports.
	up := strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimSpace(s)
	for _, code := range []string{"EUR", "USD", "GBP", "INR", "CHF"} {
		if strings.HasPrefix(up, code) {
			s = s[len(code):]
			up = up[len(code):]
		}
		if strings.HasSuffix(up, code) {
			s = s[:len(s)-len(code)]
			up = up[:len(up)-len(code)]
		}
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if neg && !strings.HasPrefix(s, "-") {
		s = "-" + s
	}
	return strings.TrimSpace(s)
}

// SanitizeForPostgres escapes characters that break PostgreSQL inserts
// when raw spreadsheet cells are staged verbatim.
func SanitizeForPostgres(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\\", "/")
	s = strings.ReplaceAll(s, "\x00", "")
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == 0 {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
