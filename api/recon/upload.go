package recon

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"FleetRentOps/api/constants"
	"FleetRentOps/internal/checksum"
	"FleetRentOps/internal/config"
	"FleetRentOps/internal/logger"
	"FleetRentOps/internal/validation"

	"github.com/google/uuid"
)

type jsonUploadRequest struct {
	UserID  string     `json:"user_id"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// handleUpload accepts one batch file (multipart csv/xlsx/xls) or a
// JSON row set, runs the import session and returns the batch report.
func (s *ReconService) handleUpload(rt RecordType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := validation.ExtractUserID(r)
		if err != nil {
			http.Error(w, constants.ErrUserIDRequired, http.StatusBadRequest)
			return
		}

		var (
			header   []string
			rows     []RawRow
			fileHash string
		)
		ct := strings.ToLower(r.Header.Get(constants.ContentTypeText))
		if strings.Contains(ct, "multipart/form-data") {
			if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
				http.Error(w, "Failed to parse multipart form", http.StatusBadRequest)
				return
			}
			file, fh, err := r.FormFile("file")
			if err != nil {
				http.Error(w, constants.ErrNoFilesUploaded, http.StatusBadRequest)
				return
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				http.Error(w, "Failed to read file: "+fh.Filename, http.StatusBadRequest)
				return
			}
			fileHash = checksum.FileHash(data)

			records, err := parseUploadFile(data, getFileExt(fh.Filename))
			if err != nil {
				if errors.Is(err, ErrUnsupportedFileType) {
					http.Error(w, constants.ErrUnsupportedFileType, http.StatusBadRequest)
					return
				}
				http.Error(w, "Invalid or unreadable file: "+fh.Filename, http.StatusBadRequest)
				return
			}
			header, rows, err = rowsFromRecords(records)
			if err != nil {
				http.Error(w, constants.ErrEmptyFile, http.StatusBadRequest)
				return
			}
		} else {
			var req jsonUploadRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Columns) == 0 || len(req.Rows) == 0 {
				http.Error(w, constants.ErrInvalidJSONRequired, http.StatusBadRequest)
				return
			}
			header = normalizeHeader(req.Columns)
			for _, cells := range req.Rows {
				if allEmptyRow(cells) {
					continue
				}
				rows = append(rows, NewRawRow(header, cells))
			}
			if len(rows) == 0 {
				http.Error(w, constants.ErrEmptyFile, http.StatusBadRequest)
				return
			}
			digest, _ := json.Marshal(req)
			fileHash = checksum.FileHash(digest)
		}

		// Structural checks run before anything is registered or staged.
		if err := ValidateHeaders(header, rt); err != nil {
			http.Error(w, constants.FormatError(constants.ErrMissingHeaders, strings.TrimPrefix(err.Error(), ErrMissingHeaders.Error()+": ")), http.StatusBadRequest)
			return
		}

		batchID := uuid.New().String()
		if err := s.ledger.RegisterBatch(ctx, batchID, rt, fileHash, userID); err != nil {
			if errors.Is(err, ErrFileAlreadyUploaded) {
				http.Error(w, constants.ErrFileAlreadyUploaded, http.StatusConflict)
				return
			}
			http.Error(w, constants.ErrDatabaseError, http.StatusInternalServerError)
			return
		}
		s.registry.Create(batchID, string(rt), userID)

		if err := s.ledger.StageRows(ctx, batchID, rt, rows); err != nil {
			s.registry.Finish(batchID, "REJECTED", nil)
			http.Error(w, constants.ErrDatabaseError, http.StatusInternalServerError)
			return
		}

		sess := NewSession(rt, s.finder, s.ledger)
		sess.SetProgressFunc(s.publishProgress)
		report, err := sess.Run(ctx, batchID, header, rows)
		if err != nil {
			s.registry.Finish(batchID, "REJECTED", nil)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.registry.Finish(batchID, report.Status, report)

		if logger.GlobalLogger != nil {
			logger.GlobalLogger.LogAudit(fmt.Sprintf(
				"import batch %s (%s) by %s: %d rows, %d valid, %d invalid, %d failed, status %s",
				batchID, rt, userID, report.TotalRows, report.ValidRows,
				report.InvalidRows, len(report.Failed), report.Status))
		}

		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"message": constants.FormatError(constants.SuccessUploaded, report.TotalRows),
			"report":  report,
		})
	}
}
