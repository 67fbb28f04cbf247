package recon

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"

	"FleetRentOps/internal/validation"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

func getFileExt(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// parseUploadFile turns an uploaded batch file into [][]string,
// header row included. CSV, xlsx and legacy xls are accepted.
func parseUploadFile(data []byte, ext string) ([][]string, error) {
	switch ext {
	case ".csv":
		r := csv.NewReader(bytes.NewReader(data))
		r.FieldsPerRecord = -1 // exports pad rows unevenly
		return r.ReadAll()
	case ".xlsx":
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer f.Close()
		sheet := f.GetSheetName(0)
		return f.GetRows(sheet)
	case ".xls":
		wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, err
		}
		rows := wb.ReadAllCells(65535)
		return rows, nil
	}
	return nil, ErrUnsupportedFileType
}

// normalizeHeader lowercases and snake_cases column names so "External
// Ref" and "external_ref" are the same column.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.ToLower(validation.NormalizeCell(h))
		h = strings.ReplaceAll(h, " ", "_")
		out[i] = h
	}
	return out
}

func allEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// rowsFromRecords converts parsed file records into RawRows, skipping
// fully empty lines that spreadsheet exports love to append.
func rowsFromRecords(records [][]string) (header []string, rows []RawRow, err error) {
	if len(records) < 2 {
		return nil, nil, ErrEmptyFile
	}
	header = normalizeHeader(records[0])
	for _, rec := range records[1:] {
		if allEmptyRow(rec) {
			continue
		}
		rows = append(rows, NewRawRow(header, rec))
	}
	if len(rows) == 0 {
		return nil, nil, ErrEmptyFile
	}
	return header, rows, nil
}
