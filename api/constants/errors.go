package constants

import "fmt"

// ============================================================================
// VALIDATION ERRORS - Uploaded files
// ============================================================================

const (
	ErrUnsupportedFileType  = "Unsupported file type. Please upload a .csv, .xlsx or .xls file"
	ErrEmptyFile            = "The uploaded file has no data rows"
	ErrFileAlreadyUploaded  = "This file was already imported earlier. Please upload a different file"
	ErrMissingHeaders       = "Required columns are missing from the file header: %s"
	ErrInvalidDataRow       = "Row %d is invalid: %s"
	ErrInvalidFieldValue    = "Field %s has an invalid value: %s"
	ErrMissingRequiredField = "Required field %s is missing or blank"
)

// ============================================================================
// VALIDATION ERRORS - Agreements
// ============================================================================

const (
	ErrNoAgreements       = "No rental agreements found for the given filter"
	ErrAgreementNotFound  = "Rental agreement not found"
	ErrAgreementAmbiguous = "More than one rental agreement matches; record left unassigned"
)

// ============================================================================
// GENERIC ERRORS
// ============================================================================

const (
	ErrInternalServer = "An unexpected error occurred. Please try again"
	ErrDatabaseError  = "Database error while processing the request. Please try again"
	ErrInvalidRequest = "Invalid request. Please check your input"
)

// ============================================================================
// SUCCESS MESSAGES
// ============================================================================

const (
	SuccessUploaded = "File uploaded successfully. %d rows processed"
	SuccessRetried  = "Failed rows re-submitted as batch %s"
)

// ============================================================================
// HELPER FUNCTIONS TO FORMAT ERRORS WITH CONTEXT
// ============================================================================

// FormatError formats an error message with additional context
func FormatError(baseError string, context ...interface{}) string {
	if len(context) == 0 {
		return baseError
	}
	return fmt.Sprintf(baseError, context...)
}

// FormatRowError formats an error for a specific data row
func FormatRowError(rowNum int, reason string) string {
	return fmt.Sprintf(ErrInvalidDataRow, rowNum, reason)
}

// FormatFieldError formats an error for a specific field
func FormatFieldError(fieldName string, reason string) string {
	return fmt.Sprintf(ErrInvalidFieldValue, fieldName, reason)
}

// FormatMissingFieldError formats a missing field error
func FormatMissingFieldError(fieldName string) string {
	return fmt.Sprintf(ErrMissingRequiredField, fieldName)
}
