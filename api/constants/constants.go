package constants

// Common error messages
const (
	ErrInvalidJSON         = "invalid json or missing fields"
	ErrInvalidJSONRequired = "invalid json or missing required fields"
	ErrInvalidJSONShort    = "Invalid JSON"
	ErrMissingUserID       = "Missing or invalid user_id in body"
	ErrUserIDRequired      = "user_id required"
	ErrDB                  = "DB error"
	ErrInvalidRequestBody  = "Invalid request body"
	ErrFailedToQuery       = "Failed to query"
	ErrMethodNotAllowed    = "Method Not Allowed"
	ErrNoFilesUploaded     = "No files uploaded"
	ErrBatchNotFound       = "Batch not found"
)

// DB / SQL error templates
const (
	ErrTxStartFailed  = "failed to start transaction: "
	ErrTxCommitFailed = "failed to commit transaction: "
	ErrQueryFailed    = "query failed: "
)

// SQL formatting patterns
const (
	FormatSQLColumnArg = "%s = $%d"
)

// Content Types
const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "Content-Type"
)

// Streaming / CORS headers
const (
	HeaderAccessControlAllowOrigin  = "Access-Control-Allow-Origin"
	HeaderAccessControlAllowHeaders = "Access-Control-Allow-Headers"
)

// Date formats
const (
	DateTimeFormat  = "2006-01-02 15:04:05"
	DateFormat      = "2006-01-02"
	DateFormatAlt   = "02-01-2006"
	DateFormatSlash = "02/Jan/2006"
	DateFormatDash  = "02-Jan-2006"
	DateFormatISO   = "2006-01-02T15:04:05"
)

// NBSP shows up in spreadsheet exports and must be stripped before parsing.
const NBSP = " "
