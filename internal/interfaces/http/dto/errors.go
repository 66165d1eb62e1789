package dto

import "net/http"

// General error codes produced by the HTTP layer itself
const (
	// ErrCodeInternal is used for unexpected server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidID is used when a path id is not a positive integer
	ErrCodeInvalidID = "INVALID_ID"
	// ErrCodeRequestTooLarge is used when the body exceeds the server limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMIT_EXCEEDED"
	// ErrCodeUnavailable is used when a dependency such as the database is down
	ErrCodeUnavailable = "SERVICE_UNAVAILABLE"
	// ErrCodeIdempotencyConflict is used when a keyed request is still running
	ErrCodeIdempotencyConflict = "IDEMPOTENCY_CONFLICT"
	// ErrCodeNoBarcode is used when a label is requested for a product without barcode
	ErrCodeNoBarcode = "NO_BARCODE"
)

// ErrorCodeHTTPStatus maps domain and HTTP error codes to status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:            http.StatusInternalServerError,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeInvalidID:           http.StatusBadRequest,
	ErrCodeRequestTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:         http.StatusTooManyRequests,
	ErrCodeUnavailable:         http.StatusServiceUnavailable,
	ErrCodeIdempotencyConflict: http.StatusConflict,
	ErrCodeNoBarcode:           http.StatusNotFound,

	// Shared domain errors
	"NOT_FOUND":     http.StatusNotFound,
	"INVALID_INPUT": http.StatusBadRequest,
	"INVALID_STATE": http.StatusUnprocessableEntity,
	// the unique index is the only source; the catalog reports it as a database error
	"ALREADY_EXISTS": http.StatusInternalServerError,

	// Catalog
	"PRODUCT_NOT_FOUND": http.StatusNotFound,
	"DUPLICATE_BARCODE": http.StatusInternalServerError,
	"MISSING_FIELDS":    http.StatusBadRequest,
	"INVALID_NAME":      http.StatusBadRequest,
	"INVALID_PRICE":     http.StatusBadRequest,
	"INVALID_CATEGORY":  http.StatusBadRequest,
	"INVALID_BARCODE":   http.StatusBadRequest,
	"INVALID_IMAGE":     http.StatusBadRequest,

	// Uploads
	"NO_FILE":           http.StatusBadRequest,
	"INVALID_FILE_TYPE": http.StatusBadRequest,
	"FILE_TOO_LARGE":    http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
