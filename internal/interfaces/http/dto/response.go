package dto

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: message, Code: code}
}

// NewErrorResponseWithRequestID creates an error response tagged with the request id
func NewErrorResponseWithRequestID(code, message, requestID string) ErrorResponse {
	return ErrorResponse{Error: message, Code: code, RequestID: requestID}
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// IDRequest binds a numeric :id path parameter
type IDRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// LookupRequest binds the ?code= query of a scan lookup
type LookupRequest struct {
	Code string `form:"code" binding:"required,max=50"`
}
