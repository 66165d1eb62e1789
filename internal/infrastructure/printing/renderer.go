package printing

import (
	"context"
	"time"
)

// Receipt roll geometry in millimeters
const (
	PaperWidthMM   = 80.0
	ContentWidthMM = 72.0
)

// Margins in millimeters
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// DefaultMargins centers the printable area on an 80mm roll
func DefaultMargins() Margins {
	side := (PaperWidthMM - ContentWidthMM) / 2
	return Margins{Top: 4, Right: side, Bottom: 4, Left: side}
}

// RenderResult contains the output from receipt rendering
type RenderResult struct {
	// Data is the rendered document
	Data []byte
	// ContentType is the MIME type of Data
	ContentType string
	// Extension is the file extension including the dot
	Extension string
	// RenderDuration is how long the rendering took
	RenderDuration time.Duration
}

// Renderer turns a receipt document into a printable file
type Renderer interface {
	// Render produces the document bytes
	Render(ctx context.Context, doc *ReceiptDocument) (*RenderResult, error)
	// Close releases any resources held by the renderer
	Close() error
}

// RenderError represents an error during rendering or storing a receipt
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout   = "RENDER_TIMEOUT"
	ErrCodeRenderFailed    = "RENDER_FAILED"
	ErrCodeInvalidDocument = "INVALID_DOCUMENT"
	ErrCodeInvalidFont     = "INVALID_FONT"
	ErrCodeStorageFailed   = "STORAGE_FAILED"
	ErrCodeEncodeFailed    = "ENCODE_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
