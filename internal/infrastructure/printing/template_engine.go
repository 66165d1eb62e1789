package printing

import (
	"bytes"
	"context"
	"encoding/base64"
	"html/template"
	"maps"
	"strings"
	"time"
)

// TemplateEngine renders HTML receipts with html/template and
// formatting helpers for money and dates
type TemplateEngine struct {
	funcMap template.FuncMap
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithFuncs adds or overrides template functions
func WithFuncs(funcs template.FuncMap) TemplateEngineOption {
	return func(e *TemplateEngine) {
		maps.Copy(e.funcMap, funcs)
	}
}

// NewTemplateEngine creates a new template engine with default configuration
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	e := &TemplateEngine{}

	e.funcMap = template.FuncMap{
		// Money formatting
		"formatMoney":  formatMoney,
		"formatAmount": formatAmount,

		// Date formatting
		"formatDateTime": formatDateTime,

		// String utilities
		"truncate": truncate,
		"upper":    strings.ToUpper,
		"trim":     strings.TrimSpace,

		// Images
		"pngDataURI": pngDataURI,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// RenderString renders a template string with the provided data
func (e *TemplateEngine) RenderString(ctx context.Context, name, content string, data any) (string, error) {
	if content == "" {
		return "", NewRenderError(ErrCodeInvalidDocument, "template content is empty", nil)
	}
	if err := ctx.Err(); err != nil {
		return "", NewRenderError(ErrCodeRenderTimeout, "template rendering was cancelled", err)
	}

	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return "", NewRenderError(ErrCodeInvalidDocument, "failed to parse template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}

	return buf.String(), nil
}

// RenderReceipt renders the built-in 80mm receipt template
func (e *TemplateEngine) RenderReceipt(ctx context.Context, doc *ReceiptDocument) (string, error) {
	if doc == nil {
		return "", NewRenderError(ErrCodeInvalidDocument, "receipt document is nil", nil)
	}
	return e.RenderString(ctx, "receipt", receiptHTMLTemplate, doc)
}

// GetFuncMap returns a copy of the template function map
func (e *TemplateEngine) GetFuncMap() template.FuncMap {
	funcMap := make(template.FuncMap, len(e.funcMap))
	maps.Copy(funcMap, e.funcMap)
	return funcMap
}

// formatDateTime formats a time as 17/10/2026 15:30
func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006 15:04")
}

// truncate shortens s to max runes, ending with "..."
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// pngDataURI embeds PNG bytes in an img src attribute
func pngDataURI(data []byte) template.URL {
	if len(data) == 0 {
		return ""
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(data))
}
