package printing

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// TextColumns is the line width of a 80mm roll in the printer's default font
const TextColumns = 42

// TextRenderer lays out receipts as fixed-width UTF-8 text
type TextRenderer struct {
	columns int
}

// NewTextRenderer creates a text renderer; columns <= 0 uses TextColumns
func NewTextRenderer(columns int) *TextRenderer {
	if columns <= 0 {
		columns = TextColumns
	}
	return &TextRenderer{columns: columns}
}

// Render writes the receipt as text
func (r *TextRenderer) Render(ctx context.Context, doc *ReceiptDocument) (*RenderResult, error) {
	if doc == nil {
		return nil, NewRenderError(ErrCodeInvalidDocument, "receipt document is nil", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeRenderTimeout, "text rendering was cancelled", err)
	}

	start := time.Now()
	rule := strings.Repeat("-", r.columns)

	var b strings.Builder
	for _, line := range []string{doc.Store.Name, doc.Store.Address} {
		if line != "" {
			b.WriteString(r.center(line))
		}
	}
	if doc.Store.TaxID != "" {
		b.WriteString(r.center("Tax ID: " + doc.Store.TaxID))
	}
	b.WriteString(rule + "\n")
	b.WriteString("Receipt " + doc.Number + "\n")
	b.WriteString(r.row("Tab "+doc.TabName, doc.IssuedAt.Format("02/01/2006 15:04")))
	b.WriteString(rule + "\n")

	for _, l := range doc.Lines {
		b.WriteString(l.Name + "\n")
		b.WriteString(r.row(
			fmt.Sprintf("  %d x %s", l.Quantity, formatAmount(l.UnitPrice)),
			formatAmount(l.LineTotal),
		))
	}

	b.WriteString(rule + "\n")
	b.WriteString(r.row("Items", fmt.Sprintf("%d", doc.ItemCount)))
	b.WriteString(r.row("Subtotal", formatMoney(doc.Subtotal)))
	b.WriteString(r.row(fmt.Sprintf("VAT %d%% (included)", doc.TaxRate), formatMoney(doc.Tax)))
	b.WriteString(r.row("TOTAL", formatMoney(doc.Total)))
	b.WriteString(r.row("Cash", formatMoney(doc.Cash)))
	b.WriteString(r.row("Change", formatMoney(doc.Change)))
	b.WriteString(rule + "\n")
	if doc.Store.QRCodeContent != "" {
		b.WriteString(r.center(doc.Store.QRCodeContent))
	}
	b.WriteString(r.center("Thank you"))

	return &RenderResult{
		Data:           []byte(b.String()),
		ContentType:    "text/plain; charset=utf-8",
		Extension:      ".txt",
		RenderDuration: time.Since(start),
	}, nil
}

// Close is a no-op
func (r *TextRenderer) Close() error {
	return nil
}

func (r *TextRenderer) row(left, right string) string {
	gap := r.columns - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right + "\n"
}

func (r *TextRenderer) center(s string) string {
	pad := (r.columns - utf8.RuneCountInString(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s + "\n"
}

var _ Renderer = (*TextRenderer)(nil)
