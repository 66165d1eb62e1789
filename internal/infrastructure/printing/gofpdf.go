package printing

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	fontFamilyCore = "Helvetica"
	fontFamilyUTF8 = "receipt"

	lineHeightMM = 4.5
	qrSizeMM     = 30.0
)

// GoPDFConfig contains configuration for the gofpdf renderer
type GoPDFConfig struct {
	// FontPath is a UTF-8 TrueType font. Without it the core Helvetica
	// font is used, which cannot draw Thai text or the Baht sign
	FontPath string
	// Margins around the receipt (default: DefaultMargins)
	Margins *Margins
	// Logger for debug output
	Logger *zap.Logger
}

// GoPDFRenderer draws receipts directly with gofpdf, no browser needed
type GoPDFRenderer struct {
	config *GoPDFConfig
	logger *zap.Logger
}

// NewGoPDFRenderer creates a new gofpdf receipt renderer
func NewGoPDFRenderer(config *GoPDFConfig) (*GoPDFRenderer, error) {
	if config == nil {
		config = &GoPDFConfig{}
	}
	if config.Margins == nil {
		m := DefaultMargins()
		config.Margins = &m
	}
	if config.FontPath != "" {
		if _, err := os.Stat(config.FontPath); err != nil {
			return nil, NewRenderError(ErrCodeInvalidFont, "font file not readable: "+config.FontPath, err)
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &GoPDFRenderer{config: config, logger: logger}, nil
}

// Render draws the receipt as a single 80mm wide page sized to its content
func (r *GoPDFRenderer) Render(ctx context.Context, doc *ReceiptDocument) (*RenderResult, error) {
	if doc == nil {
		return nil, NewRenderError(ErrCodeInvalidDocument, "receipt document is nil", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeRenderTimeout, "receipt rendering was cancelled", err)
	}

	start := time.Now()
	m := r.config.Margins

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: PaperWidthMM, Ht: r.pageHeight(doc)},
	})
	pdf.SetMargins(m.Left, m.Top, m.Right)
	pdf.SetAutoPageBreak(false, m.Bottom)
	pdf.SetTitle("Receipt "+doc.Number, true)
	pdf.SetCreator(doc.Store.Name, true)

	family := fontFamilyCore
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	money := func(d decimal.Decimal) string { return formatAmount(d) + " THB" }
	if r.config.FontPath != "" {
		pdf.AddUTF8Font(fontFamilyUTF8, "", r.config.FontPath)
		family = fontFamilyUTF8
		tr = func(s string) string { return s }
		money = formatMoney
	}
	pdf.AddPage()

	width := PaperWidthMM - m.Left - m.Right
	half := width / 2

	// header
	pdf.SetFont(family, "", 12)
	pdf.CellFormat(width, 6, tr(doc.Store.Name), "", 1, "C", false, 0, "")
	pdf.SetFont(family, "", 8)
	if doc.Store.Address != "" {
		pdf.MultiCell(width, lineHeightMM, tr(doc.Store.Address), "", "C", false)
	}
	if doc.Store.TaxID != "" {
		pdf.CellFormat(width, lineHeightMM, tr("Tax ID: "+doc.Store.TaxID), "", 1, "C", false, 0, "")
	}
	r.rule(pdf, width)

	pdf.CellFormat(half, lineHeightMM, "Receipt", "", 0, "L", false, 0, "")
	pdf.CellFormat(half, lineHeightMM, doc.Number, "", 1, "R", false, 0, "")
	pdf.CellFormat(half, lineHeightMM, tr("Tab "+doc.TabName), "", 0, "L", false, 0, "")
	pdf.CellFormat(half, lineHeightMM, doc.IssuedAt.Format("02/01/2006 15:04"), "", 1, "R", false, 0, "")
	r.rule(pdf, width)

	// lines
	for _, l := range doc.Lines {
		pdf.CellFormat(width, lineHeightMM, tr(truncate(l.Name, 40)), "", 1, "L", false, 0, "")
		pdf.CellFormat(half, lineHeightMM, fmt.Sprintf("  %d x %s", l.Quantity, formatAmount(l.UnitPrice)), "", 0, "L", false, 0, "")
		pdf.CellFormat(half, lineHeightMM, formatAmount(l.LineTotal), "", 1, "R", false, 0, "")
	}
	r.rule(pdf, width)

	// totals
	rows := []struct {
		label string
		value string
		bold  bool
	}{
		{"Items", fmt.Sprintf("%d", doc.ItemCount), false},
		{"Subtotal", money(doc.Subtotal), false},
		{fmt.Sprintf("VAT %d%% (included)", doc.TaxRate), money(doc.Tax), false},
		{"TOTAL", money(doc.Total), true},
		{"Cash", money(doc.Cash), false},
		{"Change", money(doc.Change), false},
	}
	for _, row := range rows {
		size := 8.0
		if row.bold {
			size = 10
		}
		pdf.SetFontSize(size)
		pdf.CellFormat(half, lineHeightMM+1, row.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(half, lineHeightMM+1, row.value, "", 1, "R", false, 0, "")
	}
	pdf.SetFontSize(8)
	r.rule(pdf, width)

	if len(doc.QRCode) > 0 {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(doc.QRCode))
		pdf.ImageOptions("qr", (PaperWidthMM-qrSizeMM)/2, pdf.GetY(), qrSizeMM, qrSizeMM, true, opts, 0, "")
	}
	pdf.CellFormat(width, lineHeightMM+1, "Thank you", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		if r.config.FontPath != "" {
			return nil, NewRenderError(ErrCodeInvalidFont, "failed to draw receipt with "+r.config.FontPath, err)
		}
		return nil, NewRenderError(ErrCodeRenderFailed, "gofpdf output failed", err)
	}

	duration := time.Since(start)
	r.logger.Info("receipt rendered",
		zap.String("renderer", "gofpdf"),
		zap.String("receipt", doc.Number),
		zap.Int("bytes", buf.Len()),
		zap.Duration("duration", duration))

	return &RenderResult{
		Data:           buf.Bytes(),
		ContentType:    "application/pdf",
		Extension:      ".pdf",
		RenderDuration: duration,
	}, nil
}

// pageHeight estimates the roll length the receipt needs
func (r *GoPDFRenderer) pageHeight(doc *ReceiptDocument) float64 {
	h := r.config.Margins.Top + r.config.Margins.Bottom
	h += 6 + 3*lineHeightMM // store header
	h += 2*lineHeightMM + 6 // receipt number, tab, rules
	h += float64(2*len(doc.Lines)) * lineHeightMM
	h += 6*(lineHeightMM+1) + 4
	h += lineHeightMM + 1
	if len(doc.QRCode) > 0 {
		h += qrSizeMM + 2
	}
	return h
}

// rule draws a separator across the content width
func (r *GoPDFRenderer) rule(pdf *gofpdf.Fpdf, width float64) {
	y := pdf.GetY() + 1
	pdf.SetDashPattern([]float64{1, 1}, 0)
	pdf.Line(r.config.Margins.Left, y, r.config.Margins.Left+width, y)
	pdf.SetDashPattern([]float64{}, 0)
	pdf.SetY(y + 1)
}

// Close is a no-op
func (r *GoPDFRenderer) Close() error {
	return nil
}

var _ Renderer = (*GoPDFRenderer)(nil)
