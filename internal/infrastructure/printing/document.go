package printing

import (
	"fmt"
	"time"

	"github.com/grocerypos/backend/internal/domain/checkout"
	"github.com/grocerypos/backend/internal/domain/shared/valueobject"
	"github.com/grocerypos/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
)

// StoreInfo is the shop header printed on every receipt
type StoreInfo struct {
	Name          string
	Address       string
	TaxID         string
	QRCodeContent string
}

// StoreInfoFromConfig copies the shop header out of the receipt settings
func StoreInfoFromConfig(cfg config.ReceiptConfig) StoreInfo {
	return StoreInfo{
		Name:          cfg.StoreName,
		Address:       cfg.StoreAddress,
		TaxID:         cfg.TaxID,
		QRCodeContent: cfg.QRCodeContent,
	}
}

// DocumentLine is one sold product on a receipt
type DocumentLine struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// ReceiptDocument is everything a renderer needs to lay out a receipt
type ReceiptDocument struct {
	Store     StoreInfo
	Number    string
	TabName   string
	IssuedAt  time.Time
	Lines     []DocumentLine
	ItemCount int
	TaxRate   int
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
	Cash      decimal.Decimal
	Change    decimal.Decimal
	// QRCode is a PNG image, empty when the store has no QR content
	QRCode []byte
}

// NewReceiptDocument builds a printable document from a paid tab's receipt
func NewReceiptDocument(r *checkout.Receipt, store StoreInfo) (*ReceiptDocument, error) {
	if r == nil {
		return nil, NewRenderError(ErrCodeInvalidDocument, "receipt is nil", nil)
	}

	lines := make([]DocumentLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, DocumentLine{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		})
	}

	doc := &ReceiptDocument{
		Store:     store,
		Number:    ReceiptNumber(r),
		TabName:   r.TabName,
		IssuedAt:  r.IssuedAt,
		Lines:     lines,
		ItemCount: r.ItemCount(),
		TaxRate:   checkout.TaxRate,
		Subtotal:  r.Subtotal,
		Tax:       r.Tax,
		Total:     r.Total,
		Cash:      r.Cash,
		Change:    r.Change,
	}

	if store.QRCodeContent != "" {
		png, err := QRCodePNG(store.QRCodeContent, qrCodeSize)
		if err != nil {
			return nil, err
		}
		doc.QRCode = png
	}

	return doc, nil
}

// ReceiptNumber identifies a receipt by issue time and tab
func ReceiptNumber(r *checkout.Receipt) string {
	return fmt.Sprintf("%s-%d", r.IssuedAt.Format("20060102-150405"), r.TabID)
}

// formatMoney renders an amount as ฿1,234.50
func formatMoney(d decimal.Decimal) string {
	return valueobject.FormatAmount(d, valueobject.DefaultCurrency)
}

// formatAmount renders an amount as 1,234.50 without the currency symbol
func formatAmount(d decimal.Decimal) string {
	return valueobject.FormatAmount(d, "")
}
