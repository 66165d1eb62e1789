package printing

import (
	"time"

	"github.com/grocerypos/backend/internal/domain/checkout"
	"github.com/shopspring/decimal"
)

func sampleReceipt() *checkout.Receipt {
	return &checkout.Receipt{
		TabID:   2,
		TabName: "#2",
		Lines: []checkout.ReceiptLine{
			{Name: "Jasmine Rice 5kg", UnitPrice: decimal.NewFromInt(189), Quantity: 2, LineTotal: decimal.NewFromInt(378)},
			{Name: "นมสด", UnitPrice: decimal.NewFromInt(25), Quantity: 1, LineTotal: decimal.NewFromInt(25)},
		},
		Subtotal: decimal.RequireFromString("376.64"),
		Tax:      decimal.RequireFromString("26.36"),
		Total:    decimal.NewFromInt(403),
		Cash:     decimal.NewFromInt(500),
		Change:   decimal.NewFromInt(97),
		IssuedAt: time.Date(2026, 10, 17, 15, 30, 12, 0, time.UTC),
	}
}

func sampleStore() StoreInfo {
	return StoreInfo{Name: "Corner Shop", Address: "12 Sukhumvit Rd, Bangkok", TaxID: "0105551234567"}
}

func sampleDocument() *ReceiptDocument {
	doc, err := NewReceiptDocument(sampleReceipt(), sampleStore())
	if err != nil {
		panic(err)
	}
	return doc
}
