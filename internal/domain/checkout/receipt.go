package checkout

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptLine is one printed line of a receipt
type ReceiptLine struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	LineTotal decimal.Decimal
}

// Receipt is a display-only snapshot of a paid tab. It is never persisted
type Receipt struct {
	TabID    int
	TabName  string
	Lines    []ReceiptLine
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Cash     decimal.Decimal
	Change   decimal.Decimal
	IssuedAt time.Time
}

// ItemCount returns the number of units sold
func (r *Receipt) ItemCount() int {
	n := 0
	for _, l := range r.Lines {
		n += l.Quantity
	}
	return n
}

func newReceipt(tab *Tab, cash decimal.Decimal, now time.Time) *Receipt {
	lines := make([]ReceiptLine, 0, len(tab.lines))
	for _, l := range tab.lines {
		lines = append(lines, ReceiptLine{
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal(),
		})
	}

	totals := ComputeTotals(SumLines(tab.lines))
	return &Receipt{
		TabID:    tab.ID,
		TabName:  tab.Name,
		Lines:    lines,
		Subtotal: totals.Subtotal,
		Tax:      totals.Tax,
		Total:    totals.Total,
		Cash:     cash,
		Change:   cash.Sub(totals.Total),
		IssuedAt: now,
	}
}
