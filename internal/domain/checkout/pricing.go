package checkout

import (
	"github.com/grocerypos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TaxRate is the VAT percentage already contained in every shelf price
const TaxRate = 7

var (
	taxRate     = decimal.NewFromInt(TaxRate)
	taxDivisor  = decimal.NewFromInt(100 + TaxRate)
	displayUnit = valueobject.DisplayPlaces
)

// Totals splits a VAT-inclusive total into its tax and net parts.
// Tax + Subtotal == Total holds exactly before rounding
type Totals struct {
	Total    decimal.Decimal
	Tax      decimal.Decimal
	Subtotal decimal.Decimal
}

// ComputeTotals extracts the VAT component from a VAT-inclusive total
func ComputeTotals(total decimal.Decimal) Totals {
	tax := total.Mul(taxRate).Div(taxDivisor)
	return Totals{
		Total:    total,
		Tax:      tax,
		Subtotal: total.Sub(tax),
	}
}

// Rounded returns the totals rounded for display
func (t Totals) Rounded() Totals {
	return Totals{
		Total:    t.Total.Round(displayUnit),
		Tax:      t.Tax.Round(displayUnit),
		Subtotal: t.Subtotal.Round(displayUnit),
	}
}

// SumLines returns Σ unit price × quantity
func SumLines(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total
}
