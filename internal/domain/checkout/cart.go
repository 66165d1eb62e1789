package checkout

import (
	"github.com/grocerypos/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CartLine is one product in a tab's cart. Name and price are captured
// when the product is first added
type CartLine struct {
	ProductID int64
	Barcode   string
	Name      string
	Category  string
	Image     string
	UnitPrice decimal.Decimal
	Quantity  int
}

// LineTotal returns unit price × quantity
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func newCartLine(p *catalog.Product) CartLine {
	return CartLine{
		ProductID: p.ID,
		Barcode:   p.BarcodeValue(),
		Name:      p.Name,
		Category:  p.Category,
		Image:     p.ImageValue(),
		UnitPrice: p.Price,
		Quantity:  1,
	}
}
