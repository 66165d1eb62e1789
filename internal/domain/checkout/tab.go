package checkout

import (
	"fmt"

	"github.com/grocerypos/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// Tab is an independent cart. Several tabs let the cashier park a
// customer while serving the next one
type Tab struct {
	ID       int
	Name     string
	lines    []CartLine
	totalDue decimal.Decimal
}

func newTab(id int) *Tab {
	return &Tab{
		ID:       id,
		Name:     fmt.Sprintf("#%d", id),
		totalDue: decimal.Zero,
	}
}

// Lines returns a copy of the cart lines in insertion order
func (t *Tab) Lines() []CartLine {
	out := make([]CartLine, len(t.lines))
	copy(out, t.lines)
	return out
}

// TotalDue returns the VAT-inclusive amount owed
func (t *Tab) TotalDue() decimal.Decimal {
	return t.totalDue
}

// Totals returns the VAT breakdown of the amount owed
func (t *Tab) Totals() Totals {
	return ComputeTotals(t.totalDue)
}

// ItemCount returns the number of units in the cart
func (t *Tab) ItemCount() int {
	n := 0
	for _, l := range t.lines {
		n += l.Quantity
	}
	return n
}

// IsEmpty returns true when the cart has no lines
func (t *Tab) IsEmpty() bool {
	return len(t.lines) == 0
}

// Quantity returns the quantity of a product, zero when absent
func (t *Tab) Quantity(productID int64) int {
	if i := t.indexOf(productID); i >= 0 {
		return t.lines[i].Quantity
	}
	return 0
}

// AddItem adds one unit of the product
func (t *Tab) AddItem(p *catalog.Product) error {
	if p == nil {
		return ErrNilProduct
	}
	if i := t.indexOf(p.ID); i >= 0 {
		t.lines[i].Quantity++
	} else {
		t.lines = append(t.lines, newCartLine(p))
	}
	t.recalculate()
	return nil
}

// AdjustQuantity changes a line's quantity by delta. A line that drops
// to zero or below is removed. Unknown products are ignored
func (t *Tab) AdjustQuantity(productID int64, delta int) {
	i := t.indexOf(productID)
	if i < 0 {
		return
	}
	q := t.lines[i].Quantity + delta
	if q <= 0 {
		t.lines = append(t.lines[:i], t.lines[i+1:]...)
	} else {
		t.lines[i].Quantity = q
	}
	t.recalculate()
}

// Clear empties the cart. A non-empty cart needs confirmation
func (t *Tab) Clear(c Confirmer) error {
	if t.IsEmpty() {
		return nil
	}
	if !confirmed(c, fmt.Sprintf("Clear all items from tab %s?", t.Name)) {
		return ErrNotConfirmed
	}
	t.reset()
	return nil
}

// RemoveProduct drops a product line regardless of quantity
func (t *Tab) RemoveProduct(productID int64) bool {
	i := t.indexOf(productID)
	if i < 0 {
		return false
	}
	t.lines = append(t.lines[:i], t.lines[i+1:]...)
	t.recalculate()
	return true
}

func (t *Tab) reset() {
	t.lines = nil
	t.totalDue = decimal.Zero
}

func (t *Tab) recalculate() {
	t.totalDue = SumLines(t.lines)
}

func (t *Tab) indexOf(productID int64) int {
	for i := range t.lines {
		if t.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}
