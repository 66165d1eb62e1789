package checkout

import (
	"time"

	"github.com/grocerypos/backend/internal/domain/catalog"
	"github.com/grocerypos/backend/internal/domain/checkout"
	"github.com/grocerypos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// View is everything a register screen shows. It is rebuilt from the
// session after every command and never shares memory with it
type View struct {
	Tabs        []TabView
	ActiveIndex int
	CanAddTab   bool

	Lines     []LineView
	ItemCount int
	Totals    TotalsView

	Products   []ProductView
	Categories []string
	Filter     ProductFilter

	// Payment is nil while the payment dialog is closed
	Payment *PaymentView
	// Receipt is nil unless a sale awaits dismissal
	Receipt *ReceiptView

	Notice string
}

// TabView is one tab button with its item badge
type TabView struct {
	Index     int
	ID        int
	Name      string
	ItemCount int
	Active    bool
}

// LineView is one cart row
type LineView struct {
	ProductID int64
	Name      string
	Quantity  int
	UnitPrice string
	LineTotal string
}

// TotalsView holds formatted totals plus the raw amount due
type TotalsView struct {
	Subtotal string
	Tax      string
	Total    string
	Due      decimal.Decimal
}

// ProductView is one product card
type ProductView struct {
	ID       int64
	Barcode  string
	Name     string
	Category string
	Price    string
	InCart   int
}

// PaymentView is the payment dialog state
type PaymentView struct {
	Input      string
	State      checkout.PaymentState
	Due        string
	Cash       string
	Change     string
	CanConfirm bool
}

// ReceiptView is a formatted receipt
type ReceiptView struct {
	TabName   string
	Lines     []LineView
	ItemCount int
	Subtotal  string
	Tax       string
	Total     string
	Cash      string
	Change    string
	IssuedAt  time.Time
}

func formatBaht(d decimal.Decimal) string {
	return valueobject.FormatAmount(d, valueobject.THB)
}

func buildTabViews(s *checkout.Session) []TabView {
	tabs := s.Tabs()
	views := make([]TabView, len(tabs))
	for i, t := range tabs {
		views[i] = TabView{
			Index:     i,
			ID:        t.ID,
			Name:      t.Name,
			ItemCount: t.ItemCount(),
			Active:    i == s.ActiveIndex(),
		}
	}
	return views
}

func buildLineViews(lines []checkout.CartLine) []LineView {
	views := make([]LineView, len(lines))
	for i, l := range lines {
		views[i] = LineView{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: formatBaht(l.UnitPrice),
			LineTotal: formatBaht(l.LineTotal()),
		}
	}
	return views
}

func buildTotalsView(t checkout.Totals) TotalsView {
	return TotalsView{
		Subtotal: formatBaht(t.Subtotal),
		Tax:      formatBaht(t.Tax),
		Total:    formatBaht(t.Total),
		Due:      t.Total,
	}
}

func buildProductViews(products []*catalog.Product, tab *checkout.Tab) []ProductView {
	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = ProductView{
			ID:       p.ID,
			Barcode:  p.BarcodeValue(),
			Name:     p.Name,
			Category: p.Category,
			Price:    formatBaht(p.Price),
			InCart:   tab.Quantity(p.ID),
		}
	}
	return views
}

func buildPaymentView(input string, q checkout.PaymentQuote) *PaymentView {
	v := &PaymentView{
		Input:      input,
		State:      q.State,
		Due:        formatBaht(q.Due),
		CanConfirm: q.CanConfirm,
	}
	if q.State != checkout.PaymentStateNone {
		v.Cash = formatBaht(q.Cash)
	}
	if q.State == checkout.PaymentStateSufficient {
		v.Change = formatBaht(q.Change)
	}
	return v
}

// BuildReceiptView formats a receipt for display
func BuildReceiptView(r *checkout.Receipt) *ReceiptView {
	lines := make([]LineView, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = LineView{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: formatBaht(l.UnitPrice),
			LineTotal: formatBaht(l.LineTotal),
		}
	}
	return &ReceiptView{
		TabName:   r.TabName,
		Lines:     lines,
		ItemCount: r.ItemCount(),
		Subtotal:  formatBaht(r.Subtotal),
		Tax:       formatBaht(r.Tax),
		Total:     formatBaht(r.Total),
		Cash:      formatBaht(r.Cash),
		Change:    formatBaht(r.Change),
		IssuedAt:  r.IssuedAt,
	}
}
