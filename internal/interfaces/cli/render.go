package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	appcheckout "github.com/grocerypos/backend/internal/application/checkout"
	"github.com/grocerypos/backend/internal/domain/checkout"
)

const rule = "----------------------------------------"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// RenderView prints the register screen: tabs, cart, totals and any
// open dialog
func RenderView(w io.Writer, v appcheckout.View) {
	renderTabs(w, v)
	fmt.Fprintln(w, rule)

	if len(v.Lines) == 0 {
		fmt.Fprintln(w, "  (cart is empty)")
	} else {
		tw := newTable(w)
		fmt.Fprintln(tw, "  ID\tITEM\tQTY\tPRICE\tTOTAL")
		for _, l := range v.Lines {
			fmt.Fprintf(tw, "  %d\t%s\t%d\t%s\t%s\n", l.ProductID, l.Name, l.Quantity, l.UnitPrice, l.LineTotal)
		}
		_ = tw.Flush()
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  Items: %d\n", v.ItemCount)
	fmt.Fprintf(w, "  Subtotal: %s   VAT %d%%: %s\n", v.Totals.Subtotal, checkout.TaxRate, v.Totals.Tax)
	fmt.Fprintf(w, "  TOTAL: %s\n", v.Totals.Total)

	if v.Payment != nil {
		renderPayment(w, v.Payment)
	}
	if v.Receipt != nil {
		RenderReceipt(w, v.Receipt)
	}
	if v.Notice != "" {
		fmt.Fprintf(w, "! %s\n", v.Notice)
	}
}

func renderTabs(w io.Writer, v appcheckout.View) {
	parts := make([]string, 0, len(v.Tabs)+1)
	for _, t := range v.Tabs {
		label := fmt.Sprintf("%d:%s", t.Index+1, t.Name)
		if t.ItemCount > 0 {
			label += fmt.Sprintf("(%d)", t.ItemCount)
		}
		if t.Active {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	if v.CanAddTab {
		parts = append(parts, "+")
	}
	fmt.Fprintf(w, "Tabs: %s\n", strings.Join(parts, " "))
}

func renderPayment(w io.Writer, p *appcheckout.PaymentView) {
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  PAYMENT  due %s\n", p.Due)
	switch p.State {
	case checkout.PaymentStateNone:
		fmt.Fprintln(w, "  cash: -")
	case checkout.PaymentStateInsufficient:
		fmt.Fprintf(w, "  cash: %s  (not enough)\n", p.Cash)
	case checkout.PaymentStateSufficient:
		fmt.Fprintf(w, "  cash: %s  change: %s\n", p.Cash, p.Change)
	}
	if p.CanConfirm {
		fmt.Fprintln(w, "  type 'confirm' to complete the sale")
	}
}

// RenderReceipt prints a completed sale
func RenderReceipt(w io.Writer, r *appcheckout.ReceiptView) {
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  RECEIPT  tab %s  %s\n", r.TabName, r.IssuedAt.Format("2006-01-02 15:04:05"))

	tw := newTable(w)
	for _, l := range r.Lines {
		fmt.Fprintf(tw, "  %s\t%d x %s\t%s\n", l.Name, l.Quantity, l.UnitPrice, l.LineTotal)
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "  Items: %d\n", r.ItemCount)
	fmt.Fprintf(w, "  Subtotal: %s   VAT %d%%: %s\n", r.Subtotal, checkout.TaxRate, r.Tax)
	fmt.Fprintf(w, "  Total: %s   Cash: %s   Change: %s\n", r.Total, r.Cash, r.Change)
	fmt.Fprintln(w, "  'print' to print, 'dismiss' to close")
}

// RenderProducts prints the filtered product grid
func RenderProducts(w io.Writer, v appcheckout.View) {
	fmt.Fprintf(w, "Categories: %s\n", strings.Join(v.Categories, ", "))
	if v.Filter.Category != "" || v.Filter.Search != "" {
		fmt.Fprintf(w, "Filter: category=%q search=%q\n", v.Filter.Category, v.Filter.Search)
	}
	if len(v.Products) == 0 {
		fmt.Fprintln(w, "  (no products)")
		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "  ID\tBARCODE\tNAME\tCATEGORY\tPRICE\tIN CART")
	for _, p := range v.Products {
		inCart := ""
		if p.InCart > 0 {
			inCart = fmt.Sprintf("%d", p.InCart)
		}
		barcode := p.Barcode
		if barcode == "" {
			barcode = "-"
		}
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\t%s\n", p.ID, barcode, p.Name, p.Category, p.Price, inCart)
	}
	_ = tw.Flush()
}

const helpText = `Commands:
  <code>                 scan a barcode or product id
  scan <code>            same as above
  add <id>               add one unit of a listed product
  inc <id> | dec <id>    change a cart line by one
  clear                  empty the cart
  list                   show products
  category [name]        filter by category (no name: all)
  search [term]          filter by name or barcode (no term: clear)
  tab new                open a tab
  tab <n>                switch to tab n
  tab close <n>          close tab n
  pay [cash]             open the payment dialog
  cash <amount>          enter cash received
  confirm [cash]         complete the sale
  cancel                 close the payment dialog
  print | dismiss        finish the receipt
  delete <id>            delete a product from the catalog
  product add name=.. price=.. category=.. [barcode=..] [image=..] [file=..]
                         add a product; file= uploads an image first
  product edit <id> key=value ...
                         change a product, other fields are kept
  upload <file>          upload a product image and print its path
  refresh                reload products
  show                   redraw the screen
  quit                   leave the shell
`

// RenderUnavailable prints the banner shown while the catalog service
// cannot be reached
func RenderUnavailable(w io.Writer, baseURL string) {
	fmt.Fprintln(w, "****************************************")
	fmt.Fprintln(w, "  CANNOT CONNECT TO THE CATALOG SERVICE")
	if baseURL != "" {
		fmt.Fprintf(w, "  %s\n", baseURL)
	}
	fmt.Fprintln(w, "  Check that the backend is running,")
	fmt.Fprintln(w, "  then type 'refresh'.")
	fmt.Fprintln(w, "****************************************")
}

// RenderHelp prints the command list
func RenderHelp(w io.Writer) {
	_, _ = io.WriteString(w, helpText)
}
