package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	appcatalog "github.com/grocerypos/backend/internal/application/catalog"
	"github.com/grocerypos/backend/internal/domain/catalog"
	"github.com/grocerypos/backend/internal/domain/checkout"
	"github.com/grocerypos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrNoPrinter is returned by PrintReceipt when no printer is configured
	ErrNoPrinter = shared.NewDomainError("NO_PRINTER", "No receipt printer is configured")
	// ErrReadOnlyCatalog is returned by product edits when the gateway
	// cannot change the catalog
	ErrReadOnlyCatalog = shared.NewDomainError("READ_ONLY_CATALOG", "The catalog cannot be edited from this register")
	// ErrInvalidPrice is returned when a product form carries a bad price
	ErrInvalidPrice = shared.NewDomainError("INVALID_PRICE", "Price must be a number of zero or more")
)

// Controller drives one cash register. Commands are serialised by a
// mutex; catalog calls run outside it and a failed call leaves the
// session untouched
type Controller struct {
	mu sync.Mutex

	session   *checkout.Session
	catalog   CatalogGateway
	editor    CatalogEditor
	printer   ReceiptPrinter
	publisher shared.EventPublisher
	confirmer checkout.Confirmer
	logger    *zap.Logger
	now       func() time.Time

	products []*catalog.Product
	filter   ProductFilter
	// payment holds the cash typed into the open payment dialog
	payment *string
	notice  string
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// WithReceiptPrinter sets the printer used by PrintReceipt
func WithReceiptPrinter(printer ReceiptPrinter) ControllerOption {
	return func(c *Controller) {
		c.printer = printer
	}
}

// WithConfirmer sets who approves destructive commands. Without one,
// every confirmation is declined
func WithConfirmer(confirmer checkout.Confirmer) ControllerOption {
	return func(c *Controller) {
		c.confirmer = confirmer
	}
}

// WithEventBus routes product deletions through bus. The controller
// subscribes itself so it purges carts for deletions made anywhere on
// the bus
func WithEventBus(bus shared.EventBus) ControllerOption {
	return func(c *Controller) {
		c.publisher = bus
		bus.Subscribe(c)
	}
}

// WithLogger sets the controller logger
func WithLogger(logger *zap.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithClock overrides the receipt timestamp source
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		c.now = now
	}
}

// NewController creates a controller with one empty tab and no products.
// Product edits are enabled when gateway is also a CatalogEditor.
// Call Refresh to load the catalog
func NewController(gateway CatalogGateway, opts ...ControllerOption) *Controller {
	c := &Controller{
		session: checkout.NewSession(),
		catalog: gateway,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	if editor, ok := gateway.(CatalogEditor); ok {
		c.editor = editor
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// View returns the current screen state
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Refresh reloads the catalog
func (c *Controller) Refresh(ctx context.Context) (View, error) {
	products, err := c.catalog.ListProducts(ctx)
	return c.do(func() error {
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		c.products = products
		return nil
	})
}

// Filter sets the product grid filter
func (c *Controller) Filter(category, search string) View {
	v, _ := c.do(func() error {
		c.filter = ProductFilter{Category: category, Search: search}
		return nil
	})
	return v
}

// NewTab opens a tab and activates it. At the tab limit it only
// reports the limit
func (c *Controller) NewTab() (View, error) {
	return c.do(func() error {
		if err := c.guardReceipt(); err != nil {
			return err
		}
		if !c.session.CreateTab() {
			c.notice = fmt.Sprintf("A maximum of %d tabs can be open", checkout.MaxTabs)
			return nil
		}
		c.payment = nil
		return nil
	})
}

// SwitchTab activates the tab at index
func (c *Controller) SwitchTab(index int) (View, error) {
	return c.do(func() error {
		if err := c.guardReceipt(); err != nil {
			return err
		}
		if index == c.session.ActiveIndex() {
			return nil
		}
		if err := c.session.SwitchActive(index); err != nil {
			return err
		}
		c.payment = nil
		return nil
	})
}

// CloseTab closes the tab at index, asking first when its cart has items
func (c *Controller) CloseTab(index int) (View, error) {
	return c.do(func() error {
		if err := c.guardReceipt(); err != nil {
			return err
		}
		if err := c.session.CloseTab(index, c.confirmer); err != nil {
			return err
		}
		c.payment = nil
		return nil
	})
}

// Scan adds the product whose barcode or id equals code. The loaded
// catalog is searched first, then the Catalog Service
func (c *Controller) Scan(ctx context.Context, code string) (View, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return c.View(), nil
	}

	c.mu.Lock()
	product := c.findByCode(code)
	c.mu.Unlock()

	var lookupErr error
	if product == nil {
		product, lookupErr = c.catalog.LookupProduct(ctx, code)
	}

	return c.do(func() error {
		if err := c.guardReceipt(); err != nil {
			return err
		}
		if lookupErr != nil {
			return lookupErr
		}
		if product == nil {
			return appcatalog.ErrProductNotFound
		}
		if c.findByID(product.ID) == nil {
			c.products = append([]*catalog.Product{product}, c.products...)
		}
		return c.session.Active().AddItem(product)
	})
}

// Add adds one unit of a loaded product to the active tab
func (c *Controller) Add(productID int64) (View, error) {
	return c.do(func() error {
		if err := c.guardReceipt(); err != nil {
			return err
		}
		product := c.findByID(productID)
		if product == nil {
			return appcatalog.ErrProductNotFound
		}
		return c.session.Active().AddItem(product)
	})
}

// Adjust changes the quantity of a cart line by delta
func (c *Controller) Adjust(productID int64, delta int) (View, error) {
	return c.do(func() error {
		if err := c.guardReceipt(); err != nil {
			return err
		}
		c.session.Active().AdjustQuantity(productID, delta)
		return nil
	})
}

// ClearCart empties the active tab after confirmation
func (c *Controller) ClearCart() (View, error) {
	return c.do(func() error {
		if err := c.guardReceipt(); err != nil {
			return err
		}
		if err := c.session.Active().Clear(c.confirmer); err != nil {
			return err
		}
		c.payment = nil
		return nil
	})
}

// QuotePayment opens or updates the payment dialog with the cash typed so far
func (c *Controller) QuotePayment(input string) (View, error) {
	return c.do(func() error {
		if err := c.guardReceipt(); err != nil {
			return err
		}
		if c.session.Active().IsEmpty() {
			c.payment = nil
			return checkout.ErrEmptyCart
		}
		c.payment = &input
		return nil
	})
}

// CancelPayment closes the payment dialog
func (c *Controller) CancelPayment() View {
	v, _ := c.do(func() error {
		c.payment = nil
		return nil
	})
	return v
}

// ConfirmPayment takes the cash for the active tab and issues a receipt.
// Empty input counts as no cash. The cart is emptied only when the
// receipt is dismissed or printed
func (c *Controller) ConfirmPayment(input string) (View, error) {
	return c.do(func() error {
		if err := c.guardReceipt(); err != nil {
			return err
		}
		cash, err := parseTendered(input)
		if err != nil {
			return err
		}
		c.payment = &input

		receipt, err := c.session.ConfirmPayment(cash, c.now())
		if err != nil {
			return err
		}
		c.payment = nil

		c.logger.Info("sale completed",
			zap.String("tab", receipt.TabName),
			zap.Int("items", receipt.ItemCount()),
			zap.String("total", receipt.Total.StringFixed(2)),
			zap.String("change", receipt.Change.StringFixed(2)),
		)
		return nil
	})
}

// DismissReceipt closes the receipt and empties the tab it was issued for
func (c *Controller) DismissReceipt() (View, error) {
	return c.do(func() error {
		_, err := c.session.CompleteReceipt()
		return err
	})
}

// PrintReceipt prints the pending receipt, then behaves like DismissReceipt.
// A failed print keeps the receipt open
func (c *Controller) PrintReceipt(ctx context.Context) (View, error) {
	c.mu.Lock()
	receipt := c.session.PendingReceipt()
	c.mu.Unlock()

	if receipt == nil {
		return c.do(func() error { return checkout.ErrNoReceipt })
	}
	if c.printer == nil {
		return c.do(func() error { return ErrNoPrinter })
	}

	location, printErr := c.printer.PrintReceipt(ctx, receipt)
	return c.do(func() error {
		if printErr != nil {
			return fmt.Errorf("print receipt: %w", printErr)
		}
		if _, err := c.session.CompleteReceipt(); err != nil {
			return err
		}
		c.notice = "Receipt printed: " + location
		return nil
	})
}

// DeleteProduct removes a product from the catalog after confirmation,
// drops it from every cart and reloads the catalog
func (c *Controller) DeleteProduct(ctx context.Context, productID int64) (View, error) {
	c.mu.Lock()
	name := fmt.Sprintf("#%d", productID)
	if p := c.findByID(productID); p != nil {
		name = p.Name
	}
	c.mu.Unlock()

	if c.confirmer == nil || !c.confirmer.Confirm(fmt.Sprintf("Delete product %s?", name)) {
		return c.do(func() error { return checkout.ErrNotConfirmed })
	}

	if err := c.catalog.DeleteProduct(ctx, productID); err != nil {
		return c.do(func() error { return err })
	}

	if c.publisher != nil {
		if err := c.publisher.Publish(ctx, catalog.NewProductDeletedEvent(productID)); err != nil {
			c.logger.Warn("failed to publish product deletion", zap.Error(err))
		}
	}

	products, listErr := c.catalog.ListProducts(ctx)
	return c.do(func() error {
		c.purge(productID)
		if listErr != nil {
			return fmt.Errorf("product deleted, reload failed: %w", listErr)
		}
		c.products = products
		c.notice = fmt.Sprintf("Product %s deleted", name)
		return nil
	})
}

// CanEditCatalog reports whether product add, edit and upload are available
func (c *Controller) CanEditCatalog() bool {
	return c.editor != nil
}

// CreateProduct adds a product to the catalog, uploading form.Upload
// first when set, and reloads the catalog
func (c *Controller) CreateProduct(ctx context.Context, form ProductForm) (View, error) {
	if c.editor == nil {
		return c.do(func() error { return ErrReadOnlyCatalog })
	}
	req, err := form.request(nil)
	if err != nil {
		return c.do(func() error { return err })
	}
	if err := c.uploadFormImage(ctx, form, &req); err != nil {
		return c.do(func() error { return err })
	}

	id, err := c.editor.CreateProduct(ctx, req)
	if err != nil {
		return c.do(func() error { return err })
	}
	c.logger.Info("product created", zap.Int64("product_id", id), zap.String("name", req.Name))
	return c.reload(ctx, fmt.Sprintf("Product %s created (id %d)", req.Name, id))
}

// UpdateProduct changes a loaded product. Fields left nil in form keep
// their current value. Lines already in a cart keep the price they were
// added at
func (c *Controller) UpdateProduct(ctx context.Context, productID int64, form ProductForm) (View, error) {
	if c.editor == nil {
		return c.do(func() error { return ErrReadOnlyCatalog })
	}

	c.mu.Lock()
	current := c.findByID(productID)
	c.mu.Unlock()
	if current == nil {
		return c.do(func() error { return appcatalog.ErrProductNotFound })
	}

	req, err := form.request(current)
	if err != nil {
		return c.do(func() error { return err })
	}
	if err := c.uploadFormImage(ctx, form, &req); err != nil {
		return c.do(func() error { return err })
	}

	if err := c.editor.UpdateProduct(ctx, productID, req); err != nil {
		return c.do(func() error { return err })
	}
	c.logger.Info("product updated", zap.Int64("product_id", productID))
	return c.reload(ctx, fmt.Sprintf("Product %s updated", req.Name))
}

// UploadImage stores an image in the catalog and reports its path, ready
// to be used as a product image
func (c *Controller) UploadImage(ctx context.Context, upload *appcatalog.UploadImageRequest) (View, error) {
	if c.editor == nil {
		return c.do(func() error { return ErrReadOnlyCatalog })
	}
	url, err := c.editor.UploadImage(ctx, upload)
	return c.do(func() error {
		if err != nil {
			return err
		}
		c.notice = "Image uploaded: " + url
		return nil
	})
}

func (c *Controller) uploadFormImage(ctx context.Context, form ProductForm, req *appcatalog.ProductRequest) error {
	if form.Upload == nil {
		return nil
	}
	url, err := c.editor.UploadImage(ctx, form.Upload)
	if err != nil {
		return err
	}
	req.Image = url
	return nil
}

// reload refetches the catalog after a successful edit
func (c *Controller) reload(ctx context.Context, notice string) (View, error) {
	products, err := c.catalog.ListProducts(ctx)
	return c.do(func() error {
		if err != nil {
			return fmt.Errorf("saved, reload failed: %w", err)
		}
		c.products = products
		c.notice = notice
		return nil
	})
}

// Handle purges carts when a product is deleted
func (c *Controller) Handle(ctx context.Context, event shared.DomainEvent) error {
	if event.EventType() != catalog.EventTypeProductDeleted {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purge(event.AggregateID())
	return nil
}

// EventTypes returns the events the controller reacts to
func (c *Controller) EventTypes() []string {
	return []string{catalog.EventTypeProductDeleted}
}

func (c *Controller) do(fn func() error) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.notice = ""
	err := fn()
	if err != nil {
		c.notice = errorNotice(err)
	}
	return c.viewLocked(), err
}

func (c *Controller) viewLocked() View {
	active := c.session.Active()
	visible := c.filter.Apply(c.products)

	v := View{
		Tabs:        buildTabViews(c.session),
		ActiveIndex: c.session.ActiveIndex(),
		CanAddTab:   c.session.CanAddTab(),
		Lines:       buildLineViews(active.Lines()),
		ItemCount:   active.ItemCount(),
		Totals:      buildTotalsView(active.Totals()),
		Products:    buildProductViews(visible, active),
		Categories:  Categories(c.products),
		Filter:      c.filter,
		Notice:      c.notice,
	}
	if c.payment != nil {
		v.Payment = buildPaymentView(*c.payment, checkout.Quote(active.TotalDue(), *c.payment))
	}
	if r := c.session.PendingReceipt(); r != nil {
		v.Receipt = BuildReceiptView(r)
	}
	return v
}

func (c *Controller) guardReceipt() error {
	if c.session.PendingReceipt() != nil {
		return checkout.ErrReceiptPending
	}
	return nil
}

func (c *Controller) purge(productID int64) {
	tabs := c.session.PurgeProduct(productID)
	kept := c.products[:0]
	for _, p := range c.products {
		if p.ID != productID {
			kept = append(kept, p)
		}
	}
	c.products = kept
	if tabs > 0 {
		c.logger.Info("deleted product removed from carts",
			zap.Int64("product_id", productID),
			zap.Int("tabs", tabs),
		)
	}
}

func (c *Controller) findByID(id int64) *catalog.Product {
	for _, p := range c.products {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (c *Controller) findByCode(code string) *catalog.Product {
	for _, p := range c.products {
		if p.MatchesCode(code) {
			return p
		}
	}
	return nil
}

func parseTendered(input string) (decimal.Decimal, error) {
	if strings.TrimSpace(input) == "" {
		return decimal.Zero, nil
	}
	cash, ok := checkout.ParseCash(input)
	if !ok {
		return decimal.Zero, checkout.ErrInvalidCash
	}
	return cash, nil
}

func errorNotice(err error) string {
	if de, ok := shared.AsDomainError(err); ok {
		return de.Message
	}
	return err.Error()
}

var _ shared.EventHandler = (*Controller)(nil)
