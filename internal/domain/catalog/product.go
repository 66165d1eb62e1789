package catalog

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/grocerypos/backend/internal/domain/shared"
	"github.com/grocerypos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

const (
	maxNameLength     = 200
	maxCategoryLength = 100
	maxBarcodeLength  = 50
	maxImageLength    = 500
)

// Product represents a sellable item in the store catalog.
// It is the aggregate root for product-related operations
type Product struct {
	shared.BaseAggregateRoot
	Barcode  *string
	Name     string
	Price    decimal.Decimal
	Category string
	Image    *string
}

// NewProduct creates a new, unsaved product
func NewProduct(name string, price decimal.Decimal, category string) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	if err := validateCategory(category); err != nil {
		return nil, err
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Price:             price,
		Category:          strings.TrimSpace(category),
	}, nil
}

// Update replaces every editable field of the product
func (p *Product) Update(name string, price decimal.Decimal, category, barcode, image string) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if err := validatePrice(price); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}
	if err := validateBarcode(barcode); err != nil {
		return err
	}
	if err := validateImage(image); err != nil {
		return err
	}

	_ = p.SetBarcode(barcode)
	_ = p.SetImage(image)
	p.Name = strings.TrimSpace(name)
	p.Price = price
	p.Category = strings.TrimSpace(category)
	p.UpdatedAt = time.Now()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetBarcode sets the product barcode. An empty barcode clears it
func (p *Product) SetBarcode(barcode string) error {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		p.Barcode = nil
		return nil
	}
	if err := validateBarcode(barcode); err != nil {
		return err
	}

	p.Barcode = &barcode
	p.UpdatedAt = time.Now()
	return nil
}

// SetImage sets the image URL. An empty value clears it
func (p *Product) SetImage(image string) error {
	image = strings.TrimSpace(image)
	if image == "" {
		p.Image = nil
		return nil
	}
	if err := validateImage(image); err != nil {
		return err
	}

	p.Image = &image
	p.UpdatedAt = time.Now()
	return nil
}

// RecordCreated raises the created event once the store has assigned an ID
func (p *Product) RecordCreated() {
	p.AddDomainEvent(NewProductCreatedEvent(p))
}

// MarkDeleted raises the deleted event
func (p *Product) MarkDeleted() {
	p.AddDomainEvent(NewProductDeletedEvent(p.ID))
}

// HasBarcode returns true if a barcode is assigned
func (p *Product) HasBarcode() bool {
	return p.Barcode != nil && *p.Barcode != ""
}

// BarcodeValue returns the barcode or an empty string
func (p *Product) BarcodeValue() string {
	if p.Barcode == nil {
		return ""
	}
	return *p.Barcode
}

// ImageValue returns the image URL or an empty string
func (p *Product) ImageValue() string {
	if p.Image == nil {
		return ""
	}
	return *p.Image
}

// MatchesCode reports whether a scanned code identifies this product,
// either by barcode or by its numeric id
func (p *Product) MatchesCode(code string) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	if p.HasBarcode() && *p.Barcode == code {
		return true
	}
	return strconv.FormatInt(p.ID, 10) == code
}

// PriceMoney returns the price as Money in the default currency
func (p *Product) PriceMoney() valueobject.Money {
	return valueobject.NewMoneyTHB(p.Price)
}

// validateProductName validates the product name
func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return nil
}

func validateCategory(category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return shared.NewDomainError("INVALID_CATEGORY", "Category cannot be empty")
	}
	if utf8.RuneCountInString(category) > maxCategoryLength {
		return shared.NewDomainError("INVALID_CATEGORY", "Category cannot exceed 100 characters")
	}
	return nil
}

func validateBarcode(barcode string) error {
	if utf8.RuneCountInString(strings.TrimSpace(barcode)) > maxBarcodeLength {
		return shared.NewDomainError("INVALID_BARCODE", "Barcode cannot exceed 50 characters")
	}
	return nil
}

func validateImage(image string) error {
	if utf8.RuneCountInString(strings.TrimSpace(image)) > maxImageLength {
		return shared.NewDomainError("INVALID_IMAGE", "Image URL cannot exceed 500 characters")
	}
	return nil
}
