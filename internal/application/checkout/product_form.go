package checkout

import (
	"strings"

	appcatalog "github.com/grocerypos/backend/internal/application/catalog"
	"github.com/grocerypos/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductForm is the add/edit product form. A nil field keeps the
// product's current value on edit and is empty on add
type ProductForm struct {
	Name     *string
	Price    *string
	Category *string
	Barcode  *string
	Image    *string
	// Upload, when set, is stored first and replaces Image
	Upload *appcatalog.UploadImageRequest
}

// request merges the form over current, which is nil for a new product
func (f ProductForm) request(current *catalog.Product) (appcatalog.ProductRequest, error) {
	var name, price, category, barcode, image string
	if current != nil {
		name = current.Name
		price = current.Price.String()
		category = current.Category
		barcode = current.BarcodeValue()
		image = current.ImageValue()
	}
	name = pick(f.Name, name)
	price = pick(f.Price, price)
	category = pick(f.Category, category)
	barcode = pick(f.Barcode, barcode)
	image = pick(f.Image, image)

	if name == "" || price == "" || category == "" {
		return appcatalog.ProductRequest{}, appcatalog.ErrMissingFields
	}
	amount, err := parsePrice(price)
	if err != nil {
		return appcatalog.ProductRequest{}, err
	}

	return appcatalog.ProductRequest{
		Barcode:  barcode,
		Name:     name,
		Price:    &amount,
		Category: category,
		Image:    image,
	}, nil
}

func pick(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return strings.TrimSpace(*v)
}

// parsePrice accepts "1,250.50" and "฿25"
func parsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "฿"))
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, ErrInvalidPrice
	}
	return d, nil
}
