package catalog

import (
	"encoding/json"
	"strings"

	"github.com/grocerypos/backend/internal/domain/catalog"
	"github.com/grocerypos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductRequest is the body of both create and update calls
type ProductRequest struct {
	Barcode  string           `json:"barcode" binding:"max=50"`
	Name     string           `json:"name" binding:"required,max=200"`
	Price    *decimal.Decimal `json:"price" binding:"required"`
	Category string           `json:"category" binding:"required,max=100"`
	Image    string           `json:"image" binding:"max=500"`
}

// ProductListFilter narrows the product list
type ProductListFilter struct {
	Category string `form:"category"`
	Search   string `form:"search"`
}

// ToFilter converts the request filter into a repository filter
func (f ProductListFilter) ToFilter() shared.Filter {
	filter := shared.DefaultFilter()
	filter.Search = strings.TrimSpace(f.Search)
	if c := strings.TrimSpace(f.Category); c != "" && c != AllCategories {
		filter = filter.WithFilter("category", c)
	}
	return filter
}

// AllCategories is the pseudo-category that disables category filtering
const AllCategories = "ทั้งหมด"

// ProductResponse represents a product in API responses.
// Price is emitted as a JSON number
type ProductResponse struct {
	ID       int64       `json:"id"`
	Barcode  *string     `json:"barcode"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Category string      `json:"category"`
	Image    *string     `json:"image"`
}

// PriceDecimal parses the response price back into a decimal
func (r ProductResponse) PriceDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(r.Price.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ToDomain rebuilds a catalog product from an API response
func (r ProductResponse) ToDomain() (*catalog.Product, error) {
	p, err := catalog.NewProduct(r.Name, r.PriceDecimal(), r.Category)
	if err != nil {
		return nil, err
	}
	p.ID = r.ID
	if r.Barcode != nil {
		if err := p.SetBarcode(*r.Barcode); err != nil {
			return nil, err
		}
	}
	if r.Image != nil {
		if err := p.SetImage(*r.Image); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// CreateProductResponse is returned after a product is created
type CreateProductResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// MessageResponse carries a human readable confirmation
type MessageResponse struct {
	Message string `json:"message"`
}

// UploadImageResponse is returned after an image upload
type UploadImageResponse struct {
	URL string `json:"url"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:       p.ID,
		Barcode:  p.Barcode,
		Name:     p.Name,
		Price:    json.Number(p.Price.String()),
		Category: p.Category,
		Image:    p.Image,
	}
}

// ToProductResponses converts a slice of domain Products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}
