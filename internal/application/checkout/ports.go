package checkout

import (
	"context"

	appcatalog "github.com/grocerypos/backend/internal/application/catalog"
	"github.com/grocerypos/backend/internal/domain/catalog"
	"github.com/grocerypos/backend/internal/domain/checkout"
)

// CatalogGateway is the register's view of the Catalog Service.
// LookupProduct and DeleteProduct return appcatalog.ErrProductNotFound
// for unknown products
type CatalogGateway interface {
	ListProducts(ctx context.Context) ([]*catalog.Product, error)
	LookupProduct(ctx context.Context, code string) (*catalog.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// CatalogEditor is implemented by gateways that can also maintain the
// inventory. Errors carry the catalog's own message, such as
// appcatalog.ErrDuplicateBarcode
type CatalogEditor interface {
	CreateProduct(ctx context.Context, req appcatalog.ProductRequest) (int64, error)
	UpdateProduct(ctx context.Context, id int64, req appcatalog.ProductRequest) error
	// UploadImage stores a product image and returns its public path
	UploadImage(ctx context.Context, req *appcatalog.UploadImageRequest) (string, error)
}

// ReceiptPrinter renders a receipt and returns where it was written
type ReceiptPrinter interface {
	PrintReceipt(ctx context.Context, receipt *checkout.Receipt) (string, error)
}
