package catalog

import (
	"context"

	"github.com/grocerypos/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindByBarcode finds a product by its barcode
	FindByBarcode(ctx context.Context, barcode string) (*Product, error)

	// FindAll finds all products matching the filter, newest first by default
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Save creates a product (assigning its ID) or updates an existing one.
	// Updating a product that no longer exists returns shared.ErrNotFound
	Save(ctx context.Context, product *Product) error

	// Delete deletes a product, returning shared.ErrNotFound if absent
	Delete(ctx context.Context, id int64) error

	// ExistsByBarcode checks if another product already uses the barcode.
	// excludeID is ignored when zero
	ExistsByBarcode(ctx context.Context, barcode string, excludeID int64) (bool, error)
}
