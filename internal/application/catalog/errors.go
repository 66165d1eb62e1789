package catalog

import "github.com/grocerypos/backend/internal/domain/shared"

// Catalog service errors. Messages are shown to the cashier as-is
var (
	ErrProductNotFound  = shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	ErrDuplicateBarcode = shared.NewDomainError("DUPLICATE_BARCODE", "Database error, perhaps duplicate barcode?")
	ErrMissingFields    = shared.NewDomainError("MISSING_FIELDS", "Missing required fields")
	ErrNoFileUploaded   = shared.NewDomainError("NO_FILE", "No file uploaded")
	ErrInvalidImageType = shared.NewDomainError("INVALID_FILE_TYPE", "Only image files are allowed")
	ErrImageTooLarge    = shared.NewDomainError("FILE_TOO_LARGE", "File too large")
)
