package checkout

import "github.com/grocerypos/backend/internal/domain/shared"

// Checkout domain errors
var (
	ErrTabOutOfRange    = shared.NewDomainError("INVALID_TAB", "Tab does not exist")
	ErrLastTab          = shared.NewDomainError("LAST_TAB", "The last remaining tab cannot be closed")
	ErrNotConfirmed     = shared.NewDomainError("NOT_CONFIRMED", "Operation cancelled")
	ErrEmptyCart        = shared.NewDomainError("EMPTY_CART", "Cart is empty")
	ErrInvalidCash      = shared.NewDomainError("INVALID_CASH", "Cash amount is not a valid number")
	ErrInsufficientCash = shared.NewDomainError("INSUFFICIENT_CASH", "Cash received is less than the amount due")
	ErrReceiptPending   = shared.NewDomainError("RECEIPT_PENDING", "Finish the open receipt first")
	ErrNoReceipt        = shared.NewDomainError("NO_RECEIPT", "There is no open receipt")
	ErrNilProduct       = shared.NewDomainError("INVALID_PRODUCT", "Product is required")
)
