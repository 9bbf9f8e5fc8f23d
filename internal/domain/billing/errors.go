package billing

import "github.com/projledger/backend/internal/domain/shared"

var (
	ErrNoLines          = shared.NewDomainError("NO_LINES", "Document must have at least one line item")
	ErrInvalidQuantity  = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	ErrInvalidUnitPrice = shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	ErrTooPrecise       = shared.NewDomainError("INVALID_PRECISION", "Quantity and unit price allow at most 4 decimal places")
	ErrInvalidTaxRate   = shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100")
	ErrInvalidStatus    = shared.NewDomainError("INVALID_STATUS", "Status is not allowed for this document")
	ErrInvalidKind      = shared.NewDomainError("INVALID_KIND", "Unknown document kind")
	ErrInvalidAmount    = shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	ErrNotEditable      = shared.NewDomainError("NOT_EDITABLE", "Only draft documents can be edited")
	ErrInvalidNumber    = shared.NewDomainError("INVALID_NUMBER", "Document number is invalid")
	ErrDuplicateNumber  = shared.NewRetryableError("DUPLICATE_NUMBER", "Document number is already in use")
	ErrInvalidSource    = shared.NewDomainError("INVALID_SOURCE", "Source document cannot be converted")
	ErrAlreadyConverted = shared.NewDomainError("ALREADY_CONVERTED", "An invoice or bill has already been created from this order")
)
