package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// Flash sale engine error taxonomy. Handlers map these to HTTP statuses;
// the Order service switches on the wire code derived from them.
var (
	ErrInvalidSlotAlignment       = errors.New("start/end do not align to a sale slot window")
	ErrSlotConflict               = errors.New("another flash sale overlaps this window")
	ErrInsufficientStock          = errors.New("not enough sellable stock to reserve")
	ErrInsufficientFlashSaleStock = errors.New("flash sale stock sold out")
	ErrFlashSaleNotActive         = errors.New("flash sale is not active")
	ErrValidation                 = errors.New("validation failed")
)
