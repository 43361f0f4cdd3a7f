package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// Billing validation errors. All are recoverable and surfaced to the caller
// with a human-readable message; none are fatal to the process.
var (
	ErrorInvalidAmount     = errors.New("payment amount must be greater than zero")
	ErrorExceedsBalance    = errors.New("payment amount exceeds remaining balance")
	ErrorExceedsReturnable = errors.New("return quantity exceeds returnable quantity")
	ErrorMissingReason     = errors.New("return reason is required")
	ErrorIneligible        = errors.New("invoice must be fully paid or fully unpaid to accept returns")
	ErrorNotReturnable     = errors.New("miscellaneous items cannot be returned")
	ErrorParse             = errors.New("invalid quantity format")
)
