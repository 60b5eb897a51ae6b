package checkout

import "errors"

var (
	ErrDetailsIncomplete  = errors.New("please fill in every shipping detail and select a shipping location")
	ErrWrongStep          = errors.New("action not allowed at this checkout step")
	ErrProofMissing       = errors.New("please upload proof of payment screenshot before proceeding")
	ErrContactMissing     = errors.New("please select your preferred contact method (Instagram or Viber)")
	ErrRegionMissing      = errors.New("please select your shipping location")
	ErrEmptyCart          = errors.New("your cart is empty")
	ErrSubmissionInFlight = errors.New("your order is already being submitted")
	ErrUploadInFlight     = errors.New("a proof of payment upload is already in progress")
	ErrUnknownPayment     = errors.New("unknown payment method")
	ErrInvalidContact     = errors.New("contact method must be instagram or viber")
)
