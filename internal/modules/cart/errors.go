package cart

import "errors"

var (
	// ErrOutOfStock is returned when the product or variation has no stock.
	ErrOutOfStock = errors.New("out of stock")
	// ErrMaxQuantityReached is returned when the cart already holds the
	// whole stock of an item.
	ErrMaxQuantityReached = errors.New("maximum available quantity already in cart")
	// ErrItemNotFound is returned when an index does not address a line item.
	ErrItemNotFound = errors.New("cart item not found")
	// ErrInvalidRequest is returned for external add requests missing the
	// fields needed to build a line item.
	ErrInvalidRequest = errors.New("invalid add-to-cart request")
)
