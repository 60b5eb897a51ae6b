package catalog

import "context"

// Repository defines read access to the product catalog.
type Repository interface {
	// List returns products with their variations, newest first.
	List(ctx context.Context, availableOnly bool) ([]*Product, error)

	// GetByID returns a single product with its variations.
	GetByID(ctx context.Context, id string) (*Product, error)

	// ListPaymentMethods returns payment accounts ordered by sort_order.
	ListPaymentMethods(ctx context.Context, activeOnly bool) ([]*PaymentMethod, error)
}
