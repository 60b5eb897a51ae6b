package order

import "context"

// Repository defines data access for orders.
type Repository interface {
	// Insert stores a new order and fills in its ID and CreatedAt.
	Insert(ctx context.Context, o *Order) error

	// GetByID retrieves one order.
	GetByID(ctx context.Context, id string) (*Order, error)

	// ListRecent returns the newest orders first.
	ListRecent(ctx context.Context, limit int) ([]Summary, error)
}
