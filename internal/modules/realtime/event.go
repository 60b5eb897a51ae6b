package realtime

import (
	"context"
	"time"

	"github.com/hpglow/storefront-backend/internal/modules/order"
)

// EventOrdersRefresh tells dashboards to reload their order figures.
const EventOrdersRefresh = "orders.refresh"

// Event is the message pushed to dashboard clients.
type Event struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
}

// OrderInserted is the broker payload announcing a new order.
type OrderInserted struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customer_name"`
	TotalPrice   float64   `json:"total_price"`
	ShippingFee  float64   `json:"shipping_fee"`
	Units        int       `json:"units"`
	CreatedAt    time.Time `json:"created_at"`
}

func orderInserted(o *order.Order) OrderInserted {
	units := 0
	for _, it := range o.Items {
		units += it.Quantity
	}
	return OrderInserted{
		ID:           o.ID.String(),
		CustomerName: o.CustomerName,
		TotalPrice:   o.TotalPrice,
		ShippingFee:  o.ShippingFee,
		Units:        units,
		CreatedAt:    o.CreatedAt,
	}
}

// Fanout forwards each inserted order to every notifier in turn.
type Fanout []order.Notifier

func (f Fanout) OrderInserted(ctx context.Context, o *order.Order) {
	for _, n := range f {
		n.OrderInserted(ctx, o)
	}
}
