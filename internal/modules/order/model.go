package order

import (
	"time"

	"github.com/google/uuid"
)

// Status is the fulfilment state of an order. The storefront only ever
// creates orders; staff move them on from "new" elsewhere.
type Status string

const StatusNew Status = "new"

// PaymentStatus tracks verification of the customer's proof of payment.
type PaymentStatus string

const PaymentPending PaymentStatus = "pending"

// Order is a submitted checkout as stored in the orders table.
type Order struct {
	ID               uuid.UUID     `json:"id"`
	CustomerName     string        `json:"customer_name"`
	CustomerEmail    string        `json:"customer_email"`
	CustomerPhone    string        `json:"customer_phone"`
	ShippingAddress  string        `json:"shipping_address"`
	ShippingCity     string        `json:"shipping_city"`
	ShippingState    string        `json:"shipping_state"`
	ShippingZipCode  string        `json:"shipping_zip_code"`
	ShippingCountry  string        `json:"shipping_country"`
	ShippingLocation string        `json:"shipping_location"`
	Items            []Item        `json:"order_items"`
	TotalPrice       float64       `json:"total_price"` // product subtotal, shipping excluded
	ShippingFee      float64       `json:"shipping_fee"`
	PaymentMethodID  *string       `json:"payment_method_id,omitempty"`
	PaymentMethod    *string       `json:"payment_method_name,omitempty"`
	PaymentProofURL  string        `json:"payment_proof_url"`
	ContactMethod    string        `json:"contact_method"`
	Notes            *string       `json:"notes,omitempty"`
	OrderStatus      Status        `json:"order_status"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	CreatedAt        time.Time     `json:"created_at"`
}

// Item is a snapshot of one cart line at submission time.
type Item struct {
	ProductID        string  `json:"product_id"`
	ProductName      string  `json:"product_name"`
	VariationID      *string `json:"variation_id"`
	VariationName    *string `json:"variation_name"`
	Quantity         int     `json:"quantity"`
	Price            float64 `json:"price"`
	Total            float64 `json:"total"`
	PurityPercentage float64 `json:"purity_percentage"`
}

// GrandTotal is the amount the customer pays.
func (o *Order) GrandTotal() float64 { return o.TotalPrice + o.ShippingFee }

// Summary is the row shape of the recent-orders feed.
type Summary struct {
	ID           uuid.UUID `json:"id"`
	CustomerName string    `json:"customer_name"`
	TotalPrice   float64   `json:"total_price"`
	Items        []Item    `json:"order_items"`
	CreatedAt    time.Time `json:"created_at"`
}
