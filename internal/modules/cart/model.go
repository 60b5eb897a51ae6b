package cart

import "github.com/hpglow/storefront-backend/internal/modules/catalog"

// LineItem is one (product, optional variation) pairing in a cart. Price is
// the effective unit price captured when the item was first added.
type LineItem struct {
	Product   catalog.Product    `json:"product"`
	Variation *catalog.Variation `json:"variation,omitempty"`
	Quantity  int                `json:"quantity"`
	Price     float64            `json:"price"`
}

// Key identifies a line item; a cart holds at most one item per key.
type Key struct {
	ProductID   string
	VariationID string
}

func (li LineItem) Key() Key { return keyOf(li.Product.ID, li.Variation) }

// Ceiling is the stock limit recorded on the item's product or variation.
func (li LineItem) Ceiling() int { return catalog.StockCeiling(li.Product, li.Variation) }

// LineTotal is price × quantity.
func (li LineItem) LineTotal() float64 { return li.Price * float64(li.Quantity) }

// DisplayName is "Product (Variation)" or just the product name.
func (li LineItem) DisplayName() string {
	if li.Variation != nil {
		return li.Product.Name + " (" + li.Variation.Name + ")"
	}
	return li.Product.Name
}

func keyOf(productID string, v *catalog.Variation) Key {
	k := Key{ProductID: productID}
	if v != nil {
		k.VariationID = v.ID
	}
	return k
}

// Snapshot is the state handed to listeners after each mutation.
type Snapshot struct {
	Items      []LineItem `json:"items"`
	TotalPrice float64    `json:"total_price"`
	TotalItems int        `json:"total_items"`
}

// AddResult reports what an add actually did.
type AddResult struct {
	Index    int    `json:"index"`
	Added    int    `json:"added"`
	Quantity int    `json:"quantity"`
	Partial  bool   `json:"partial"`
	Notice   string `json:"notice,omitempty"`
}

// UpdateResult reports the quantity applied by an update.
type UpdateResult struct {
	Quantity int    `json:"quantity"`
	Removed  bool   `json:"removed"`
	Clamped  bool   `json:"clamped"`
	Notice   string `json:"notice,omitempty"`
}
