package pricing

import (
	"strings"

	"github.com/hpglow/storefront-backend/internal/modules/cart"
)

// FeeTable holds the flat shipping fees in whole pesos.
type FeeTable struct {
	NCR             float64 `json:"ncr"`
	Luzon           float64 `json:"luzon"`
	VisayasMindanao float64 `json:"visayas_mindanao"`
	// Box replaces the region fee once an order ships BoxThreshold or more
	// non-syringe units.
	Box          float64 `json:"box"`
	BoxThreshold int     `json:"box_threshold"`
}

// DefaultFees is the current courier rate card.
var DefaultFees = FeeTable{
	NCR:             160,
	Luzon:           165,
	VisayasMindanao: 190,
	Box:             220,
	BoxThreshold:    3,
}

// RegionFee is the flat fee of a zone, 0 when no zone is selected.
func (t FeeTable) RegionFee(r Region) float64 {
	switch r {
	case RegionNCR:
		return t.NCR
	case RegionLuzon:
		return t.Luzon
	case RegionVisayasMindanao:
		return t.VisayasMindanao
	}
	return 0
}

// Subtotal is Σ price × quantity.
func Subtotal(items []cart.LineItem) float64 {
	var total float64
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}

// Units is Σ quantity.
func Units(items []cart.LineItem) int {
	var n int
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// NonSyringeUnits counts units whose product is not a syringe. Syringes ship
// in the same parcel and never push an order into the box tier.
func NonSyringeUnits(items []cart.LineItem) int {
	var n int
	for _, it := range items {
		if IsSyringe(it.Product.Name) {
			continue
		}
		n += it.Quantity
	}
	return n
}

// IsSyringe reports whether a product name denotes a syringe.
func IsSyringe(name string) bool {
	return strings.Contains(strings.ToLower(name), "syringe")
}

// ShippingFee applies the box tier when the order holds at least
// BoxThreshold non-syringe units, whatever the region; otherwise the
// region's flat fee.
func (t FeeTable) ShippingFee(items []cart.LineItem, r Region) float64 {
	if t.BoxThreshold > 0 && NonSyringeUnits(items) >= t.BoxThreshold {
		return t.Box
	}
	return t.RegionFee(r)
}

// Breakdown is a priced cart.
type Breakdown struct {
	Subtotal        float64 `json:"subtotal"`
	ShippingFee     float64 `json:"shipping_fee"`
	Total           float64 `json:"total"`
	Units           int     `json:"units"`
	NonSyringeUnits int     `json:"non_syringe_units"`
	BoxTier         bool    `json:"box_tier"`
	Region          Region  `json:"region,omitempty"`
}

// Quote prices items for delivery to r.
func (t FeeTable) Quote(items []cart.LineItem, r Region) Breakdown {
	b := Breakdown{
		Subtotal:        Subtotal(items),
		Units:           Units(items),
		NonSyringeUnits: NonSyringeUnits(items),
		Region:          r,
	}
	b.BoxTier = t.BoxThreshold > 0 && b.NonSyringeUnits >= t.BoxThreshold
	b.ShippingFee = t.ShippingFee(items, r)
	b.Total = b.Subtotal + b.ShippingFee
	return b
}

// ShippingFee prices shipping with DefaultFees.
func ShippingFee(items []cart.LineItem, r Region) float64 {
	return DefaultFees.ShippingFee(items, r)
}

// Quote prices items with DefaultFees.
func Quote(items []cart.LineItem, r Region) Breakdown {
	return DefaultFees.Quote(items, r)
}
