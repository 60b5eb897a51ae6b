package catalog

import "time"

// Product is a catalog entry as read from the store's product table.
// The cart treats it as immutable for the life of a session.
type Product struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Description       string      `json:"description"`
	Category          string      `json:"category"`
	BasePrice         float64     `json:"base_price"`
	DiscountPrice     *float64    `json:"discount_price,omitempty"`
	DiscountStartDate *time.Time  `json:"discount_start_date,omitempty"`
	DiscountEndDate   *time.Time  `json:"discount_end_date,omitempty"`
	DiscountActive    bool        `json:"discount_active"`
	PurityPercentage  float64     `json:"purity_percentage"`
	MolecularWeight   *string     `json:"molecular_weight,omitempty"`
	CASNumber         *string     `json:"cas_number,omitempty"`
	Sequence          *string     `json:"sequence,omitempty"`
	StorageConditions string      `json:"storage_conditions"`
	Inclusions        []string    `json:"inclusions,omitempty"`
	StockQuantity     int         `json:"stock_quantity"`
	Available         bool        `json:"available"`
	Featured          bool        `json:"featured"`
	ImageURL          *string     `json:"image_url,omitempty"`
	SafetySheetURL    *string     `json:"safety_sheet_url,omitempty"`
	Variations        []Variation `json:"variations,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// Variation is a size or strength option of a product with its own price
// and stock.
type Variation struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"product_id"`
	Name           string    `json:"name"`
	QuantityMG     float64   `json:"quantity_mg"`
	Price          float64   `json:"price"`
	DiscountPrice  *float64  `json:"discount_price,omitempty"`
	DiscountActive bool      `json:"discount_active"`
	StockQuantity  int       `json:"stock_quantity"`
	CreatedAt      time.Time `json:"created_at"`
}

// PaymentMethod is a bank or e-wallet account customers pay into before
// uploading proof of payment.
type PaymentMethod struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	AccountNumber string  `json:"account_number"`
	AccountName   string  `json:"account_name"`
	QRCodeURL     *string `json:"qr_code_url,omitempty"`
	Active        bool    `json:"active"`
	SortOrder     int     `json:"sort_order"`
}

// Clone returns a deep copy of p; the copy shares no memory with p.
func (p Product) Clone() Product {
	c := p
	c.DiscountPrice = clonePtr(p.DiscountPrice)
	c.DiscountStartDate = clonePtr(p.DiscountStartDate)
	c.DiscountEndDate = clonePtr(p.DiscountEndDate)
	c.MolecularWeight = clonePtr(p.MolecularWeight)
	c.CASNumber = clonePtr(p.CASNumber)
	c.Sequence = clonePtr(p.Sequence)
	c.ImageURL = clonePtr(p.ImageURL)
	c.SafetySheetURL = clonePtr(p.SafetySheetURL)
	if p.Inclusions != nil {
		c.Inclusions = append([]string(nil), p.Inclusions...)
	}
	if p.Variations != nil {
		c.Variations = make([]Variation, len(p.Variations))
		for i := range p.Variations {
			c.Variations[i] = *p.Variations[i].Clone()
		}
	}
	return c
}

// Clone returns a deep copy of v, or nil for a nil variation.
func (v *Variation) Clone() *Variation {
	if v == nil {
		return nil
	}
	c := *v
	c.DiscountPrice = clonePtr(v.DiscountPrice)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// EffectivePrice is the unit price a customer pays right now: the discount
// price when the discount flag is on and a discount price is set, else the
// regular price. A non-nil variation takes precedence over the product.
func EffectivePrice(p Product, v *Variation) float64 {
	if v != nil {
		if v.DiscountActive && v.DiscountPrice != nil && *v.DiscountPrice > 0 {
			return *v.DiscountPrice
		}
		return v.Price
	}
	if p.DiscountActive && p.DiscountPrice != nil && *p.DiscountPrice > 0 {
		return *p.DiscountPrice
	}
	return p.BasePrice
}

// StockCeiling is the most units of a product (or of one of its
// variations) a single cart may hold.
func StockCeiling(p Product, v *Variation) int {
	if v != nil {
		return v.StockQuantity
	}
	return p.StockQuantity
}
