package cart

import (
	"fmt"
	"strings"
	"time"

	"github.com/hpglow/storefront-backend/internal/modules/catalog"
)

// PartialProduct is a product description sent by a producer outside the
// menu (an article page recommending a product, for instance). Only ID,
// Name and BasePrice are expected; every other field may be omitted.
type PartialProduct struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	BasePrice         float64    `json:"base_price"`
	Description       *string    `json:"description,omitempty"`
	Category          *string    `json:"category,omitempty"`
	DiscountPrice     *float64   `json:"discount_price,omitempty"`
	DiscountStartDate *time.Time `json:"discount_start_date,omitempty"`
	DiscountEndDate   *time.Time `json:"discount_end_date,omitempty"`
	DiscountActive    *bool      `json:"discount_active,omitempty"`
	PurityPercentage  *float64   `json:"purity_percentage,omitempty"`
	MolecularWeight   *string    `json:"molecular_weight,omitempty"`
	CASNumber         *string    `json:"cas_number,omitempty"`
	Sequence          *string    `json:"sequence,omitempty"`
	StorageConditions *string    `json:"storage_conditions,omitempty"`
	Inclusions        []string   `json:"inclusions,omitempty"`
	StockQuantity     *int       `json:"stock_quantity,omitempty"`
	Available         *bool      `json:"available,omitempty"`
	Featured          *bool      `json:"featured,omitempty"`
	ImageURL          *string    `json:"image_url,omitempty"`
	SafetySheetURL    *string    `json:"safety_sheet_url,omitempty"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

// PartialVariation is the variation counterpart of PartialProduct.
type PartialVariation struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Price          float64    `json:"price"`
	QuantityMG     *float64   `json:"quantity_mg,omitempty"`
	DiscountPrice  *float64   `json:"discount_price,omitempty"`
	DiscountActive *bool      `json:"discount_active,omitempty"`
	StockQuantity  *int       `json:"stock_quantity,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
}

// AddRequest asks the cart to add a product on behalf of another component.
// A nil Quantity means one unit; a nil Price means the catalog's effective
// price for the normalised product.
type AddRequest struct {
	Product   PartialProduct    `json:"product"`
	Variation *PartialVariation `json:"variation,omitempty"`
	Quantity  *int              `json:"quantity,omitempty"`
	Price     *float64          `json:"price,omitempty"`
}

// Defaults fills the fields an AddRequest leaves out.
//
//	field                 default
//	stock_quantity        UnknownStock (999 unless configured)
//	purity_percentage     0
//	category, description ""
//	storage_conditions    ""
//	available             true
//	featured              false
//	discount_active       false
//	optional references   nil (molecular weight, CAS, sequence, ...)
//	created_at/updated_at now
//	quantity              1
type Defaults struct {
	UnknownStock int
	Purity       float64
	Available    bool
	Featured     bool
	Quantity     int
}

// StandardDefaults is the default table used when none is configured.
var StandardDefaults = Defaults{
	UnknownStock: 999,
	Purity:       0,
	Available:    true,
	Featured:     false,
	Quantity:     1,
}

// Normalized is an AddRequest with every field resolved.
type Normalized struct {
	Product   catalog.Product
	Variation *catalog.Variation
	Quantity  int
	Price     float64
}

// Normalize resolves an AddRequest against the default table.
func Normalize(req AddRequest, d Defaults, now time.Time) (Normalized, error) {
	pp := req.Product
	if strings.TrimSpace(pp.ID) == "" {
		return Normalized{}, fmt.Errorf("%w: product id is required", ErrInvalidRequest)
	}
	if req.Variation != nil && strings.TrimSpace(req.Variation.ID) == "" {
		return Normalized{}, fmt.Errorf("%w: variation id is required", ErrInvalidRequest)
	}

	p := catalog.Product{
		ID:                pp.ID,
		Name:              pp.Name,
		BasePrice:         pp.BasePrice,
		Description:       strOr(pp.Description, ""),
		Category:          strOr(pp.Category, ""),
		DiscountPrice:     pp.DiscountPrice,
		DiscountStartDate: pp.DiscountStartDate,
		DiscountEndDate:   pp.DiscountEndDate,
		DiscountActive:    boolOr(pp.DiscountActive, false),
		PurityPercentage:  d.Purity,
		MolecularWeight:   pp.MolecularWeight,
		CASNumber:         pp.CASNumber,
		Sequence:          pp.Sequence,
		StorageConditions: strOr(pp.StorageConditions, ""),
		Inclusions:        pp.Inclusions,
		StockQuantity:     intOr(pp.StockQuantity, d.UnknownStock),
		Available:         boolOr(pp.Available, d.Available),
		Featured:          boolOr(pp.Featured, d.Featured),
		ImageURL:          pp.ImageURL,
		SafetySheetURL:    pp.SafetySheetURL,
		CreatedAt:         timeOr(pp.CreatedAt, now),
		UpdatedAt:         timeOr(pp.UpdatedAt, now),
	}
	if pp.PurityPercentage != nil {
		p.PurityPercentage = *pp.PurityPercentage
	}

	var v *catalog.Variation
	if pv := req.Variation; pv != nil {
		v = &catalog.Variation{
			ID:             pv.ID,
			ProductID:      p.ID,
			Name:           pv.Name,
			Price:          pv.Price,
			DiscountPrice:  pv.DiscountPrice,
			DiscountActive: boolOr(pv.DiscountActive, false),
			StockQuantity:  intOr(pv.StockQuantity, d.UnknownStock),
			CreatedAt:      timeOr(pv.CreatedAt, now),
		}
		if pv.QuantityMG != nil {
			v.QuantityMG = *pv.QuantityMG
		}
	}

	qty := intOr(req.Quantity, d.Quantity)
	if qty < 1 {
		return Normalized{}, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidRequest)
	}

	price := catalog.EffectivePrice(p, v)
	if req.Price != nil {
		price = *req.Price
	}
	if price < 0 {
		return Normalized{}, fmt.Errorf("%w: price cannot be negative", ErrInvalidRequest)
	}

	return Normalized{Product: p, Variation: v, Quantity: qty, Price: price}, nil
}

func strOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func timeOr(v *time.Time, def time.Time) time.Time {
	if v == nil {
		return def
	}
	return *v
}
