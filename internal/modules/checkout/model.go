package checkout

import (
	"strings"

	"github.com/hpglow/storefront-backend/internal/modules/catalog"
	"github.com/hpglow/storefront-backend/internal/modules/pricing"
)

// Step is a stage of the checkout flow.
type Step string

const (
	StepDetails      Step = "details"
	StepPayment      Step = "payment"
	StepConfirmation Step = "confirmation"
)

// validTransitions is the checkout state machine; confirmation is terminal.
var validTransitions = map[Step][]Step{
	StepDetails:      {StepPayment},
	StepPayment:      {StepDetails, StepConfirmation},
	StepConfirmation: {},
}

func canTransition(from, to Step) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Details is the customer and shipping form.
type Details struct {
	FullName string         `json:"full_name"`
	Email    string         `json:"email"`
	Phone    string         `json:"phone"`
	Address  string         `json:"address"`
	City     string         `json:"city"`
	State    string         `json:"state"`
	ZipCode  string         `json:"zip_code"`
	Country  string         `json:"country"`
	Region   pricing.Region `json:"shipping_location"`
}

// Valid reports whether every field is filled and a region is selected.
func (d Details) Valid() bool {
	for _, f := range []string{d.FullName, d.Email, d.Phone, d.Address, d.City, d.State, d.ZipCode, d.Country} {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return d.Region != pricing.RegionUnset
}

// ContactChannel is how the customer wants to send their order message.
type ContactChannel string

const (
	ContactUnset     ContactChannel = ""
	ContactInstagram ContactChannel = "instagram"
	ContactViber     ContactChannel = "viber"
)

// ParseContact accepts "instagram", "viber" or "".
func ParseContact(s string) (ContactChannel, error) {
	switch c := ContactChannel(strings.ToLower(strings.TrimSpace(s))); c {
	case ContactUnset, ContactInstagram, ContactViber:
		return c, nil
	}
	return ContactUnset, ErrInvalidContact
}

// PaymentUpdate changes the payment form; nil fields are left alone.
type PaymentUpdate struct {
	MethodID *string `json:"payment_method_id,omitempty"`
	Contact  *string `json:"contact_method,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// View is the checkout state as shown to the customer.
type View struct {
	Step           Step                    `json:"step"`
	Details        Details                 `json:"details"`
	DetailsValid   bool                    `json:"details_valid"`
	PaymentMethods []catalog.PaymentMethod `json:"payment_methods"`
	PaymentMethod  *catalog.PaymentMethod  `json:"payment_method,omitempty"`
	ProofURL       string                  `json:"payment_proof_url,omitempty"`
	Contact        ContactChannel          `json:"contact_method,omitempty"`
	Notes          string                  `json:"notes,omitempty"`
	Quote          pricing.Breakdown       `json:"quote"`
	Submitting     bool                    `json:"submitting"`
	Uploading      bool                    `json:"uploading"`
}

// Confirmation is what the customer sees once the order is stored.
type Confirmation struct {
	OrderID       string         `json:"order_id"`
	Summary       string         `json:"summary"`
	ProofURL      string         `json:"payment_proof_url"`
	Contact       ContactChannel `json:"contact_method"`
	ContactURL    string         `json:"contact_url"`
	ContactOpened bool           `json:"contact_opened"`
	GrandTotal    float64        `json:"grand_total"`
}
