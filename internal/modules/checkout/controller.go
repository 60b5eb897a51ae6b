package checkout

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hpglow/storefront-backend/internal/modules/cart"
	"github.com/hpglow/storefront-backend/internal/modules/catalog"
	"github.com/hpglow/storefront-backend/internal/modules/order"
	"github.com/hpglow/storefront-backend/internal/modules/pricing"
	"github.com/hpglow/storefront-backend/internal/modules/upload"
)

// Cart is the part of the cart manager checkout reads and clears.
type Cart interface {
	Items() []cart.LineItem
	ClearCart(ctx context.Context)
}

// OrderPlacer stores a submitted order.
type OrderPlacer interface {
	Place(ctx context.Context, o *order.Order) (*order.Order, error)
}

// PaymentMethods lists the accounts customers can pay into.
type PaymentMethods interface {
	ListPaymentMethods(ctx context.Context) ([]*catalog.PaymentMethod, error)
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Cart     Cart
	Orders   OrderPlacer
	Methods  PaymentMethods
	Uploads  upload.Uploader
	Launcher Launcher
	Contacts Contacts
	Fees     pricing.FeeTable
	Logger   *zap.Logger
	Now      func() time.Time
}

// Controller drives one customer's checkout: details, then payment, then
// confirmation. Order submission and proof upload are the only calls that
// block on I/O; they run without holding the lock and are guarded against
// concurrent repeats.
type Controller struct {
	mu sync.Mutex

	step         Step
	details      Details
	methods      []catalog.PaymentMethod
	methodID     string
	proofURL     string
	contact      ContactChannel
	notes        string
	submitting   bool
	uploading    bool
	confirmation *Confirmation

	deps Deps
}

// New starts a checkout at the details step.
func New(deps Deps) *Controller {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Fees == (pricing.FeeTable{}) {
		deps.Fees = pricing.DefaultFees
	}
	if deps.Contacts == (Contacts{}) {
		deps.Contacts = DefaultContacts
	}
	if deps.Launcher == nil {
		deps.Launcher = HandoffLauncher{}
	}
	return &Controller{step: StepDetails, deps: deps}
}

// View returns the current state with a fresh price quote.
func (c *Controller) View() View {
	items := c.deps.Cart.Items()
	c.mu.Lock()
	defer c.mu.Unlock()
	v := View{
		Step:           c.step,
		Details:        c.details,
		DetailsValid:   c.details.Valid(),
		PaymentMethods: append([]catalog.PaymentMethod{}, c.methods...),
		ProofURL:       c.proofURL,
		Contact:        c.contact,
		Notes:          c.notes,
		Quote:          c.deps.Fees.Quote(items, c.details.Region),
		Submitting:     c.submitting,
		Uploading:      c.uploading,
	}
	v.PaymentMethod = c.selectedMethodLocked()
	return v
}

// Step is the current checkout step.
func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// UpdateDetails replaces the details form. Incomplete forms are accepted;
// completeness is checked when moving on.
func (c *Controller) UpdateDetails(d Details) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepDetails {
		return fmt.Errorf("%w: details can only be edited at the %s step", ErrWrongStep, StepDetails)
	}
	c.details = d
	return nil
}

// ProceedToPayment moves to the payment step once the details are complete
// and loads the payment methods, selecting the first by default.
func (c *Controller) ProceedToPayment(ctx context.Context) error {
	c.mu.Lock()
	if err := c.checkTransitionLocked(StepPayment); err != nil {
		c.mu.Unlock()
		return err
	}
	if !c.details.Valid() {
		c.mu.Unlock()
		return ErrDetailsIncomplete
	}
	needMethods := c.methods == nil
	c.mu.Unlock()

	var methods []catalog.PaymentMethod
	if needMethods && c.deps.Methods != nil {
		loaded, err := c.deps.Methods.ListPaymentMethods(ctx)
		if err != nil {
			c.deps.Logger.Warn("load payment methods failed", zap.Error(err))
		}
		for _, m := range loaded {
			methods = append(methods, *m)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkTransitionLocked(StepPayment); err != nil {
		return err
	}
	if needMethods && methods != nil {
		c.methods = methods
		if c.methodID == "" && len(methods) > 0 {
			c.methodID = methods[0].ID
		}
	}
	c.step = StepPayment
	return nil
}

// BackToDetails returns to the details step; payment choices are kept.
func (c *Controller) BackToDetails() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkTransitionLocked(StepDetails); err != nil {
		return err
	}
	c.step = StepDetails
	return nil
}

// UpdatePayment changes the payment method, contact channel or notes.
func (c *Controller) UpdatePayment(u PaymentUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requirePaymentLocked(); err != nil {
		return err
	}

	contact := c.contact
	if u.Contact != nil {
		parsed, err := ParseContact(*u.Contact)
		if err != nil {
			return err
		}
		contact = parsed
	}
	methodID := c.methodID
	if u.MethodID != nil {
		if *u.MethodID != "" && !c.hasMethodLocked(*u.MethodID) {
			return fmt.Errorf("%w: %s", ErrUnknownPayment, *u.MethodID)
		}
		methodID = *u.MethodID
	}

	c.contact = contact
	c.methodID = methodID
	if u.Notes != nil {
		c.notes = *u.Notes
	}
	return nil
}

// UploadProof stores a proof-of-payment image and keeps its URL. A failed
// upload leaves the previous proof in place.
func (c *Controller) UploadProof(ctx context.Context, r io.Reader) (string, error) {
	c.mu.Lock()
	if err := c.requirePaymentLocked(); err != nil {
		c.mu.Unlock()
		return "", err
	}
	if c.uploading {
		c.mu.Unlock()
		return "", ErrUploadInFlight
	}
	c.uploading = true
	c.mu.Unlock()

	url, err := c.deps.Uploads.Upload(ctx, r)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.uploading = false
	if err != nil {
		return "", fmt.Errorf("failed to upload proof of payment: %w", err)
	}
	c.proofURL = url
	return url, nil
}

// RemoveProof forgets the uploaded proof.
func (c *Controller) RemoveProof() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requirePaymentLocked(); err != nil {
		return err
	}
	c.proofURL = ""
	return nil
}

// PlaceOrder submits the order. Proof, contact channel and region are
// checked in that order before anything is sent. On failure the checkout
// stays at the payment step with the cart untouched; on success the order
// message is built, the contact link is launched, the cart is cleared and
// the checkout moves to confirmation.
func (c *Controller) PlaceOrder(ctx context.Context) (*Confirmation, error) {
	c.mu.Lock()
	if c.step != StepPayment {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: orders are placed from the %s step", ErrWrongStep, StepPayment)
	}
	if c.submitting {
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	switch {
	case c.proofURL == "":
		c.mu.Unlock()
		return nil, ErrProofMissing
	case c.contact == ContactUnset:
		c.mu.Unlock()
		return nil, ErrContactMissing
	case c.details.Region == pricing.RegionUnset:
		c.mu.Unlock()
		return nil, ErrRegionMissing
	}
	items := c.deps.Cart.Items()
	if len(items) == 0 {
		c.mu.Unlock()
		return nil, ErrEmptyCart
	}

	quote := c.deps.Fees.Quote(items, c.details.Region)
	method := c.selectedMethodLocked()
	details, proofURL, contact, notes := c.details, c.proofURL, c.contact, c.notes
	c.submitting = true
	c.mu.Unlock()

	o := buildOrder(details, items, quote, method, proofURL, contact, notes)
	placed, err := c.deps.Orders.Place(ctx, o)
	if err != nil {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
		c.deps.Logger.Warn("place order failed", zap.Error(err))
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	link := c.deps.Contacts.URL(contact)
	conf := &Confirmation{
		OrderID:    placed.ID.String(),
		ProofURL:   proofURL,
		Contact:    contact,
		ContactURL: link,
		GrandTotal: quote.Total,
		Summary: BuildSummary(SummaryInput{
			OrderID:  placed.ID.String(),
			PlacedAt: c.deps.Now(),
			Details:  details,
			Items:    items,
			Quote:    quote,
			Method:   method,
			ProofURL: proofURL,
			Contact:  contact,
			Contacts: c.deps.Contacts,
		}),
	}
	opened, err := c.deps.Launcher.Open(ctx, link)
	if err != nil {
		c.deps.Logger.Info("contact link not opened", zap.String("link", link), zap.Error(err))
	}
	conf.ContactOpened = opened && err == nil

	c.deps.Cart.ClearCart(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	c.confirmation = conf
	c.step = StepConfirmation
	return conf, nil
}

// Confirmation returns the result of a placed order.
func (c *Controller) Confirmation() (*Confirmation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepConfirmation || c.confirmation == nil {
		return nil, fmt.Errorf("%w: no order has been placed yet", ErrWrongStep)
	}
	return c.confirmation, nil
}

// Reset discards the whole flow, including a finished one, and starts a new
// checkout at the details step.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrSubmissionInFlight
	}
	c.step = StepDetails
	c.details = Details{}
	c.methodID = ""
	c.methods = nil
	c.proofURL = ""
	c.contact = ContactUnset
	c.notes = ""
	c.confirmation = nil
	return nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (c *Controller) checkTransitionLocked(to Step) error {
	if c.submitting {
		return ErrSubmissionInFlight
	}
	if !canTransition(c.step, to) {
		return fmt.Errorf("%w: cannot go from %s to %s", ErrWrongStep, c.step, to)
	}
	return nil
}

func (c *Controller) requirePaymentLocked() error {
	if c.submitting {
		return ErrSubmissionInFlight
	}
	if c.step != StepPayment {
		return fmt.Errorf("%w: payment can only be edited at the %s step", ErrWrongStep, StepPayment)
	}
	return nil
}

func (c *Controller) hasMethodLocked(id string) bool {
	for _, m := range c.methods {
		if m.ID == id {
			return true
		}
	}
	return false
}

func (c *Controller) selectedMethodLocked() *catalog.PaymentMethod {
	for i := range c.methods {
		if c.methods[i].ID == c.methodID {
			m := c.methods[i]
			return &m
		}
	}
	return nil
}

func buildOrder(d Details, items []cart.LineItem, q pricing.Breakdown, method *catalog.PaymentMethod,
	proofURL string, contact ContactChannel, notes string) *order.Order {
	o := &order.Order{
		CustomerName:     d.FullName,
		CustomerEmail:    d.Email,
		CustomerPhone:    d.Phone,
		ShippingAddress:  d.Address,
		ShippingCity:     d.City,
		ShippingState:    d.State,
		ShippingZipCode:  d.ZipCode,
		ShippingCountry:  d.Country,
		ShippingLocation: string(d.Region),
		TotalPrice:       q.Subtotal,
		ShippingFee:      q.ShippingFee,
		PaymentProofURL:  proofURL,
		ContactMethod:    string(contact),
		Items:            make([]order.Item, 0, len(items)),
	}
	for _, it := range items {
		oi := order.Item{
			ProductID:        it.Product.ID,
			ProductName:      it.Product.Name,
			Quantity:         it.Quantity,
			Price:            it.Price,
			Total:            it.LineTotal(),
			PurityPercentage: it.Product.PurityPercentage,
		}
		if it.Variation != nil {
			id, name := it.Variation.ID, it.Variation.Name
			oi.VariationID, oi.VariationName = &id, &name
		}
		o.Items = append(o.Items, oi)
	}
	if method != nil {
		id, name := method.ID, method.Name
		o.PaymentMethodID, o.PaymentMethod = &id, &name
	}
	if n := strings.TrimSpace(notes); n != "" {
		o.Notes = &n
	}
	return o
}
