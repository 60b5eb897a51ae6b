package order

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Notifier is told about every order that reached the store.
type Notifier interface {
	OrderInserted(ctx context.Context, o *Order)
}

// DefaultRecentLimit is the size of the recent-orders feed.
const DefaultRecentLimit = 5

// Service defines the order store operations used by checkout and the
// sales dashboard.
type Service interface {
	// Place persists a submitted checkout as a new, payment-pending order.
	Place(ctx context.Context, o *Order) (*Order, error)

	// Get retrieves one order by UUID.
	Get(ctx context.Context, id string) (*Order, error)

	// ListRecent returns the newest orders, DefaultRecentLimit when limit < 1.
	ListRecent(ctx context.Context, limit int) ([]Summary, error)
}

type service struct {
	repo     Repository
	notifier Notifier
	log      *zap.Logger
}

// NewService creates a new order service. notifier may be nil.
func NewService(repo Repository, notifier Notifier, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &service{repo: repo, notifier: notifier, log: log}
}

func (s *service) Place(ctx context.Context, o *Order) (*Order, error) {
	if len(o.Items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}
	if o.CustomerName == "" {
		return nil, fmt.Errorf("customer_name is required")
	}
	if o.PaymentProofURL == "" {
		return nil, fmt.Errorf("payment_proof_url is required")
	}

	o.OrderStatus = StatusNew
	o.PaymentStatus = PaymentPending
	o.TotalPrice = round2(o.TotalPrice)
	o.ShippingFee = round2(o.ShippingFee)
	for i := range o.Items {
		o.Items[i].Total = round2(o.Items[i].Price * float64(o.Items[i].Quantity))
	}

	if err := s.repo.Insert(ctx, o); err != nil {
		if isMissingTable(err) {
			s.log.Error("orders table missing", zap.Error(err))
			return nil, fmt.Errorf("%w (%v)", ErrOrdersTableMissing, err)
		}
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}
	s.log.Info("order placed",
		zap.String("order_id", o.ID.String()),
		zap.Int("items", len(o.Items)),
		zap.Float64("grand_total", o.GrandTotal()))

	if s.notifier != nil {
		s.notifier.OrderInserted(ctx, o)
	}
	return o, nil
}

func (s *service) Get(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if isMissingTable(err) {
		return nil, fmt.Errorf("%w (%v)", ErrOrdersTableMissing, err)
	}
	return o, err
}

func (s *service) ListRecent(ctx context.Context, limit int) ([]Summary, error) {
	if limit < 1 {
		limit = DefaultRecentLimit
	}
	out, err := s.repo.ListRecent(ctx, limit)
	if isMissingTable(err) {
		return nil, fmt.Errorf("%w (%v)", ErrOrdersTableMissing, err)
	}
	return out, err
}

// ── helpers ───────────────────────────────────────────────────────────────────

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
