package checkout

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hpglow/storefront-backend/internal/modules/cart"
	"github.com/hpglow/storefront-backend/internal/modules/catalog"
	"github.com/hpglow/storefront-backend/internal/modules/order"
	"github.com/hpglow/storefront-backend/internal/modules/pricing"
)

type fakeOrders struct {
	mu     sync.Mutex
	calls  []*order.Order
	err    error
	block  chan struct{}
	placed chan struct{}
}

func (f *fakeOrders) Place(_ context.Context, o *order.Order) (*order.Order, error) {
	f.mu.Lock()
	f.calls = append(f.calls, o)
	f.mu.Unlock()
	if f.placed != nil {
		f.placed <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	o.ID = uuid.MustParse("6f1c2a9e-0b7d-4c55-9a44-2f0e8d3b1c70")
	return o, nil
}

func (f *fakeOrders) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeMethods struct {
	methods []catalog.PaymentMethod
	err     error
}

func (f fakeMethods) ListPaymentMethods(context.Context) ([]*catalog.PaymentMethod, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*catalog.PaymentMethod, len(f.methods))
	for i := range f.methods {
		out[i] = &f.methods[i]
	}
	return out, nil
}

type fakeUploads struct {
	url string
	err error
}

func (f fakeUploads) Upload(_ context.Context, r io.Reader) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	return f.url, f.err
}

type fakeLauncher struct {
	opened bool
	err    error
	links  []string
}

func (f *fakeLauncher) Open(_ context.Context, link string) (bool, error) {
	f.links = append(f.links, link)
	return f.opened, f.err
}

var errClipboard = errors.New("clipboard unavailable")

type fakeClipboard struct {
	fail bool
	text string
}

func (f *fakeClipboard) Copy(text string) error {
	if f.fail {
		return errClipboard
	}
	f.text = text
	return nil
}

var testMethods = []catalog.PaymentMethod{
	{ID: "gcash", Name: "GCash", AccountNumber: "0917 000 0000", AccountName: "HP Glow", Active: true},
	{ID: "bpi", Name: "BPI", AccountNumber: "1234-5678-90", AccountName: "HP Glow", Active: true, SortOrder: 1},
}

type fixture struct {
	cart     *cart.Manager
	orders   *fakeOrders
	launcher *fakeLauncher
	ctrl     *Controller
}

func newFixture(uploads fakeUploads) *fixture {
	f := &fixture{
		cart:     cart.Open(context.Background(), cart.NewPersistentStore(cart.NewMemoryBackend(), "t", zap.NewNop()), cart.Options{Logger: zap.NewNop()}),
		orders:   &fakeOrders{},
		launcher: &fakeLauncher{opened: true},
	}
	f.ctrl = New(Deps{
		Cart:     f.cart,
		Orders:   f.orders,
		Methods:  fakeMethods{methods: testMethods},
		Uploads:  uploads,
		Launcher: f.launcher,
		Logger:   zap.NewNop(),
		Now:      func() time.Time { return time.Date(2026, 10, 18, 6, 30, 15, 0, time.UTC) },
	})
	return f
}

func completeDetails(region pricing.Region) Details {
	return Details{
		FullName: "Maria Santos",
		Email:    "maria@example.com",
		Phone:    "09171234567",
		Address:  "12 Mabini St",
		City:     "Makati",
		State:    "Metro Manila",
		ZipCode:  "1200",
		Country:  "Philippines",
		Region:   region,
	}
}

func peptide(id, name string, price float64, stock int) catalog.Product {
	return catalog.Product{ID: id, Name: name, BasePrice: price, StockQuantity: stock, PurityPercentage: 99, Available: true}
}
