package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hpglow/storefront-backend/internal/modules/catalog"
)

type recordingStore struct {
	mu     sync.Mutex
	loaded []LineItem
	saves  [][]LineItem
	clears int
}

func (s *recordingStore) Load(context.Context) []LineItem { return s.loaded }

func (s *recordingStore) Save(_ context.Context, items []LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, items)
}

func (s *recordingStore) Clear(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
}

func (s *recordingStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saves) + s.clears
}

func product(id string, price float64, stock int) catalog.Product {
	return catalog.Product{ID: id, Name: "Peptide " + id, BasePrice: price, StockQuantity: stock, Available: true}
}

func openManager(t *testing.T, store Persister) *Manager {
	t.Helper()
	return Open(context.Background(), store, Options{Logger: zap.NewNop()})
}

func TestAddToCartClampsToRemainingHeadroom(t *testing.T) {
	ctx := context.Background()
	m := openManager(t, &recordingStore{})
	p := product("p1", 1000, 5)

	res, err := m.AddToCart(ctx, p, nil, 2)
	require.NoError(t, err)
	assert.False(t, res.Partial)
	assert.Equal(t, 2000.0, m.TotalPrice())

	res, err = m.AddToCart(ctx, p, nil, 4)
	require.NoError(t, err)
	assert.True(t, res.Partial)
	assert.Equal(t, 3, res.Added)
	assert.Equal(t, 5, res.Quantity)
	assert.Equal(t, "Only 3 item(s) available in stock. Added 3 to your cart.", res.Notice)
	assert.Equal(t, 5000.0, m.TotalPrice())
	assert.Equal(t, 1, m.Count())
}

func TestAddToCartRejectsWhenFull(t *testing.T) {
	ctx := context.Background()
	store := &recordingStore{}
	m := openManager(t, store)
	p := product("p1", 500, 2)

	_, err := m.AddToCart(ctx, p, nil, 2)
	require.NoError(t, err)

	_, err = m.AddToCart(ctx, p, nil, 1)
	require.ErrorIs(t, err, ErrMaxQuantityReached)
	assert.Contains(t, err.Error(), "(2)")
	assert.Equal(t, 1, store.writes())
}

func TestAddToCartOutOfStock(t *testing.T) {
	store := &recordingStore{}
	m := openManager(t, store)

	_, err := m.AddToCart(context.Background(), product("p1", 500, 0), nil, 1)
	require.ErrorIs(t, err, ErrOutOfStock)
	assert.Zero(t, m.Count())
	assert.Zero(t, store.writes())
}

func TestAddToCartNewItemClampedToCeiling(t *testing.T) {
	m := openManager(t, &recordingStore{})

	res, err := m.AddToCart(context.Background(), product("p1", 100, 3), nil, 10)
	require.NoError(t, err)
	assert.True(t, res.Partial)
	assert.Equal(t, 3, res.Quantity)
	assert.NotEmpty(t, res.Notice)
}

func TestAddToCartQuantityDefaultsToOne(t *testing.T) {
	m := openManager(t, &recordingStore{})

	res, err := m.AddToCart(context.Background(), product("p1", 100, 3), nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Quantity)
}

func TestAddToCartVariationsAreDistinctLines(t *testing.T) {
	ctx := context.Background()
	m := openManager(t, &recordingStore{})
	discount := 1800.0
	p := product("p1", 1000, 50)
	small := catalog.Variation{ID: "v5", ProductID: "p1", Name: "5mg", Price: 1500, StockQuantity: 4}
	large := catalog.Variation{ID: "v10", ProductID: "p1", Name: "10mg", Price: 2500, DiscountPrice: &discount, DiscountActive: true, StockQuantity: 1}

	_, err := m.AddToCart(ctx, p, &small, 1)
	require.NoError(t, err)
	_, err = m.AddToCart(ctx, p, &large, 1)
	require.NoError(t, err)
	_, err = m.AddToCart(ctx, p, nil, 1)
	require.NoError(t, err)

	items := m.Items()
	require.Len(t, items, 3)
	assert.Equal(t, 1500.0, items[0].Price)
	assert.Equal(t, 1800.0, items[1].Price)
	assert.Equal(t, 1000.0, items[2].Price)
	assert.Equal(t, 4300.0, m.TotalPrice())

	_, err = m.AddToCart(ctx, p, &large, 1)
	require.ErrorIs(t, err, ErrMaxQuantityReached)
}

func TestAddToCartKeepsLockedPrice(t *testing.T) {
	ctx := context.Background()
	m := openManager(t, &recordingStore{})
	p := product("p1", 1000, 10)

	_, err := m.AddToCart(ctx, p, nil, 1)
	require.NoError(t, err)
	p.BasePrice = 1200
	_, err = m.AddToCart(ctx, p, nil, 1)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, m.Items()[0].Price)
	assert.Equal(t, 2000.0, m.TotalPrice())
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	m := openManager(t, &recordingStore{})
	_, err := m.AddToCart(ctx, product("p1", 100, 4), nil, 1)
	require.NoError(t, err)

	res, err := m.UpdateQuantity(ctx, 0, 3)
	require.NoError(t, err)
	assert.False(t, res.Clamped)
	assert.Equal(t, 3, m.TotalItems())

	res, err = m.UpdateQuantity(ctx, 0, 9)
	require.NoError(t, err)
	assert.True(t, res.Clamped)
	assert.Equal(t, 4, res.Quantity)
	assert.Equal(t, "Only 4 item(s) available in stock.", res.Notice)

	_, err = m.UpdateQuantity(ctx, 3, 1)
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestUpdateQuantityZeroEqualsRemove(t *testing.T) {
	ctx := context.Background()
	a := openManager(t, &recordingStore{})
	b := openManager(t, &recordingStore{})
	for _, m := range []*Manager{a, b} {
		_, err := m.AddToCart(ctx, product("p1", 100, 4), nil, 1)
		require.NoError(t, err)
		_, err = m.AddToCart(ctx, product("p2", 200, 4), nil, 2)
		require.NoError(t, err)
	}

	res, err := a.UpdateQuantity(ctx, 0, 0)
	require.NoError(t, err)
	assert.True(t, res.Removed)
	assert.True(t, b.RemoveFromCart(ctx, 0))

	assert.Equal(t, b.Snapshot(), a.Snapshot())
}

func TestUpdateQuantityZeroOutOfRangeRemovesNothing(t *testing.T) {
	ctx := context.Background()
	store := &recordingStore{}
	m := openManager(t, store)
	_, err := m.AddToCart(ctx, product("p1", 100, 4), nil, 1)
	require.NoError(t, err)

	res, err := m.UpdateQuantity(ctx, 3, 0)
	require.NoError(t, err)
	assert.False(t, res.Removed)
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, 1, store.writes())
}

func TestRemoveOutOfRangeIsNoop(t *testing.T) {
	ctx := context.Background()
	store := &recordingStore{}
	m := openManager(t, store)
	_, err := m.AddToCart(ctx, product("p1", 100, 4), nil, 1)
	require.NoError(t, err)

	assert.False(t, m.RemoveFromCart(ctx, 5))
	assert.False(t, m.RemoveFromCart(ctx, -1))
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, 1, store.writes())
}

func TestClearCartPurgesStore(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := NewPersistentStore(backend, "s1", zap.NewNop())
	m := Open(ctx, store, Options{Logger: zap.NewNop()})
	_, err := m.AddToCart(ctx, product("p1", 100, 4), nil, 2)
	require.NoError(t, err)
	require.Len(t, store.Load(ctx), 1)

	m.ClearCart(ctx)

	assert.Zero(t, m.Count())
	assert.Empty(t, store.Load(ctx))
	_, err = backend.Get(ctx, KeyPrefix+":s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenHydratesWithoutWriting(t *testing.T) {
	store := &recordingStore{loaded: []LineItem{{Product: product("p1", 250, 5), Quantity: 2, Price: 250}}}

	m := openManager(t, store)

	assert.Equal(t, 2, m.TotalItems())
	assert.Equal(t, 500.0, m.TotalPrice())
	assert.Zero(t, store.writes())
}

func TestEveryMutationPersistsOnce(t *testing.T) {
	ctx := context.Background()
	store := &recordingStore{}
	m := openManager(t, store)

	_, _ = m.AddToCart(ctx, product("p1", 100, 4), nil, 1)
	_, _ = m.AddToCart(ctx, product("p2", 100, 4), nil, 1)
	_, _ = m.UpdateQuantity(ctx, 0, 2)
	m.RemoveFromCart(ctx, 1)
	m.ClearCart(ctx)

	assert.Len(t, store.saves, 4)
	assert.Equal(t, 1, store.clears)
	assert.Len(t, store.saves[2], 2)
	assert.Equal(t, 2, store.saves[2][0].Quantity)
}

func TestTotalPriceMatchesFreshFold(t *testing.T) {
	ctx := context.Background()
	m := openManager(t, &recordingStore{})
	ops := []func(){
		func() { _, _ = m.AddToCart(ctx, product("a", 120, 9), nil, 2) },
		func() { _, _ = m.AddToCart(ctx, product("b", 75.5, 3), nil, 5) },
		func() { _, _ = m.UpdateQuantity(ctx, 0, 7) },
		func() { _, _ = m.AddToCart(ctx, product("a", 120, 9), nil, 4) },
		func() { m.RemoveFromCart(ctx, 1) },
		func() { _, _ = m.RequestAdd(ctx, AddRequest{Product: PartialProduct{ID: "c", Name: "C", BasePrice: 10}}) },
	}
	for _, op := range ops {
		op()
		var want float64
		var units int
		for _, it := range m.Items() {
			want += it.Price * float64(it.Quantity)
			units += it.Quantity
		}
		assert.InDelta(t, want, m.TotalPrice(), 1e-9)
		assert.Equal(t, units, m.TotalItems())
	}
}

func TestRequestAddNormalizesAndCoalesces(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := Open(ctx, &recordingStore{}, Options{
		Logger:   zap.NewNop(),
		Defaults: Defaults{UnknownStock: 50, Available: true, Quantity: 1},
		Now:      func() time.Time { return now },
	})
	two := 2
	price := 900.0
	req := AddRequest{
		Product:   PartialProduct{ID: "p9", Name: "Tirzepatide", BasePrice: 1200},
		Variation: &PartialVariation{ID: "v1", Name: "10mg", Price: 1100},
		Quantity:  &two,
		Price:     &price,
	}

	res, err := m.RequestAdd(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Quantity)

	req.Quantity = nil
	res, err = m.RequestAdd(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Quantity)

	items := m.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 900.0, items[0].Price)
	assert.Equal(t, 50, items[0].Product.StockQuantity)
	assert.Equal(t, 50, items[0].Variation.StockQuantity)
	assert.Equal(t, now, items[0].Product.CreatedAt)
}

func TestRequestAddRejectsMissingID(t *testing.T) {
	m := openManager(t, &recordingStore{})

	_, err := m.RequestAdd(context.Background(), AddRequest{Product: PartialProduct{Name: "Nameless"}})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	ctx := context.Background()
	m := openManager(t, &recordingStore{})
	var got []Snapshot
	unsubscribe := m.Subscribe(func(s Snapshot) { got = append(got, s) })

	_, _ = m.AddToCart(ctx, product("p1", 100, 4), nil, 2)
	unsubscribe()
	_, _ = m.AddToCart(ctx, product("p1", 100, 4), nil, 1)

	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].TotalItems)
	assert.Equal(t, 200.0, got[0].TotalPrice)
}

func TestCloseDeregistersListeners(t *testing.T) {
	ctx := context.Background()
	m := openManager(t, &recordingStore{})
	calls := 0
	m.Subscribe(func(Snapshot) { calls++ })

	m.Close()
	_, _ = m.AddToCart(ctx, product("p1", 100, 4), nil, 1)
	m.Subscribe(func(Snapshot) { calls++ })
	_, _ = m.AddToCart(ctx, product("p1", 100, 4), nil, 1)

	assert.Zero(t, calls)
	assert.Equal(t, 2, m.TotalItems())
}

func TestConcurrentAddsNeverExceedCeiling(t *testing.T) {
	ctx := context.Background()
	m := openManager(t, &recordingStore{})
	p := product("p1", 10, 25)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.AddToCart(ctx, p, nil, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 25, m.TotalItems())
	assert.Equal(t, 1, m.Count())
}

func TestConcurrentMutationsPersistLatestSnapshot(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := NewPersistentStore(backend, "s1", zap.NewNop())
	m := Open(ctx, store, Options{Logger: zap.NewNop()})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.AddToCart(ctx, product("p1", 10, 100), nil, 1)
		}()
	}
	wg.Wait()

	persisted := store.Load(ctx)
	require.Len(t, persisted, 1)
	assert.Equal(t, 20, persisted[0].Quantity)
}

func TestItemsShareNoMemoryWithCart(t *testing.T) {
	ctx := context.Background()
	m := openManager(t, &recordingStore{})
	p := product("p1", 100, 10)
	p.Inclusions = []string{"bacteriostatic water"}
	v := &catalog.Variation{ID: "v5", ProductID: "p1", Name: "5mg", Price: 90, StockQuantity: 10}
	_, err := m.AddToCart(ctx, p, v, 1)
	require.NoError(t, err)

	p.Inclusions[0] = "changed by caller"
	v.Price = 1

	items := m.Items()
	items[0].Variation.Price = 2
	items[0].Variation.StockQuantity = 0
	items[0].Product.Inclusions[0] = "changed by reader"
	snap := m.Snapshot()
	snap.Items[0].Variation.Name = "changed"

	again := m.Items()
	assert.Equal(t, 90.0, again[0].Variation.Price)
	assert.Equal(t, 10, again[0].Variation.StockQuantity)
	assert.Equal(t, "5mg", again[0].Variation.Name)
	assert.Equal(t, []string{"bacteriostatic water"}, again[0].Product.Inclusions)
}

func TestConcurrentMutationsNotifyInOrder(t *testing.T) {
	ctx := context.Background()
	m := openManager(t, &recordingStore{})
	var seen []int
	m.Subscribe(func(s Snapshot) { seen = append(seen, s.TotalItems) })

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.AddToCart(ctx, product("p1", 10, 100), nil, 1)
		}()
	}
	wg.Wait()

	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i], seen[i-1])
	}
	assert.Equal(t, 20, seen[len(seen)-1])
}
