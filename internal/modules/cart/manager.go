package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hpglow/storefront-backend/internal/modules/catalog"
)

// Persister is the durable mirror of a cart.
type Persister interface {
	Load(ctx context.Context) []LineItem
	Save(ctx context.Context, items []LineItem)
	Clear(ctx context.Context)
}

// Options configures a Manager.
type Options struct {
	Logger   *zap.Logger
	Defaults Defaults
	Now      func() time.Time
}

// Manager owns the line items of one cart. Every mutation is applied as a
// single update under the manager's lock, mirrored to the Persister once
// and then announced to listeners.
type Manager struct {
	mu        sync.Mutex
	items     []LineItem
	version   uint64
	listeners map[int]func(Snapshot)
	nextID    int
	closed    bool

	persistMu    sync.Mutex
	savedVersion uint64

	store    Persister
	log      *zap.Logger
	defaults Defaults
	now      func() time.Time
}

// Open builds a manager and hydrates it from store before returning, so the
// first read already sees the previous session's cart. Hydration does not
// write back.
func Open(ctx context.Context, store Persister, opts Options) *Manager {
	m := &Manager{
		store:     store,
		log:       opts.Logger,
		defaults:  opts.Defaults,
		now:       opts.Now,
		listeners: make(map[int]func(Snapshot)),
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	if m.defaults == (Defaults{}) {
		m.defaults = StandardDefaults
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.items = store.Load(ctx)
	return m
}

// AddToCart adds quantity units of a product (or one of its variations),
// never letting the line exceed the stock ceiling. When only part of the
// request fits, the remainder is dropped and the result carries a notice.
func (m *Manager) AddToCart(ctx context.Context, p catalog.Product, v *catalog.Variation, quantity int) (AddResult, error) {
	if quantity < 1 {
		quantity = 1
	}
	label := p.Name
	if v != nil {
		label += " " + v.Name
	}
	ceiling := catalog.StockCeiling(p, v)
	if ceiling <= 0 {
		return AddResult{}, fmt.Errorf("%w: sorry, %s is out of stock", ErrOutOfStock, label)
	}
	price := catalog.EffectivePrice(p, v)

	m.mu.Lock()
	var res AddResult
	if idx := m.indexOf(keyOf(p.ID, v)); idx >= 0 {
		current := m.items[idx].Quantity
		add := quantity
		if current+quantity > ceiling {
			remaining := ceiling - current
			if remaining <= 0 {
				m.mu.Unlock()
				return AddResult{}, fmt.Errorf("%w: you already have the maximum available quantity (%d) in your cart",
					ErrMaxQuantityReached, current)
			}
			add = remaining
			res.Partial = true
			res.Notice = fmt.Sprintf("Only %d item(s) available in stock. Added %d to your cart.", remaining, remaining)
		}
		m.items[idx].Quantity += add
		res.Index, res.Added, res.Quantity = idx, add, m.items[idx].Quantity
	} else {
		if quantity > ceiling {
			res.Partial = true
			res.Notice = fmt.Sprintf("Only %d item(s) available in stock. Added %d to your cart.", ceiling, ceiling)
			quantity = ceiling
		}
		m.items = append(m.items, LineItem{Product: p.Clone(), Variation: v.Clone(), Quantity: quantity, Price: price})
		res.Index, res.Added, res.Quantity = len(m.items)-1, quantity, quantity
	}
	m.commitLocked(ctx, false)
	return res, nil
}

// UpdateQuantity sets the quantity of the item at index. Zero or less
// removes the item; anything above the item's stock ceiling is clamped.
func (m *Manager) UpdateQuantity(ctx context.Context, index, quantity int) (UpdateResult, error) {
	if quantity <= 0 {
		return UpdateResult{Removed: m.RemoveFromCart(ctx, index)}, nil
	}

	m.mu.Lock()
	if index < 0 || index >= len(m.items) {
		m.mu.Unlock()
		return UpdateResult{}, fmt.Errorf("%w: index %d", ErrItemNotFound, index)
	}
	item := &m.items[index]
	ceiling := item.Ceiling()
	if ceiling <= 0 {
		name := item.DisplayName()
		m.items = append(m.items[:index:index], m.items[index+1:]...)
		m.commitLocked(ctx, false)
		return UpdateResult{Removed: true, Clamped: true, Notice: fmt.Sprintf("Sorry, %s is out of stock.", name)}, nil
	}

	res := UpdateResult{Quantity: quantity}
	if quantity > ceiling {
		res.Quantity = ceiling
		res.Clamped = true
		res.Notice = fmt.Sprintf("Only %d item(s) available in stock.", ceiling)
	}
	item.Quantity = res.Quantity
	m.commitLocked(ctx, false)
	return res, nil
}

// RemoveFromCart drops the item at index. An index that no longer exists is
// ignored; the return value reports whether anything was removed.
func (m *Manager) RemoveFromCart(ctx context.Context, index int) bool {
	m.mu.Lock()
	if index < 0 || index >= len(m.items) {
		m.mu.Unlock()
		return false
	}
	m.items = append(m.items[:index:index], m.items[index+1:]...)
	m.commitLocked(ctx, false)
	return true
}

// ClearCart empties the cart and purges its persisted slot.
func (m *Manager) ClearCart(ctx context.Context) {
	m.mu.Lock()
	m.items = []LineItem{}
	m.commitLocked(ctx, true)
}

// RequestAdd adds a product described by another component. Omitted fields
// are filled from the manager's Defaults. The caller is trusted on stock, so
// no ceiling is enforced, but the request still merges into an existing line
// with the same product and variation.
func (m *Manager) RequestAdd(ctx context.Context, req AddRequest) (AddResult, error) {
	n, err := Normalize(req, m.defaults, m.now())
	if err != nil {
		return AddResult{}, err
	}

	m.mu.Lock()
	res := AddResult{Added: n.Quantity}
	if idx := m.indexOf(keyOf(n.Product.ID, n.Variation)); idx >= 0 {
		m.items[idx].Quantity += n.Quantity
		res.Index, res.Quantity = idx, m.items[idx].Quantity
	} else {
		m.items = append(m.items, LineItem{Product: n.Product, Variation: n.Variation, Quantity: n.Quantity, Price: n.Price})
		res.Index, res.Quantity = len(m.items)-1, n.Quantity
	}
	m.commitLocked(ctx, false)
	return res, nil
}

// Items returns a copy of the current line items.
func (m *Manager) Items() []LineItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneItems(m.items)
}

// TotalPrice is Σ price × quantity over the current items.
func (m *Manager) TotalPrice() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return totalPrice(m.items)
}

// TotalItems is Σ quantity over the current items.
func (m *Manager) TotalItems() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return totalItems(m.items)
}

// Count is the number of distinct line items.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Snapshot returns the items together with their totals.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return snapshotOf(m.items)
}

// Subscribe registers fn to receive a snapshot after every mutation.
// Snapshots arrive in mutation order; one superseded before delivery is
// skipped. fn must not mutate the cart synchronously. The returned func
// removes it.
func (m *Manager) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return func() {}
	}
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Close deregisters every listener. The cart itself stays readable and its
// persisted slot is left untouched.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.listeners = make(map[int]func(Snapshot))
	m.mu.Unlock()
}

// commitLocked must be called with m.mu held; it releases the lock before
// persisting and notifying so slow backends or listeners never block other
// mutations.
func (m *Manager) commitLocked(ctx context.Context, clear bool) {
	m.version++
	version := m.version
	snap := snapshotOf(m.items)
	listeners := make([]func(Snapshot), 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	m.publish(context.WithoutCancel(ctx), version, snap, listeners, clear)
}

// publish persists and notifies in version order; a snapshot older than the
// last one published is skipped.
func (m *Manager) publish(ctx context.Context, version uint64, snap Snapshot, listeners []func(Snapshot), clear bool) {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()
	if version <= m.savedVersion {
		return
	}
	m.savedVersion = version
	if clear {
		m.store.Clear(ctx)
	} else {
		m.store.Save(ctx, snap.Items)
	}
	for _, fn := range listeners {
		fn(snap)
	}
}

func (m *Manager) indexOf(k Key) int {
	for i, it := range m.items {
		if it.Key() == k {
			return i
		}
	}
	return -1
}

func snapshotOf(items []LineItem) Snapshot {
	return Snapshot{Items: cloneItems(items), TotalPrice: totalPrice(items), TotalItems: totalItems(items)}
}

func totalPrice(items []LineItem) float64 {
	var total float64
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}

func totalItems(items []LineItem) int {
	var n int
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// cloneItems deep-copies items so callers never share the manager's
// products or variations.
func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, it := range items {
		out[i] = LineItem{Product: it.Product.Clone(), Variation: it.Variation.Clone(), Quantity: it.Quantity, Price: it.Price}
	}
	return out
}
