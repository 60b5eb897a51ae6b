package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

type entry[T any] struct {
	value   T
	refs    int
	evicted bool
}

// Registry keeps one live object per cart session, opening it on first use.
// Sessions fall out of the LRU when it is full, but an object is only torn
// down once no request holds it; a session evicted while held stays live
// and is handed out again to its next request.
type Registry[T any] struct {
	mu      sync.Mutex
	cache   *lru.Cache
	live    map[string]*entry[T]
	open    func(ctx context.Context, id string) (T, error)
	closeFn func(T)
}

// NewRegistry holds up to size idle sessions. closeFn may be nil.
func NewRegistry[T any](size int, open func(ctx context.Context, id string) (T, error), closeFn func(T)) (*Registry[T], error) {
	r := &Registry[T]{live: make(map[string]*entry[T]), open: open, closeFn: closeFn}
	// Runs inside cache calls, which are only made with r.mu held.
	cache, err := lru.NewWithEvict(size, func(key interface{}, _ interface{}) {
		id := key.(string)
		e, ok := r.live[id]
		if !ok {
			return
		}
		e.evicted = true
		if e.refs == 0 {
			r.teardownLocked(id, e)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("session registry: %w", err)
	}
	r.cache = cache
	return r, nil
}

// Acquire returns the object of the session carried by ctx and holds it
// until release is called.
func (r *Registry[T]) Acquire(ctx context.Context) (value T, release func(), err error) {
	id := FromContext(ctx)
	if id == "" {
		return value, nil, ErrNoSession
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.live[id]
	if !ok {
		v, err := r.open(context.WithoutCancel(ctx), id)
		if err != nil {
			return value, nil, fmt.Errorf("open session %s: %w", id, err)
		}
		e = &entry[T]{value: v}
		r.live[id] = e
	}
	e.refs++
	if e.evicted || !ok {
		e.evicted = false
		r.cache.Add(id, e)
	} else {
		r.cache.Get(id)
	}

	var once sync.Once
	release = func() { once.Do(func() { r.release(id, e) }) }
	return e.value, release, nil
}

func (r *Registry[T]) release(id string, e *entry[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.refs--
	if e.refs == 0 && e.evicted {
		r.teardownLocked(id, e)
	}
}

func (r *Registry[T]) teardownLocked(id string, e *entry[T]) {
	if r.live[id] == e {
		delete(r.live, id)
	}
	if r.closeFn != nil {
		r.closeFn(e.value)
	}
}

type heldKey struct{ registry any }

// Hold keeps the session object of each request live until the request
// ends. Get inside such a request returns the held object.
func (r *Registry[T]) Hold(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		v, release, err := r.Acquire(req.Context())
		if err != nil {
			next.ServeHTTP(w, req)
			return
		}
		defer release()
		next.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), heldKey{r}, v)))
	})
}

// Get returns the object of the session carried by ctx: the one held by
// Hold when present, otherwise a briefly acquired one.
func (r *Registry[T]) Get(ctx context.Context) (T, error) {
	if v, ok := ctx.Value(heldKey{r}).(T); ok {
		return v, nil
	}
	v, release, err := r.Acquire(ctx)
	if err != nil {
		return v, err
	}
	release()
	return v, nil
}

// Len is the number of sessions in the LRU.
func (r *Registry[T]) Len() int { return r.cache.Len() }

// Purge evicts every session; held ones are torn down when released.
func (r *Registry[T]) Purge() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Purge()
}
