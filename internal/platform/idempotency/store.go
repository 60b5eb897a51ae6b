package idempotency

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HeaderKey is the request header clients use to tag a submission.
const HeaderKey = "Idempotency-Key"

// Checker claims keys. Seen reports whether a key is already claimed,
// claiming it if not; Release gives a claimed key back.
type Checker interface {
	Seen(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Key namespaces a client supplied key by scope and partition.
func Key(scope, partition, key string) string {
	return fmt.Sprintf("idem:%s:%s:%s", scope, partition, key)
}

func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return false, err
	}

	return !ok, nil
}

func (s *Store) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// statusWriter records the status code written by the wrapped handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// Middleware rejects a repeated Idempotency-Key with 409 Conflict while the
// key is claimed. A request answered with a non-2xx status releases its key
// so the client can retry with the same key. partition splits the key
// space per caller (the cart session) and may be nil.
// Requests without the header, or with a nil checker, pass through.
// Checker failures are logged and the request is let through.
func Middleware(checker Checker, scope string, partition func(context.Context) string, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(HeaderKey)
			if checker == nil || raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			part := ""
			if partition != nil {
				part = partition(r.Context())
			}
			key := Key(scope, part, raw)

			seen, err := checker.Seen(r.Context(), key)
			if err != nil {
				log.Warn("idempotency check failed", zap.String("scope", scope), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if seen {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"error":"this submission is already being processed"}`))
				return
			}

			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)
			if sw.status >= 200 && sw.status < 300 {
				return
			}
			if err := checker.Release(context.WithoutCancel(r.Context()), key); err != nil {
				log.Warn("idempotency release failed", zap.String("scope", scope), zap.Error(err))
			}
		})
	}
}
