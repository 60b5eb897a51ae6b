package session

import (
	"context"
	"errors"
)

const (
	// CookieName carries the signed cart-session token for browsers.
	CookieName = "cart_session"
	// HeaderName carries the same token for API clients.
	HeaderName = "X-Cart-Session"
)

// ErrNoSession is returned when a request context carries no cart session.
var ErrNoSession = errors.New("no cart session in context")

// Service issues and verifies cart-session tokens.
type Service interface {
	// Issue mints a token for a fresh session id.
	Issue() (id, token string, err error)
	// Parse returns the session id carried by a valid token.
	Parse(token string) (string, error)
}

type ctxKey struct{}

// WithID returns a context carrying the session id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the session id stored by the middleware, or "".
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
