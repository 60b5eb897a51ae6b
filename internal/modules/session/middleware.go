package session

import (
	"net/http"

	"go.uber.org/zap"
)

// Middleware resolves the cart session of every request. A missing or
// invalid token starts a new session whose token is returned both as a
// cookie and in the X-Cart-Session response header.
func Middleware(svc Service, secure bool, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(HeaderName)
			if raw == "" {
				if c, err := r.Cookie(CookieName); err == nil {
					raw = c.Value
				}
			}

			var id string
			if raw != "" {
				parsed, err := svc.Parse(raw)
				if err != nil {
					log.Debug("discarding cart session", zap.Error(err))
				}
				id = parsed
			}
			if id == "" {
				newID, token, err := svc.Issue()
				if err != nil {
					log.Error("issue cart session failed", zap.Error(err))
					http.Error(w, `{"error":"could not start a cart session"}`, http.StatusInternalServerError)
					return
				}
				id = newID
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(TokenTTL.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
				w.Header().Set(HeaderName, token)
			}

			next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
		})
	}
}
