package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func captureID(got *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestMiddlewareStartsSession(t *testing.T) {
	svc := NewService("secret")
	var id string
	h := Middleware(svc, false, zap.NewNop())(captureID(&id))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, id)
	token := rec.Header().Get(HeaderName)
	require.NotEmpty(t, token)
	parsed, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestMiddlewareResumesSession(t *testing.T) {
	svc := NewService("secret")
	want, token, err := svc.Issue()
	require.NoError(t, err)

	for name, attach := range map[string]func(*http.Request){
		"header": func(r *http.Request) { r.Header.Set(HeaderName, token) },
		"cookie": func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: token}) },
	} {
		t.Run(name, func(t *testing.T) {
			var id string
			h := Middleware(svc, false, zap.NewNop())(captureID(&id))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			attach(req)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, want, id)
			assert.Empty(t, rec.Header().Get(HeaderName))
		})
	}
}

func TestMiddlewareReplacesInvalidToken(t *testing.T) {
	var id string
	h := Middleware(NewService("secret"), false, zap.NewNop())(captureID(&id))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderName, "garbage")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.NotEmpty(t, id)
	assert.NotEmpty(t, rec.Header().Get(HeaderName))
}
