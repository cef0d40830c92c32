package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCorsMiddlewareWebhookPreflight(t *testing.T) {
	// Even with a restrictive origin allowlist, webhook preflight must get
	// permissive headers: the callers are platform servers, not browsers.
	prev := allowedOrigins
	allowedOrigins = []string{"https://app.linkstash.io"}
	defer func() { allowedOrigins = prev }()

	req := httptest.NewRequest(http.MethodOptions, "/webhooks/telegram", nil)
	req.Header.Set("Origin", "https://api.telegram.org")
	rr := httptest.NewRecorder()

	CorsMiddleware(okHandler()).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestCorsMiddlewareAllowlistedOrigin(t *testing.T) {
	prev := allowedOrigins
	allowedOrigins = []string{"https://app.linkstash.io"}
	defer func() { allowedOrigins = prev }()

	req := httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil)
	req.Header.Set("Origin", "https://app.linkstash.io")
	rr := httptest.NewRecorder()

	CorsMiddleware(okHandler()).ServeHTTP(rr, req)

	assert.Equal(t, "https://app.linkstash.io", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCorsMiddlewareUnknownOrigin(t *testing.T) {
	prev := allowedOrigins
	allowedOrigins = []string{"https://app.linkstash.io"}
	defer func() { allowedOrigins = prev }()

	req := httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr := httptest.NewRecorder()

	CorsMiddleware(okHandler()).ServeHTTP(rr, req)

	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
