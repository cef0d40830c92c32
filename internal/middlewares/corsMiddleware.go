package middlewares

import (
	"net/http"
	"os"
	"strings"
)

var allowedOrigins []string

func init() {
	allowed := os.Getenv("ALLOWED_ORIGINS")
	allowedOrigins = strings.Split(allowed, ",")
}

func setPermissiveHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
	w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		switch {
		case strings.HasPrefix(r.URL.Path, "/webhooks/"):
			// Webhook callers are platform servers, not browsers; always
			// answer preflight permissively regardless of ALLOWED_ORIGINS.
			setPermissiveHeaders(w)
		case len(allowedOrigins) == 1 && allowedOrigins[0] == "":
			// Empty ALLOWED_ORIGINS means permissive headers for everyone.
			setPermissiveHeaders(w)
		default:
			for _, allowed := range allowedOrigins {
				if strings.TrimSpace(allowed) == origin {
					w.Header().Set("Access-Control-Allow-Origin", allowed)
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
					w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
					w.Header().Set("Access-Control-Allow-Credentials", "true")
					break
				}
			}
		}

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
