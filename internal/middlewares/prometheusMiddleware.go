package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"linkstash/internal/utils"
)

// PrometheusMiddleware records request count and duration for every route.
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lrw := &loggingResponseWriter{ResponseWriter: w}

		next.ServeHTTP(lrw, r)

		statusCode := strconv.Itoa(lrw.statusCode)
		path := r.URL.Path
		method := r.Method

		utils.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
		utils.HTTPRequestDurationSeconds.WithLabelValues(method, path, statusCode).Observe(time.Since(start).Seconds())
	})
}

// loggingResponseWriter captures the status code written by the handler.
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(data []byte) (int, error) {
	if lrw.statusCode == 0 {
		lrw.statusCode = http.StatusOK
	}
	return lrw.ResponseWriter.Write(data)
}
