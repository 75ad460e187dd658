package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/wsauth/internal/logging"
	"github.com/dmitrijs2005/wsauth/internal/metrics"
)

// requestLogger logs one line per request once the handler has returned.
func requestLogger(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimid.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info(r.Context(), "request",
				"request_id", chimid.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", statusCode(ww),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}

// instrument records request latency by route pattern, so path parameters
// do not explode label cardinality.
func instrument(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimid.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			m.ObserveHTTP(r.Method, route, statusCode(ww), time.Since(start))
		})
	}
}

func statusCode(ww chimid.WrapResponseWriter) int {
	if s := ww.Status(); s != 0 {
		return s
	}
	return http.StatusOK
}
