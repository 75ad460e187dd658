package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/wsauth/internal/metrics"
)

type Options struct {
	Metrics *metrics.Metrics
	// Gatherer backs /metrics; nil leaves the endpoint unregistered.
	Gatherer  prometheus.Gatherer
	RateLimit float64
	RateBurst int
}

func NewRouter(h *Handlers, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(chimid.Recoverer)
	r.Use(instrument(opts.Metrics))

	registerRoutes(r, h, newIPLimiter(opts.RateLimit, opts.RateBurst, 10*time.Minute))

	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func registerRoutes(r chi.Router, h *Handlers, limiter *ipLimiter) {
	r.Get("/health", h.Health)

	r.Route("/auth", func(r chi.Router) {
		r.Use(rateLimit(limiter))
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/send_verify_email", h.SendVerifyEmail)
		r.Post("/logout", h.Logout)
	})
}
