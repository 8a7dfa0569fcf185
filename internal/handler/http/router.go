package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/marketplace-discovery/internal/service"
	"github.com/utafrali/marketplace-discovery/pkg/health"
	"github.com/utafrali/marketplace-discovery/pkg/middleware"
)

// RouterConfig carries the services and settings the router is built from.
type RouterConfig struct {
	ServiceName string
	Discovery   *service.DiscoveryService
	Ratings     *service.RatingService
	Health      *health.Handler
	CORS        middleware.CORSConfig
	// PprofCIDRs enables /debug/pprof for the listed networks when non-empty.
	PprofCIDRs []string
	// RatingRPS limits rating submissions per user. Zero disables the limit.
	RatingRPS   float64
	RatingBurst int
	Logger      *slog.Logger
}

// NewRouter creates a chi router with every discovery service route registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	// Probes and metrics
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	if len(cfg.PprofCIDRs) > 0 {
		middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)
	}

	discoveryHandler := NewDiscoveryHandler(cfg.Discovery, cfg.Logger)
	ratingHandler := NewRatingHandler(cfg.Ratings, cfg.Logger)

	var submitLimit []func(http.Handler) http.Handler
	if cfg.RatingRPS > 0 {
		submitLimit = append(submitLimit, middleware.RateLimit(cfg.RatingRPS, cfg.RatingBurst, middleware.UserOrIP, cfg.Logger))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity())
		r.Use(middleware.RequestLogger(cfg.Logger))

		// Listings depend on the visitor's session.
		r.Route("/discovery", func(r chi.Router) {
			r.Use(middleware.CacheControl("private, no-store"))

			r.Get("/products", discoveryHandler.ListProducts)
			r.Get("/products/{id}", discoveryHandler.GetProduct)
			r.Get("/profile", discoveryHandler.GetProfile)
		})

		r.Route("/ratings/{kind}/{targetId}", func(r chi.Router) {
			r.With(middleware.CacheControl("public, max-age=30")).Get("/", ratingHandler.ListRatings)
			r.With(submitLimit...).Put("/", ratingHandler.SubmitRating)
			r.With(middleware.CacheControl("private, no-store")).Get("/mine", ratingHandler.GetMyRating)
		})
	})

	return r
}
