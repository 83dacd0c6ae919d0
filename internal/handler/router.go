package handler

import (
	"time"

	"github.com/cassiomorais/multipay/internal/config"
	customMW "github.com/cassiomorais/multipay/internal/middleware"
	"github.com/cassiomorais/multipay/internal/observability"
	"github.com/cassiomorais/multipay/internal/registry"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type RouterDeps struct {
	Registry   *registry.Registry
	Metrics    *observability.Metrics
	Logger     zerolog.Logger
	CORSConfig config.CORSConfig
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.Metrics(deps.Metrics))

	healthH := NewHealthHandler()
	paymentH := NewPaymentHandler(deps.Registry, deps.Metrics, deps.Logger)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/gateways", paymentH.Gateways)
		r.Post("/payments", paymentH.Purchase)

		// Gateways differ on whether the payer returns with GET or POST.
		r.Get("/payments/{gateway}/callback", paymentH.Callback)
		r.Post("/payments/{gateway}/callback", paymentH.Callback)
	})

	return r
}
