package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/lead-pipeline/internal/config"
	"github.com/xavierca1/lead-pipeline/internal/infra/http/handlers"
	"github.com/xavierca1/lead-pipeline/internal/infra/http/middleware"
)

type routes struct {
	health  *handlers.HealthHandler
	leads   *handlers.LeadHandler
	views   *handlers.ViewHandler
	session *middleware.Session
	limiter *middleware.RateLimiter
}

func newRouter(cfg *config.Config, rt routes) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", rt.health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(rt.session.Handler)
		r.Use(rt.limiter.Handler)
		r.Use(chimw.Timeout(30 * time.Second))

		r.Get("/me", rt.views.Me)
		r.Get("/dashboard", rt.views.HandleDashboard)
		r.Get("/team", rt.views.HandleTeam)
		r.Get("/reports", rt.views.HandleReports)
		r.Get("/reports/export", rt.views.HandleExport)
		r.Route("/leads", rt.leads.Routes)
	})

	return r
}
