// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matchpulse/matchpulse/internal/config"
	"github.com/matchpulse/matchpulse/internal/metrics"
)

// NewRouter builds the full HTTP surface.
func NewRouter(cfg *config.Config, h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.Origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(cfg.Server.RateLimit, time.Minute))
	r.Use(httpMetrics)

	r.Get("/healthz", h.Healthz)
	r.Method(http.MethodGet, "/metrics/prom", promhttp.Handler())

	r.Post("/seed", h.Seed)
	r.Post("/reset", h.Reset)
	r.Post("/solve", h.Solve)
	r.Post("/rebalance", h.Rebalance)
	r.Post("/feedback", h.Feedback)
	r.Post("/users", h.CreateUser)

	r.Get("/feed", h.Feed)
	r.Get("/trending", h.Trending)
	r.Get("/metrics", h.MarketMetrics)
	r.Get("/state", h.State)

	r.Route("/events", func(r chi.Router) {
		r.Post("/", h.CreateEvent)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetEvent)
			r.Patch("/", h.PatchEvent)
			r.Get("/explain", h.Explain)
			r.Post("/rsvp", h.RSVP)
			r.Delete("/rsvp", h.CancelRSVP)
		})
	})

	r.Route("/demo", func(r chi.Router) {
		r.Post("/setup", h.DemoSetup)
		r.Post("/step", h.DemoStep)
		r.Post("/simulate", h.DemoSimulate)
	})

	return r
}

// urlParam reads a chi URL parameter.
func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// httpMetrics records request duration per route pattern.
func httpMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}
