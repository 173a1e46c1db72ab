// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"context"
	"net/http"
	"strings"

	"github.com/likek/what-to-eat/admission"
	"github.com/likek/what-to-eat/cliparse"
	"github.com/likek/what-to-eat/db"
	"github.com/likek/what-to-eat/handlers"
	"github.com/likek/what-to-eat/identity"
	"github.com/likek/what-to-eat/metrics"
	"github.com/likek/what-to-eat/middleware"
	"github.com/likek/what-to-eat/models"
	"github.com/likek/what-to-eat/realtime"
	"github.com/likek/what-to-eat/selection"
)

// requestJournal feeds the request log and the request counter from one place
type requestJournal struct {
	store   *db.Store
	metrics *metrics.Metrics
}

func (j requestJournal) RecordRequest(ctx context.Context, entry models.RequestLog) error {
	j.metrics.ObserveRequest(entry.Method, entry.Status)
	return j.store.RecordRequest(ctx, entry)
}

func NewRouter(store *db.Store, hub *realtime.Hub, m *metrics.Metrics, cfg cliparse.Config) http.Handler {
	mux := http.NewServeMux()
	base := strings.TrimRight(cfg.BasePath, "/")

	cookiePath := base
	if cookiePath == "" {
		cookiePath = "/"
	}

	issuer := identity.NewIssuer(store, identity.LocalResolver{}, cookiePath)
	gate := admission.NewGate(store, admission.Config{
		MaxRequestsPerMinute: cfg.MaxRequestsPerMinute,
		BlacklistDuration:    cfg.BlacklistDuration,
	}, m)
	journal := requestJournal{store: store, metrics: m}

	// identity, then request logging, then admission, then the handler
	api := func(h http.HandlerFunc) http.Handler {
		return issuer.Middleware(middleware.WithLogging(journal, gate.Middleware(h).ServeHTTP))
	}

	// Initialize handlers
	restaurantHandler := handlers.NewRestaurantHandler(store, hub)
	spinHandler := handlers.NewSpinHandler(selection.NewEngine(store, m), hub)
	historyHandler := handlers.NewHistoryHandler(store, hub)
	userHandler := handlers.NewUserHandler(store)
	realtimeHandler := handlers.NewRealtimeHandler(hub, store)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", m.Handler())

	// Identity
	mux.Handle("GET /register", api(userHandler.Register))
	mux.Handle("GET /api/userInfo", api(userHandler.UserInfo))
	mux.Handle("GET /api/version", api(userHandler.Version))

	// Restaurants
	mux.Handle("GET /api/restaurants", api(restaurantHandler.List))
	mux.Handle("POST /api/restaurants", api(restaurantHandler.Create))
	mux.Handle("PUT /api/restaurants/{id}", api(restaurantHandler.Update))
	mux.Handle("DELETE /api/restaurants/{id}", api(restaurantHandler.Delete))

	// Selections
	mux.Handle("POST /api/spin", api(spinHandler.Spin))
	mux.Handle("GET /api/history", api(historyHandler.Get))
	mux.Handle("DELETE /api/history", api(historyHandler.Clear))

	// Realtime, long-lived so it skips request logging and rate limiting
	mux.Handle("GET /ws", issuer.Middleware(gate.BlacklistOnly(http.HandlerFunc(realtimeHandler.Serve))))

	// Frontend or root endpoint
	if cfg.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(cfg.StaticDir)))
	} else {
		mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("what-to-eat API v1"))
		})
	}

	if base == "" {
		return middleware.CORS(middleware.WithClientIP(cfg.TrustedProxies, mux))
	}

	outer := http.NewServeMux()
	outer.Handle(base+"/", http.StripPrefix(base, mux))
	outer.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return middleware.CORS(middleware.WithClientIP(cfg.TrustedProxies, outer))
}
