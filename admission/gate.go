// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package admission

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/likek/what-to-eat/auth"
	"github.com/likek/what-to-eat/metrics"
	"github.com/likek/what-to-eat/middleware"
	"github.com/likek/what-to-eat/models"
)

type Store interface {
	BlacklistStore
	PenaltyStore
}

type Config struct {
	MaxRequestsPerMinute int
	BlacklistDuration    time.Duration
}

// Gate runs the blacklist check and then the rate limiter in front of a handler
type Gate struct {
	blacklist *Blacklist
	limiter   *RateLimiter
	penalizer *Penalizer
	penalty   time.Duration
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewGate(store Store, cfg Config, m *metrics.Metrics) *Gate {
	return &Gate{
		blacklist: NewBlacklist(store, cfg.BlacklistDuration),
		limiter:   NewRateLimiter(cfg.MaxRequestsPerMinute),
		penalizer: NewPenalizer(store),
		penalty:   cfg.BlacklistDuration,
		metrics:   m,
		now:       time.Now,
	}
}

// Middleware runs the blacklist check and then the rate limiter
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// added_at is stored in whole milliseconds
		now := g.now().Truncate(time.Millisecond)

		token := requestToken(r)
		if g.refuseBlacklisted(w, r, token, now) {
			return
		}

		ip := middleware.GetClientIP(r)
		if g.limiter.Allow(ip, now) {
			next.ServeHTTP(w, r)
			return
		}

		g.metrics.Rejected(metrics.ReasonRateLimited)
		if token != "" {
			created, err := g.penalizer.Penalize(r.Context(), token, ip, cookieSnapshot(r), now)
			if err != nil {
				slog.Error("failed to blacklist client", "ip", ip, "error", err)
				middleware.MessageResponse(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if created {
				g.metrics.PenaltyAdded()
				slog.Warn("client blacklisted", "ip", ip, "duration", humanDuration(g.penalty))
			}
		}

		middleware.MessageResponse(w, http.StatusTooManyRequests, rateLimitedMessage(g.penalty))
	})
}

// BlacklistOnly runs only the blacklist stage. Long-lived connections use it
// so a blocked identity cannot join while it is penalized.
func (g *Gate) BlacklistOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := g.now().Truncate(time.Millisecond)
		if g.refuseBlacklisted(w, r, requestToken(r), now) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestToken(r *http.Request) string {
	if token := middleware.TokenFromContext(r.Context()); token != "" {
		return token
	}
	return auth.TokenFromRequest(r)
}

// refuseBlacklisted writes the refusal and reports true when the identity
// may not proceed
func (g *Gate) refuseBlacklisted(w http.ResponseWriter, r *http.Request, token string, now time.Time) bool {
	verdict, err := g.blacklist.Check(r.Context(), token, now)
	if err != nil {
		slog.Error("blacklist check failed", "error", err)
		middleware.MessageResponse(w, http.StatusInternalServerError, "Internal server error")
		return true
	}
	if !verdict.Blocked {
		return false
	}

	g.metrics.Rejected(metrics.ReasonBlacklisted)
	middleware.JSONResponse(w, http.StatusForbidden, models.BlacklistedResponse{
		Message:       blacklistedMessage(verdict),
		BlackTimeLeft: verdict.SecondsLeft(),
	})
	return true
}
