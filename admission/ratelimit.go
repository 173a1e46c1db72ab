// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package admission

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/singleflight"

	"github.com/likek/what-to-eat/db"
	"github.com/likek/what-to-eat/models"
)

const Window = time.Minute

// RateLimiter counts requests per key in fixed one-minute windows
type RateLimiter struct {
	limit  int
	window time.Duration

	mu          sync.Mutex
	windows     map[string]*fixedWindow
	lastCleanup time.Time
}

type fixedWindow struct {
	start time.Time
	count int
}

func NewRateLimiter(limit int) *RateLimiter {
	if limit < 1 {
		limit = 1
	}
	return &RateLimiter{
		limit:       limit,
		window:      Window,
		windows:     make(map[string]*fixedWindow),
		lastCleanup: time.Now(),
	}
}

// Allow counts one request for key and reports whether it fits in the current window
func (l *RateLimiter) Allow(key string, now time.Time) bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.cleanupLocked(now)

	w := l.windows[key]
	if w == nil || now.Sub(w.start) >= l.window {
		w = &fixedWindow{start: now}
		l.windows[key] = w
	}

	w.count++
	return w.count <= l.limit
}

func (l *RateLimiter) cleanupLocked(now time.Time) {
	if now.Sub(l.lastCleanup) < 2*l.window {
		return
	}
	l.lastCleanup = now

	for k, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, k)
		}
	}
}

// Len reports the number of tracked keys
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

type PenaltyStore interface {
	ActiveBlacklistEntry(ctx context.Context, token string) (models.BlacklistEntry, error)
	InsertBlacklistEntry(ctx context.Context, entry *models.BlacklistEntry) error
}

// Penalizer inserts blacklist entries for identities that overflow the rate
// limit. Calls for the same identity never run concurrently, so an identity
// holds at most one enabled entry.
type Penalizer struct {
	store PenaltyStore
	group singleflight.Group
}

func NewPenalizer(store PenaltyStore) *Penalizer {
	return &Penalizer{store: store}
}

// Penalize blacklists token unless it already has an enabled entry. created
// reports whether a new entry was written.
func (p *Penalizer) Penalize(ctx context.Context, token, ip, cookies string, now time.Time) (bool, error) {
	ctx = context.WithoutCancel(ctx)

	v, err, _ := p.group.Do(token, func() (any, error) {
		_, err := p.store.ActiveBlacklistEntry(ctx, token)
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, db.ErrNotFound) {
			return false, err
		}

		entry := models.BlacklistEntry{
			IdentityToken: token,
			IP:            ip,
			Cookies:       cookies,
			AddedAt:       now,
		}
		if err := p.store.InsertBlacklistEntry(ctx, &entry); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return false, err
	}

	return v.(bool), nil
}

// cookieSnapshot serializes the request cookies as a JSON object
func cookieSnapshot(r *http.Request) string {
	jar := make(map[string]string)
	for _, c := range r.Cookies() {
		jar[c.Name] = c.Value
	}
	b, err := json.Marshal(jar)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func humanDuration(d time.Duration) string {
	var zero time.Time
	return strings.TrimSpace(humanize.RelTime(zero, zero.Add(d), "", ""))
}

func rateLimitedMessage(penalty time.Duration) string {
	return "Too many requests. You have been blacklisted for " + humanDuration(penalty) + "."
}
