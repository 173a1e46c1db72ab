// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/likek/what-to-eat/metrics"
	"github.com/likek/what-to-eat/models"
)

// PresenceDelay is the quiet period before an online_users_update is sent
const PresenceDelay = 100 * time.Millisecond

// Conn is one live client connection. Send must not block.
type Conn interface {
	Send(msg []byte) error
	Close()
}

// Filter selects the identities a broadcast is delivered to
type Filter func(token string) bool

func Everyone(string) bool { return true }

// ExcludeOrigin delivers to every identity except origin
func ExcludeOrigin(origin string) Filter {
	return func(token string) bool { return token != origin }
}

type entry struct {
	conn Conn
	user models.OnlineUser
}

// Hub is the connection registry: at most one live connection per identity token.
type Hub struct {
	mu    sync.Mutex
	conns map[string]entry

	presence      *Debouncer
	presenceDelay time.Duration
	metrics       *metrics.Metrics
}

func NewHub(presenceDelay time.Duration, m *metrics.Metrics) *Hub {
	return &Hub{
		conns:         make(map[string]entry),
		presence:      NewDebouncer(),
		presenceDelay: presenceDelay,
		metrics:       m,
	}
}

// Register binds conn to token. A previous connection of the same identity is
// closed and replaced.
func (h *Hub) Register(token string, user models.OnlineUser, conn Conn) {
	h.mu.Lock()
	old, had := h.conns[token]
	h.conns[token] = entry{conn: conn, user: user}
	h.mu.Unlock()

	if had && old.conn != conn {
		old.conn.Close()
	}

	slog.Debug("realtime client registered", "user_id", user.ID, "replaced", had)
	h.schedulePresence()
}

// Deregister removes token only while it is still bound to conn, so a replaced
// connection closing late does not evict its successor.
func (h *Hub) Deregister(token string, conn Conn) bool {
	h.mu.Lock()
	e, ok := h.conns[token]
	if ok && e.conn == conn {
		delete(h.conns, token)
	}
	h.mu.Unlock()

	if !ok || e.conn != conn {
		return false
	}

	slog.Debug("realtime client deregistered", "user_id", e.user.ID)
	h.schedulePresence()
	return true
}

// Broadcast sends {event, data} to every registered identity accepted by
// filter and returns the number of frames handed to connections. Failed
// sends are skipped.
func (h *Hub) Broadcast(event string, data any, filter Filter) int {
	payload, err := json.Marshal(models.Event{Event: event, Data: data})
	if err != nil {
		slog.Error("failed to encode realtime event", "event", event, "error", err)
		return 0
	}
	if filter == nil {
		filter = Everyone
	}

	h.mu.Lock()
	targets := make([]Conn, 0, len(h.conns))
	for token, e := range h.conns {
		if filter(token) {
			targets = append(targets, e.conn)
		}
	}
	h.mu.Unlock()

	sent := 0
	for _, c := range targets {
		if err := c.Send(payload); err != nil {
			slog.Debug("realtime send skipped", "event", event, "error", err)
			continue
		}
		sent++
	}

	h.metrics.FramesSent(event, sent)
	return sent
}

// Online lists the public profile of every connected identity, ordered by id
func (h *Hub) Online() models.OnlineUsers {
	h.mu.Lock()
	users := make([]models.OnlineUser, 0, len(h.conns))
	for _, e := range h.conns {
		users = append(users, e.user)
	}
	h.mu.Unlock()

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return models.OnlineUsers{Users: users, Count: len(users)}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Hub) schedulePresence() {
	h.presence.Schedule(models.EventOnlineUsersUpdate, h.presenceDelay, h.broadcastPresence)
}

func (h *Hub) broadcastPresence() {
	online := h.Online()
	h.metrics.SetOnline(online.Count)
	h.Broadcast(models.EventOnlineUsersUpdate, online, Everyone)
}

// Close cancels pending presence updates and closes every connection
func (h *Hub) Close() {
	h.presence.Stop()

	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[string]entry)
	h.mu.Unlock()

	for _, e := range conns {
		e.conn.Close()
	}
}
