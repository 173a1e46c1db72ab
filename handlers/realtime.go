// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/likek/what-to-eat/middleware"
	"github.com/likek/what-to-eat/models"
	"github.com/likek/what-to-eat/realtime"
)

// ConnectionJournal records websocket connects and disconnects
type ConnectionJournal interface {
	RecordWS(ctx context.Context, entry models.WSLog) error
}

type RealtimeHandler struct {
	hub     *realtime.Hub
	journal ConnectionJournal
}

func NewRealtimeHandler(hub *realtime.Hub, journal ConnectionJournal) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, journal: journal}
}

// Serve handles GET /ws
func (h *RealtimeHandler) Serve(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Identity required")
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := realtime.NewClient(conn)
	h.hub.Register(ident.UniqueID, ident.Public(), client)
	h.record(r, ident, models.WSActionConnect)

	client.Run(r.Context())

	h.hub.Deregister(ident.UniqueID, client)
	h.record(r, ident, models.WSActionDisconnect)
}

func (h *RealtimeHandler) record(r *http.Request, ident models.ClientIdentity, action string) {
	slog.Info("websocket "+action, "user_id", ident.ID, "ip", ident.IP)

	if h.journal == nil {
		return
	}
	err := h.journal.RecordWS(context.WithoutCancel(r.Context()), models.WSLog{
		Time:          time.Now(),
		Action:        action,
		IdentityToken: ident.UniqueID,
		IP:            ident.IP,
		Region:        ident.Region,
	})
	if err != nil {
		slog.Error("failed to record websocket event", "action", action, "error", err)
	}
}
