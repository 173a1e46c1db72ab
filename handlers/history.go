// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/likek/what-to-eat/db"
	"github.com/likek/what-to-eat/middleware"
	"github.com/likek/what-to-eat/models"
)

type HistoryStore interface {
	DaySelections(ctx context.Context, day time.Time, limit uint64) ([]models.Selection, error)
	DisableDaySelections(ctx context.Context, day time.Time) (int64, error)
}

type HistoryHandler struct {
	store HistoryStore
	hub   Broadcaster
	now   func() time.Time
}

func NewHistoryHandler(store HistoryStore, hub Broadcaster) *HistoryHandler {
	return &HistoryHandler{store: store, hub: hub, now: time.Now}
}

// Get handles GET /api/history
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	selections, err := h.store.DaySelections(r.Context(), h.now(), db.HistoryLimit)
	if err != nil {
		slog.Error("failed to load history", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	items := make([]models.HistoryItem, 0, len(selections))
	for _, sel := range selections {
		items = append(items, models.HistoryItem{
			ID:           sel.ID,
			RestaurantID: sel.RestaurantID,
			Name:         sel.Name,
			CreatorID:    sel.CreatorID,
			IP:           sel.IP,
			Timestamp:    time.Unix(sel.Timestamp, 0).Format(time.RFC3339),
			Disabled:     sel.Status == models.StatusDisabled,
		})
	}

	middleware.JSONResponse(w, http.StatusOK, models.DataResponse{Data: items})
}

// Clear handles DELETE /api/history
func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	cleared, err := h.store.DisableDaySelections(r.Context(), h.now())
	if err != nil {
		slog.Error("failed to clear history", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("today's history cleared", "selections", cleared)

	w.WriteHeader(http.StatusOK)
	h.hub.Broadcast(models.EventDeleteTodayHistory, nil, originFilter(r))
}
