// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/likek/what-to-eat/middleware"
	"github.com/likek/what-to-eat/models"
	"github.com/likek/what-to-eat/selection"
)

type Spinner interface {
	Spin(ctx context.Context, token, ip string) (selection.Result, error)
}

type SpinHandler struct {
	engine Spinner
	hub    Broadcaster
}

func NewSpinHandler(engine Spinner, hub Broadcaster) *SpinHandler {
	return &SpinHandler{engine: engine, hub: hub}
}

// Spin handles POST /api/spin
func (h *SpinHandler) Spin(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context())
	ip := middleware.GetClientIP(r)

	result, err := h.engine.Spin(r.Context(), token, ip)
	switch {
	case errors.Is(err, selection.ErrNoRestaurants):
		middleware.ErrorResponse(w, http.StatusNotFound, "No restaurants available")
		return
	case errors.Is(err, selection.ErrAllWeightsZero):
		middleware.ErrorResponse(w, http.StatusNotFound, "Every restaurant has weight 0")
		return
	case errors.Is(err, selection.ErrIdentityNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	case err != nil:
		slog.Error("failed to spin", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := result.Response()
	middleware.JSONResponse(w, http.StatusOK, resp)
	h.hub.Broadcast(models.EventSpin, resp, originFilter(r))
}
