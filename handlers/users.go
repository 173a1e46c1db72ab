// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/likek/what-to-eat/db"
	"github.com/likek/what-to-eat/middleware"
	"github.com/likek/what-to-eat/models"
)

type UserStore interface {
	IdentityByToken(ctx context.Context, token string) (models.ClientIdentity, error)
	Version(ctx context.Context) (string, error)
}

type UserHandler struct {
	store UserStore
}

func NewUserHandler(store UserStore) *UserHandler {
	return &UserHandler{store: store}
}

// Register handles GET /register
// The identity middleware has already issued the cookie and upserted the row.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// UserInfo handles GET /api/userInfo
func (h *UserHandler) UserInfo(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context())
	if token == "" {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}

	ident, err := h.store.IdentityByToken(r.Context(), token)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		slog.Error("failed to load identity", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.DataResponse{Data: ident})
}

// Version handles GET /api/version
func (h *UserHandler) Version(w http.ResponseWriter, r *http.Request) {
	version, err := h.store.Version(r.Context())
	if err != nil {
		slog.Error("failed to read version", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VersionResponse{Version: version})
}
