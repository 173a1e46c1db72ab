// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/likek/what-to-eat/db"
	"github.com/likek/what-to-eat/middleware"
	"github.com/likek/what-to-eat/models"
	"github.com/likek/what-to-eat/realtime"
)

// Broadcaster pushes a domain event to connected clients
type Broadcaster interface {
	Broadcast(event string, data any, filter realtime.Filter) int
}

type RestaurantStore interface {
	ActiveRestaurants(ctx context.Context) ([]models.Restaurant, error)
	CreateRestaurant(ctx context.Context, r *models.Restaurant) error
	UpdateRestaurant(ctx context.Context, r *models.Restaurant) error
	DisableRestaurant(ctx context.Context, id int64, at time.Time) error
}

type RestaurantHandler struct {
	store RestaurantStore
	hub   Broadcaster
}

func NewRestaurantHandler(store RestaurantStore, hub Broadcaster) *RestaurantHandler {
	return &RestaurantHandler{store: store, hub: hub}
}

// List handles GET /api/restaurants
func (h *RestaurantHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.store.ActiveRestaurants(r.Context())
	if err != nil {
		slog.Error("failed to list restaurants", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.DataResponse{Data: restaurants})
}

// Create handles POST /api/restaurants
func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request) {
	name, weight, ok := parseRestaurantRequest(w, r)
	if !ok {
		return
	}

	now := time.Now()
	restaurant := models.Restaurant{Name: name, Weight: weight, CreatedAt: now, UpdatedAt: now}

	err := h.store.CreateRestaurant(r.Context(), &restaurant)
	if errors.Is(err, db.ErrDuplicateName) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Restaurant name already exists")
		return
	}
	if err != nil {
		slog.Error("failed to insert restaurant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create restaurant")
		return
	}

	slog.Info("restaurant created", "restaurant_id", restaurant.ID, "weight", restaurant.Weight)

	middleware.JSONResponse(w, http.StatusOK, models.DataResponse{Data: restaurant})
	h.hub.Broadcast(models.EventCreateRestaurant, restaurant, originFilter(r))
}

// Update handles PUT /api/restaurants/{id}
func (h *RestaurantHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantID(w, r)
	if !ok {
		return
	}

	name, weight, ok := parseRestaurantRequest(w, r)
	if !ok {
		return
	}

	restaurant := models.Restaurant{ID: id, Name: name, Weight: weight, UpdatedAt: time.Now()}

	err := h.store.UpdateRestaurant(r.Context(), &restaurant)
	switch {
	case errors.Is(err, db.ErrDuplicateName):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Restaurant name already exists")
		return
	case errors.Is(err, db.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Restaurant not found")
		return
	case err != nil:
		slog.Error("failed to update restaurant", "restaurant_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update restaurant")
		return
	}

	slog.Info("restaurant updated", "restaurant_id", id)

	middleware.JSONResponse(w, http.StatusOK, models.DataResponse{Data: restaurant})
	h.hub.Broadcast(models.EventUpdateRestaurant, restaurant, originFilter(r))
}

// Delete handles DELETE /api/restaurants/{id}
// The row is disabled, never removed, so past selections keep their name.
func (h *RestaurantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantID(w, r)
	if !ok {
		return
	}

	err := h.store.DisableRestaurant(r.Context(), id, time.Now())
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Restaurant not found")
		return
	}
	if err != nil {
		slog.Error("failed to disable restaurant", "restaurant_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete restaurant")
		return
	}

	slog.Info("restaurant disabled", "restaurant_id", id)

	w.WriteHeader(http.StatusOK)
	h.hub.Broadcast(models.EventDeleteRestaurant, models.IDPayload{ID: id}, originFilter(r))
}

// parseRestaurantRequest decodes and validates a create/update body. It writes
// the 400 response itself and returns ok=false on failure.
func parseRestaurantRequest(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	var req models.RestaurantRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return "", 0, false
	}

	name, weight, err := validateRestaurant(req)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return "", 0, false
	}

	return name, weight, true
}

func validateRestaurant(req models.RestaurantRequest) (string, int, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", 0, errors.New("name is required")
	}

	weight := models.DefaultWeight
	if req.Weight != nil {
		weight = *req.Weight
	}
	if weight < models.MinWeight || weight > models.MaxWeight {
		return "", 0, fmt.Errorf("weight must be between %d and %d", models.MinWeight, models.MaxWeight)
	}

	return name, weight, nil
}

func restaurantID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid restaurant id")
		return 0, false
	}
	return id, true
}

// originFilter skips the identity that triggered the event; it already has
// the result from the HTTP response.
func originFilter(r *http.Request) realtime.Filter {
	return realtime.ExcludeOrigin(middleware.TokenFromContext(r.Context()))
}
