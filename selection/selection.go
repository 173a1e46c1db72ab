// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package selection

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"time"

	"github.com/likek/what-to-eat/db"
	"github.com/likek/what-to-eat/metrics"
	"github.com/likek/what-to-eat/models"
)

var (
	ErrNoRestaurants    = errors.New("no restaurants available")
	ErrAllWeightsZero   = errors.New("all restaurant weights are zero")
	ErrIdentityNotFound = errors.New("identity not found")
)

type Store interface {
	ActiveRestaurants(ctx context.Context) ([]models.Restaurant, error)
	IdentityByToken(ctx context.Context, token string) (models.ClientIdentity, error)
	InsertSelection(ctx context.Context, sel *models.Selection) error
}

// Result is a persisted draw
type Result struct {
	Restaurant models.Restaurant
	Selection  models.Selection
	IP         string
	At         time.Time
}

// Response is the payload returned to the caller and broadcast to the others
func (r Result) Response() models.SpinResponse {
	return models.SpinResponse{
		Name:      r.Restaurant.Name,
		IP:        r.IP,
		Timestamp: r.At.Format(time.RFC3339),
	}
}

type Engine struct {
	store   Store
	random  io.Reader
	now     func() time.Time
	metrics *metrics.Metrics
}

func NewEngine(store Store, m *metrics.Metrics) *Engine {
	return &Engine{
		store:   store,
		random:  rand.Reader,
		now:     time.Now,
		metrics: m,
	}
}

// Spin draws one active restaurant with probability proportional to its
// weight and records the selection for the requesting identity. Nothing is
// written when the draw fails.
func (e *Engine) Spin(ctx context.Context, token, ip string) (Result, error) {
	restaurants, err := e.store.ActiveRestaurants(ctx)
	if err != nil {
		return Result{}, err
	}

	picked, err := Draw(restaurants, e.random)
	if err != nil {
		return Result{}, err
	}

	creator, err := e.store.IdentityByToken(ctx, token)
	if errors.Is(err, db.ErrNotFound) {
		return Result{}, ErrIdentityNotFound
	}
	if err != nil {
		return Result{}, err
	}

	now := e.now()
	sel := models.Selection{
		RestaurantID: picked.ID,
		Name:         picked.Name,
		CreatorID:    creator.ID,
		IP:           ip,
		Timestamp:    now.Unix(),
		Status:       models.StatusActive,
	}
	if err := e.store.InsertSelection(ctx, &sel); err != nil {
		return Result{}, err
	}

	e.metrics.Spun()
	slog.Info("restaurant selected", "restaurant_id", picked.ID, "selection_id", sel.ID, "ip", ip)

	return Result{
		Restaurant: picked,
		Selection:  sel,
		IP:         ip,
		At:         time.Unix(sel.Timestamp, 0),
	}, nil
}

// Draw picks a restaurant by a uniform index over the weighted pool, where each
// restaurant occupies weight consecutive slots. Weight 0 never wins.
func Draw(restaurants []models.Restaurant, random io.Reader) (models.Restaurant, error) {
	if len(restaurants) == 0 {
		return models.Restaurant{}, ErrNoRestaurants
	}

	var total int64
	for _, r := range restaurants {
		if r.Weight > 0 {
			total += int64(r.Weight)
		}
	}
	if total == 0 {
		return models.Restaurant{}, ErrAllWeightsZero
	}

	n, err := rand.Int(random, big.NewInt(total))
	if err != nil {
		return models.Restaurant{}, fmt.Errorf("failed to draw: %w", err)
	}

	slot := n.Int64()
	for _, r := range restaurants {
		if r.Weight <= 0 {
			continue
		}
		if slot < int64(r.Weight) {
			return r, nil
		}
		slot -= int64(r.Weight)
	}

	// unreachable while slot < total
	return models.Restaurant{}, ErrAllWeightsZero
}
