// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/likek/what-to-eat/models"
)

var restaurantColumns = []string{"id", "name", "weight", "status", "created_at", "updated_at"}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRestaurant(row rowScanner) (models.Restaurant, error) {
	var (
		r                    models.Restaurant
		createdAt, updatedAt int64
	)
	if err := row.Scan(&r.ID, &r.Name, &r.Weight, &r.Status, &createdAt, &updatedAt); err != nil {
		return r, err
	}
	r.Disabled = r.Status == models.StatusDisabled
	r.CreatedAt = fromMillis(createdAt)
	r.UpdatedAt = fromMillis(updatedAt)
	return r, nil
}

// ActiveRestaurants lists every restaurant that has not been soft-deleted.
func (s *Store) ActiveRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	rows, err := s.query(ctx, s.sb.
		Select(restaurantColumns...).
		From("restaurant").
		Where(sq.Eq{"status": string(models.StatusActive)}).
		OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("failed to query restaurants: %w", err)
	}
	defer rows.Close()

	restaurants := []models.Restaurant{}
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan restaurant: %w", err)
		}
		restaurants = append(restaurants, r)
	}

	return restaurants, rows.Err()
}

func (s *Store) RestaurantByID(ctx context.Context, id int64) (models.Restaurant, error) {
	row, err := s.queryRow(ctx, s.sb.
		Select(restaurantColumns...).
		From("restaurant").
		Where(sq.Eq{"id": id}))
	if err != nil {
		return models.Restaurant{}, err
	}

	r, err := scanRestaurant(row)
	return r, scanErr(err)
}

// nameTaken reports whether another active restaurant already uses name.
func (s *Store) nameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool

	row, err := s.queryRow(ctx, s.sb.
		Select("COUNT(*) > 0").
		From("restaurant").
		Where(sq.Eq{"name": name, "status": string(models.StatusActive)}).
		Where(sq.NotEq{"id": excludeID}))
	if err != nil {
		return false, err
	}

	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check restaurant name: %w", err)
	}

	return exists, nil
}

// CreateRestaurant inserts r as active and fills its ID, Status, and timestamps
// from the stored row. Returns ErrDuplicateName when an active restaurant has the same name.
func (s *Store) CreateRestaurant(ctx context.Context, r *models.Restaurant) error {
	taken, err := s.nameTaken(ctx, r.Name, 0)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateName
	}

	r.Status = models.StatusActive
	r.Disabled = false
	row, err := s.queryRow(ctx, s.sb.
		Insert("restaurant").
		Columns("name", "weight", "status", "created_at", "updated_at").
		Values(r.Name, r.Weight, string(r.Status), millis(r.CreatedAt), millis(r.UpdatedAt)).
		Suffix("RETURNING id"))
	if err != nil {
		return err
	}

	if err := row.Scan(&r.ID); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("failed to insert restaurant: %w", err)
	}

	return nil
}

// UpdateRestaurant renames and reweights an active restaurant. Returns
// ErrNotFound when the restaurant does not exist or is disabled.
func (s *Store) UpdateRestaurant(ctx context.Context, r *models.Restaurant) error {
	taken, err := s.nameTaken(ctx, r.Name, r.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateName
	}

	row, err := s.queryRow(ctx, s.sb.
		Update("restaurant").
		Set("name", r.Name).
		Set("weight", r.Weight).
		Set("updated_at", millis(r.UpdatedAt)).
		Where(sq.Eq{"id": r.ID, "status": string(models.StatusActive)}).
		Suffix("RETURNING " + strings.Join(restaurantColumns, ", ")))
	if err != nil {
		return err
	}

	updated, err := scanRestaurant(row)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return scanErr(err)
	}
	*r = updated

	return nil
}

// DisableRestaurant soft-deletes a restaurant. Returns ErrNotFound when no
// active restaurant has the id.
func (s *Store) DisableRestaurant(ctx context.Context, id int64, at time.Time) error {
	res, err := s.exec(ctx, s.sb.
		Update("restaurant").
		Set("status", string(models.StatusDisabled)).
		Set("updated_at", millis(at)).
		Where(sq.Eq{"id": id, "status": string(models.StatusActive)}))
	if err != nil {
		return fmt.Errorf("failed to disable restaurant: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to disable restaurant: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}
