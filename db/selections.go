// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/likek/what-to-eat/models"
)

// HistoryLimit caps how many selections the history view returns.
const HistoryLimit = 20

// DayBounds returns the start of the local calendar day containing t and the start of the next one.
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// InsertSelection records a spin result and fills sel.ID.
func (s *Store) InsertSelection(ctx context.Context, sel *models.Selection) error {
	sel.Status = models.StatusActive

	row, err := s.queryRow(ctx, s.sb.
		Insert("selection").
		Columns("restaurant_id", "create_user_id", "ip", "spun_at", "status").
		Values(sel.RestaurantID, sel.CreatorID, sel.IP, sel.Timestamp, string(sel.Status)).
		Suffix("RETURNING id"))
	if err != nil {
		return err
	}

	if err := row.Scan(&sel.ID); err != nil {
		return fmt.Errorf("failed to insert selection: %w", err)
	}

	return nil
}

// DaySelections returns the active selections of the local day containing day,
// newest first, skipping those whose restaurant has been disabled.
func (s *Store) DaySelections(ctx context.Context, day time.Time, limit uint64) ([]models.Selection, error) {
	start, end := DayBounds(day)

	rows, err := s.query(ctx, s.sb.
		Select("s.id", "s.restaurant_id", "r.name", "s.create_user_id", "s.ip", "s.spun_at", "s.status").
		From("selection s").
		Join("restaurant r ON s.restaurant_id = r.id").
		Where(sq.GtOrEq{"s.spun_at": start.Unix()}).
		Where(sq.Lt{"s.spun_at": end.Unix()}).
		Where(sq.Eq{"s.status": string(models.StatusActive), "r.status": string(models.StatusActive)}).
		OrderBy("s.spun_at DESC", "s.id DESC").
		Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query selections: %w", err)
	}
	defer rows.Close()

	selections := []models.Selection{}
	for rows.Next() {
		var sel models.Selection
		if err := rows.Scan(&sel.ID, &sel.RestaurantID, &sel.Name, &sel.CreatorID, &sel.IP, &sel.Timestamp, &sel.Status); err != nil {
			return nil, fmt.Errorf("failed to scan selection: %w", err)
		}
		selections = append(selections, sel)
	}

	return selections, rows.Err()
}

// DisableDaySelections soft-clears every active selection of the local day
// containing day. The rows stay in place with status disabled.
func (s *Store) DisableDaySelections(ctx context.Context, day time.Time) (int64, error) {
	start, end := DayBounds(day)

	res, err := s.exec(ctx, s.sb.
		Update("selection").
		Set("status", string(models.StatusDisabled)).
		Where(sq.GtOrEq{"spun_at": start.Unix()}).
		Where(sq.Lt{"spun_at": end.Unix()}).
		Where(sq.Eq{"status": string(models.StatusActive)}))
	if err != nil {
		return 0, fmt.Errorf("failed to clear selections: %w", err)
	}

	return res.RowsAffected()
}
