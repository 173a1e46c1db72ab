// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/likek/what-to-eat/models"
)

// ActiveBlacklistEntry returns the most recent enabled entry for an identity.
func (s *Store) ActiveBlacklistEntry(ctx context.Context, token string) (models.BlacklistEntry, error) {
	var (
		entry   models.BlacklistEntry
		addedAt int64
	)

	row, err := s.queryRow(ctx, s.sb.
		Select("id", "identity_token", "ip", "cookies", "added_at", "enabled").
		From("blacklist").
		Where(sq.Eq{"identity_token": token, "enabled": true}).
		OrderBy("added_at DESC", "id DESC").
		Limit(1))
	if err != nil {
		return entry, err
	}

	if err := row.Scan(&entry.ID, &entry.IdentityToken, &entry.IP, &entry.Cookies, &addedAt, &entry.Enabled); err != nil {
		return entry, scanErr(err)
	}
	entry.AddedAt = fromMillis(addedAt)

	return entry, nil
}

// InsertBlacklistEntry stores a new enabled penalty and fills entry.ID.
func (s *Store) InsertBlacklistEntry(ctx context.Context, entry *models.BlacklistEntry) error {
	row, err := s.queryRow(ctx, s.sb.
		Insert("blacklist").
		Columns("identity_token", "ip", "cookies", "added_at", "enabled").
		Values(entry.IdentityToken, entry.IP, entry.Cookies, millis(entry.AddedAt), true).
		Suffix("RETURNING id"))
	if err != nil {
		return err
	}

	if err := row.Scan(&entry.ID); err != nil {
		return fmt.Errorf("failed to insert blacklist entry: %w", err)
	}
	entry.Enabled = true

	return nil
}

// ExpireBlacklist disables every enabled entry of an identity.
func (s *Store) ExpireBlacklist(ctx context.Context, token string) error {
	_, err := s.exec(ctx, s.sb.
		Update("blacklist").
		Set("enabled", false).
		Where(sq.Eq{"identity_token": token, "enabled": true}))
	if err != nil {
		return fmt.Errorf("failed to expire blacklist entry: %w", err)
	}

	return nil
}

// CountActiveBlacklistEntries reports how many enabled rows an identity has.
func (s *Store) CountActiveBlacklistEntries(ctx context.Context, token string) (int, error) {
	var count int

	row, err := s.queryRow(ctx, s.sb.
		Select("COUNT(*)").
		From("blacklist").
		Where(sq.Eq{"identity_token": token, "enabled": true}))
	if err != nil {
		return 0, err
	}

	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count blacklist entries: %w", err)
	}

	return count, nil
}
