// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/likek/what-to-eat/models"
)

var identityColumns = []string{
	"id", "unique_id", "ip", "user_agent", "region", "device", "os", "browser", "created_at", "updated_at",
}

// UpsertIdentity inserts the identity if its token is new and otherwise refreshes
// every mutable field. ID and CreatedAt are filled from the stored row.
func (s *Store) UpsertIdentity(ctx context.Context, ident *models.ClientIdentity) error {
	row, err := s.queryRow(ctx, s.sb.
		Insert("client_identity").
		Columns("unique_id", "ip", "user_agent", "region", "device", "os", "browser", "created_at", "updated_at").
		Values(ident.UniqueID, ident.IP, ident.UserAgent, ident.Region, ident.Device, ident.OS, ident.Browser,
			millis(ident.CreatedAt), millis(ident.UpdatedAt)).
		Suffix(`ON CONFLICT (unique_id) DO UPDATE SET
			ip = EXCLUDED.ip,
			user_agent = EXCLUDED.user_agent,
			region = EXCLUDED.region,
			device = EXCLUDED.device,
			os = EXCLUDED.os,
			browser = EXCLUDED.browser,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`))
	if err != nil {
		return err
	}

	var createdAt int64
	if err := row.Scan(&ident.ID, &createdAt); err != nil {
		return fmt.Errorf("failed to upsert identity: %w", err)
	}
	ident.CreatedAt = fromMillis(createdAt)

	return nil
}

func (s *Store) IdentityByToken(ctx context.Context, token string) (models.ClientIdentity, error) {
	var (
		ident                models.ClientIdentity
		createdAt, updatedAt int64
	)

	row, err := s.queryRow(ctx, s.sb.
		Select(identityColumns...).
		From("client_identity").
		Where(sq.Eq{"unique_id": token}))
	if err != nil {
		return ident, err
	}

	if err := row.Scan(&ident.ID, &ident.UniqueID, &ident.IP, &ident.UserAgent, &ident.Region,
		&ident.Device, &ident.OS, &ident.Browser, &createdAt, &updatedAt); err != nil {
		return ident, scanErr(err)
	}
	ident.CreatedAt = fromMillis(createdAt)
	ident.UpdatedAt = fromMillis(updatedAt)

	return ident, nil
}
