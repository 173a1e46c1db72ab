// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/likek/what-to-eat/models"
)

const (
	maxRequestLogRows = 10000
	trimEvery         = 100
)

// RecordRequest appends to the request journal. Every trimEvery inserts the
// journal is cut back to its newest maxRequestLogRows rows.
func (s *Store) RecordRequest(ctx context.Context, entry models.RequestLog) error {
	_, err := s.exec(ctx, s.sb.
		Insert("request_log").
		Columns("request_time", "ip", "method", "url", "status", "user_agent", "region", "device", "os", "browser").
		Values(millis(entry.RequestTime), entry.IP, entry.Method, entry.URL, entry.Status, entry.UserAgent,
			entry.Region, entry.Device, entry.OS, entry.Browser))
	if err != nil {
		return fmt.Errorf("failed to insert request log: %w", err)
	}

	if s.requestLogInserts.Add(1)%trimEvery == 0 {
		return s.TrimRequestLog(ctx, maxRequestLogRows)
	}

	return nil
}

// TrimRequestLog deletes all but the newest keep rows.
func (s *Store) TrimRequestLog(ctx context.Context, keep uint64) error {
	_, err := s.exec(ctx, s.sb.
		Delete("request_log").
		Where(fmt.Sprintf("id NOT IN (SELECT id FROM request_log ORDER BY id DESC LIMIT %d)", keep)))
	if err != nil {
		return fmt.Errorf("failed to trim request log: %w", err)
	}

	return nil
}

func (s *Store) RecordWS(ctx context.Context, entry models.WSLog) error {
	_, err := s.exec(ctx, s.sb.
		Insert("ws_log").
		Columns("logged_at", "action", "identity_token", "ip", "region").
		Values(millis(entry.Time), entry.Action, entry.IdentityToken, entry.IP, entry.Region))
	if err != nil {
		return fmt.Errorf("failed to insert ws log: %w", err)
	}

	return nil
}

func (s *Store) Version(ctx context.Context) (string, error) {
	var version string

	row, err := s.queryRow(ctx, s.sb.
		Select("version").
		From("version").
		Where(sq.Eq{"id": 1}))
	if err != nil {
		return "", err
	}

	if err := row.Scan(&version); err != nil {
		return "", scanErr(err)
	}

	return version, nil
}
