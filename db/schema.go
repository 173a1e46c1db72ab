// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(conn *sql.DB, dbType string) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if dbType == Postgres {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	for _, stmt := range strings.Split(strings.ReplaceAll(schema, "{{serial}}", serial), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema (%s): %w", firstLine(stmt), err)
		}
	}

	return nil
}

func firstLine(stmt string) string {
	for _, line := range strings.Split(stmt, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return line
		}
	}
	return ""
}

const schema = `
-- Anonymous clients, one row per identity token
CREATE TABLE IF NOT EXISTS client_identity (
    id {{serial}},
    unique_id TEXT NOT NULL UNIQUE,
    ip TEXT NOT NULL DEFAULT '',
    user_agent TEXT NOT NULL DEFAULT '',
    region TEXT NOT NULL DEFAULT '',
    device TEXT NOT NULL DEFAULT '',
    os TEXT NOT NULL DEFAULT '',
    browser TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);

-- Admission penalties, at most one enabled row per identity
CREATE TABLE IF NOT EXISTS blacklist (
    id {{serial}},
    identity_token TEXT NOT NULL,
    ip TEXT NOT NULL DEFAULT '',
    cookies TEXT NOT NULL DEFAULT '',
    added_at BIGINT NOT NULL,
    enabled BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE INDEX IF NOT EXISTS idx_blacklist_identity ON blacklist(identity_token, enabled);

-- Restaurants
CREATE TABLE IF NOT EXISTS restaurant (
    id {{serial}},
    name TEXT NOT NULL,
    weight INTEGER NOT NULL DEFAULT 1 CHECK (weight BETWEEN 0 AND 100),
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'disabled')),
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_restaurant_active_name ON restaurant(name) WHERE status = 'active';

-- Spin results
CREATE TABLE IF NOT EXISTS selection (
    id {{serial}},
    restaurant_id BIGINT NOT NULL REFERENCES restaurant(id),
    create_user_id BIGINT NOT NULL REFERENCES client_identity(id),
    ip TEXT NOT NULL DEFAULT '',
    spun_at BIGINT NOT NULL,
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'disabled'))
);

CREATE INDEX IF NOT EXISTS idx_selection_spun_at ON selection(spun_at);

-- Request journal, trimmed to maxRequestLogRows
CREATE TABLE IF NOT EXISTS request_log (
    id {{serial}},
    request_time BIGINT NOT NULL,
    ip TEXT NOT NULL DEFAULT '',
    method TEXT NOT NULL,
    url TEXT NOT NULL,
    status INTEGER NOT NULL,
    user_agent TEXT NOT NULL DEFAULT '',
    region TEXT NOT NULL DEFAULT '',
    device TEXT NOT NULL DEFAULT '',
    os TEXT NOT NULL DEFAULT '',
    browser TEXT NOT NULL DEFAULT ''
);

-- Websocket connect/disconnect journal
CREATE TABLE IF NOT EXISTS ws_log (
    id {{serial}},
    logged_at BIGINT NOT NULL,
    action TEXT NOT NULL,
    identity_token TEXT NOT NULL DEFAULT '',
    ip TEXT NOT NULL DEFAULT '',
    region TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS version (
    id INTEGER PRIMARY KEY,
    version TEXT NOT NULL
);

INSERT INTO version (id, version) VALUES (1, '1.0.0') ON CONFLICT (id) DO NOTHING;
`
