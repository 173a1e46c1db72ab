// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles the connection, schema creation, and every query the
server runs.

# Connecting

Open supports the pure-Go sqlite driver (default) and PostgreSQL:

	conn, err := db.Open(db.SQLite, "what-to-eat.db")
	conn, err := db.Open(db.Postgres, "postgres://...")

sqlite connections are limited to a single open connection with a busy
timeout, so concurrent writers queue in the pool.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn, db.SQLite); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes,
and seeds the version row only when it is missing.

# Tables

  - client_identity: anonymous clients, unique per identity token
  - blacklist: admission penalties (enabled flag, lazily expired)
  - restaurant: weighted candidates, soft-deleted through status
  - selection: spin results, soft-cleared through status
  - request_log: request journal capped at 10000 rows
  - ws_log: websocket connect/disconnect journal
  - version: single row holding the frontend version

Timestamps are stored as Unix milliseconds, except selection.spun_at
which holds Unix seconds.

# Store

Store wraps the pool and builds queries with squirrel so the same code
targets both dialects:

	store := db.NewStore(conn, db.SQLite)
	restaurants, err := store.ActiveRestaurants(ctx)

Lookups return ErrNotFound when no row matches. Restaurant writes return
ErrDuplicateName when another active restaurant already has the name.
*/
package db
