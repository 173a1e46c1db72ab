// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the what-to-eat server.

what-to-eat is a shared lunch picker: people add restaurants with a weight,
anyone can spin a weighted draw, and every open browser sees new
restaurants, draws, and who is online in real time.

# Starting the Server

With no configuration the server listens on port 3000 and keeps its data in
a local sqlite file:

	go run .

Or with flags:

	go run . -p 8080 -t postgres -d "postgres://..."

A .env file in the working directory is loaded before flags are parsed.

# Configuration

  - PORT (-p): Server port (default: 3000)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): sqlite path or PostgreSQL connection string
  - BASE_PATH (--base-path): Prefix for every route
  - STATIC_DIR (--static-dir): Frontend files to serve at the base path
  - MAX_REQUESTS_PER_MINUTE (--max-requests-per-minute): Per-IP limit (default: 60)
  - BLACKLIST_DURATION (--blacklist-duration): Penalty after overflow (default: 10m)
  - LOG_FILE (--log-file), LOG_LEVEL (--log-level)

# Architecture

  - identity: anonymous uniqueId cookie and client profile
  - admission: blacklist check and rate limiter
  - selection: weighted draw
  - realtime: websocket registry and event fanout
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers, client IP
  - db: Schema and store for sqlite and PostgreSQL
  - metrics, logging, cliparse, auth, models

See package documentation for each component.
*/
package main
