// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the what-to-eat API.

# Route Registration

NewRouter wires handlers, middleware, and the realtime hub into one handler:

	handler := router.NewRouter(store, hub, metrics.New(), cfg)

When cfg.BasePath is set every route below is served under it, and the
identity cookie is scoped to that path.

# Endpoints

Operational:

	GET /health  - Liveness
	GET /metrics - Prometheus exposition

Identity:

	GET /register     - Issue the uniqueId cookie
	GET /api/userInfo - Caller's profile
	GET /api/version  - Stored version string

Restaurants:

	GET    /api/restaurants      - Active restaurants
	POST   /api/restaurants      - Create
	PUT    /api/restaurants/{id} - Rename or reweight
	DELETE /api/restaurants/{id} - Soft delete

Selections:

	POST   /api/spin    - Weighted draw
	GET    /api/history - Today's selections, newest first
	DELETE /api/history - Soft-clear today

Realtime:

	GET /ws - Websocket upgrade

# Middleware Chain

API routes run identity issuance, request logging, and the admission gate
(blacklist, then rate limit) before the handler. The websocket route runs
identity issuance and the blacklist stage only.

Everything sits behind middleware.WithClientIP, which honours forwarding
headers only from the configured trusted proxies.
*/
package router
