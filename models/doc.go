// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RestaurantRequest: name, weight (optional, defaults to 1)

# Response Types

Types for JSON responses:

  - DataResponse: {data: ...} envelope used by list and CRUD endpoints
  - SpinResponse: name, ip, timestamp
  - VersionResponse: version
  - BlacklistedResponse: message, black_time_left (seconds)
  - MessageResponse: message (rate limit and admission failures)
  - ErrorResponse: error, message

# Domain Types

Persisted entities:

  - ClientIdentity: anonymous client profile keyed by its identity token
  - BlacklistEntry: time-boxed admission penalty for an identity
  - Restaurant: weighted candidate, soft-deleted through Status
  - Selection: one spin result; HistoryItem is its client-facing shape
  - RequestLog, WSLog: operational journals

# Realtime Types

Every pushed frame is an Event:

	{"event": "spin", "data": {...}}

OnlineUsers is the payload of online_users_update. OnlineUser carries only
public fields; the identity token never leaves the server.

# Constants

Status values:

	StatusActive   = "active"
	StatusDisabled = "disabled"

Weights range from MinWeight (0, never selected) to MaxWeight (100).
*/
package models
