// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /api/restaurants", middleware.WithLogging(store, handler))

Logs request start (method, path, remote) and completion (status,
duration_ms). When a RequestRecorder is passed, each request is also
written to the request journal together with the client's region, device,
OS, and browser taken from the request context.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, PUT, DELETE, OPTIONS with credentials, so the
identity cookie survives a dev server on another origin.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.MessageResponse(w, http.StatusTooManyRequests, "message")

Parse JSON request bodies:

	var req models.RestaurantRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

The router resolves the client address once per request:

	handler = middleware.WithClientIP(cfg.TrustedProxies, mux)
	ip := middleware.GetClientIP(r)

X-Forwarded-For and X-Real-IP are honoured only when the connecting peer
is a configured trusted proxy; otherwise the peer address is used. The
forwarded chain is read from the nearest hop outwards, stopping at the
first address that is not a trusted proxy.

Addresses are normalized: IPv4-mapped IPv6 addresses are unwrapped and
::1 becomes 127.0.0.1. The result keys the rate limiter.

# Identity Context

The identity middleware stores the resolved client on the request context:

	ident, ok := middleware.IdentityFromContext(r.Context())
	token := middleware.TokenFromContext(r.Context())
*/
package middleware
