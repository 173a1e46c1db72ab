// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package identity ensures every HTTP client carries a durable anonymous
identity and keeps its profile row current.

The Issuer middleware runs before everything else on the API surface:

	issuer := identity.NewIssuer(store, identity.LocalResolver{}, basePath)
	mux.Handle("GET /api/restaurants", issuer.Middleware(handler))

A request without a valid uniqueId cookie gets a fresh token and a
Set-Cookie header. Every request upserts the client_identity row keyed by
the token with the latest IP, user agent, region, device, OS, and browser.
Downstream handlers read the result with middleware.IdentityFromContext.
*/
package identity
