// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package admission decides whether a request reaches its handler.

Every API request passes two stages, in this order:

 1. Blacklist check. The most recent enabled blacklist entry of the
    caller's identity is loaded. If its penalty window has elapsed the
    entry is disabled and the request continues, otherwise the request is
    refused with 403 and {message, black_time_left}.
 2. Rate limit. Requests are counted per client IP in fixed one-minute
    windows. A request over the limit is refused with 429 and the caller's
    identity is blacklisted for the configured duration.

Long-lived routes use Gate.BlacklistOnly, which skips the rate limit.

The client IP comes from middleware.GetClientIP, so a spoofed
X-Forwarded-For from an untrusted peer does not change the throttle key.
Penalty timestamps are compared at millisecond precision, the precision
they are stored at.

Throttling is keyed by address while the penalty is keyed by identity
token, so a client that changes address mid-penalty stays blocked.

Penalty insertion for one identity is serialized through a
singleflight.Group keyed by the token: concurrent overflows share a
single check-then-insert, which keeps at most one enabled entry per
identity.
*/
package admission
