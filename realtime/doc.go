// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package realtime fans domain events out to connected browsers.

A Hub maps each identity token to its single live connection. Events are
encoded once as {"event": ..., "data": ...} and handed to every matching
connection without blocking; a connection that is closed or whose buffer is
full simply misses the frame.

	hub.Broadcast(models.EventSpin, resp, realtime.ExcludeOrigin(token))

Presence changes (register and deregister) are coalesced by a Debouncer:
a burst of joins and leaves produces one online_users_update, sent to
everyone PresenceDelay after the last change.

Client wraps a github.com/coder/websocket connection with a buffered send
queue and a write goroutine.
*/
package realtime
