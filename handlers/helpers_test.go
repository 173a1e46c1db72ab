// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"sync"

	"github.com/likek/what-to-eat/middleware"
	"github.com/likek/what-to-eat/models"
	"github.com/likek/what-to-eat/realtime"
)

type sentEvent struct {
	event  string
	data   any
	filter realtime.Filter
}

// recordingHub captures broadcasts instead of delivering them
type recordingHub struct {
	mu     sync.Mutex
	events []sentEvent
}

func (h *recordingHub) Broadcast(event string, data any, filter realtime.Filter) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, sentEvent{event: event, data: data, filter: filter})
	return 1
}

func (h *recordingHub) sent() []sentEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]sentEvent(nil), h.events...)
}

// asIdentity attaches ident to the request context the way the identity middleware does
func asIdentity(req *http.Request, ident models.ClientIdentity) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), ident))
}

const (
	tokenA = "6a1f3e2d-9b8c-4d7e-8f6a-5b4c3d2e1f0a"
	tokenB = "7b2e4f3a-0c9d-4e8f-9a7b-6c5d4e3f2a1b"
)
