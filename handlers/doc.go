// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the what-to-eat API.

# Handler Types

Each handler is a struct over the narrow store interface it needs:

  - RestaurantHandler: list, create, update, soft delete
  - SpinHandler: weighted draw through the selection engine
  - HistoryHandler: today's selections and clearing the round
  - UserHandler: registration, caller profile, version
  - RealtimeHandler: websocket endpoint feeding the realtime hub

	restaurantHandler := handlers.NewRestaurantHandler(store, hub)

# Events

Mutating handlers broadcast only after the write succeeds, and never to the
identity that made the request:

	POST   /api/restaurants      → create_restaurant
	PUT    /api/restaurants/{id} → update_restaurant
	DELETE /api/restaurants/{id} → delete_restaurant
	POST   /api/spin             → spin
	DELETE /api/history          → delete_today_history

# Errors

Validation failures are 400, unknown restaurants and failed draws are 404,
datastore failures are logged and returned as 500. Bodies use
middleware.ErrorResponse.
*/
package handlers
