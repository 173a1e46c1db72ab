// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/likek/what-to-eat/models"
	"github.com/likek/what-to-eat/testutil"
)

func intPtr(v int) *int { return &v }

func TestCreateRestaurant(t *testing.T) {
	store := testutil.SetupTestDB(t)
	hub := &recordingHub{}
	handler := NewRestaurantHandler(store, hub)

	tests := []struct {
		name           string
		body           any
		expectedStatus int
		expectedWeight int
	}{
		{
			name:           "default weight",
			body:           models.RestaurantRequest{Name: "Noodle House"},
			expectedStatus: http.StatusOK,
			expectedWeight: models.DefaultWeight,
		},
		{
			name:           "explicit weight with padding",
			body:           models.RestaurantRequest{Name: "  Dumpling Bar  ", Weight: intPtr(7)},
			expectedStatus: http.StatusOK,
			expectedWeight: 7,
		},
		{
			name:           "zero weight is allowed",
			body:           models.RestaurantRequest{Name: "Salad Place", Weight: intPtr(0)},
			expectedStatus: http.StatusOK,
			expectedWeight: 0,
		},
		{
			name:           "duplicate name",
			body:           models.RestaurantRequest{Name: "Noodle House"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "empty name",
			body:           models.RestaurantRequest{Name: "   "},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "weight too large",
			body:           models.RestaurantRequest{Name: "Steakhouse", Weight: intPtr(101)},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "negative weight",
			body:           models.RestaurantRequest{Name: "Steakhouse", Weight: intPtr(-1)},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid json",
			body:           "not json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(hub.sent())

			req := testutil.MakeRequest("POST", "/api/restaurants", tt.body, nil)
			req = asIdentity(req, models.ClientIdentity{UniqueID: tokenA})
			w := httptest.NewRecorder()
			handler.Create(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus != http.StatusOK {
				assert.Len(t, hub.sent(), before, "no broadcast on failure")
				return
			}

			var raw struct {
				Data map[string]any `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
			assert.Equal(t, false, raw.Data["disabled"])
			assert.NotContains(t, raw.Data, "status")

			var resp struct {
				Data models.Restaurant `json:"data"`
			}
			testutil.AssertJSON(t, w, &resp)
			assert.NotZero(t, resp.Data.ID)
			assert.Equal(t, tt.expectedWeight, resp.Data.Weight)
			assert.False(t, resp.Data.Disabled)

			sent := hub.sent()
			require.Len(t, sent, before+1)
			last := sent[len(sent)-1]
			assert.Equal(t, models.EventCreateRestaurant, last.event)
			assert.False(t, last.filter(tokenA), "origin is excluded")
			assert.True(t, last.filter(tokenB))
		})
	}
}

func TestUpdateRestaurant(t *testing.T) {
	store := testutil.SetupTestDB(t)
	hub := &recordingHub{}
	handler := NewRestaurantHandler(store, hub)

	pizza := testutil.CreateTestRestaurant(t, store, "Pizza", 3)
	testutil.CreateTestRestaurant(t, store, "Sushi", 3)

	update := func(id string, body any) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("PUT", "/api/restaurants/"+id, body, nil)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		handler.Update(w, req)
		return w
	}

	pizzaID := strconv.FormatInt(pizza.ID, 10)

	w := update(pizzaID, models.RestaurantRequest{Name: "Pizza Palace", Weight: intPtr(9)})
	testutil.AssertStatus(t, w, http.StatusOK)
	var resp struct {
		Data models.Restaurant `json:"data"`
	}
	testutil.AssertJSON(t, w, &resp)
	assert.Equal(t, "Pizza Palace", resp.Data.Name)
	assert.Equal(t, 9, resp.Data.Weight)

	testutil.AssertStatus(t, update(pizzaID, models.RestaurantRequest{Name: "Sushi"}), http.StatusBadRequest)
	testutil.AssertStatus(t, update("999", models.RestaurantRequest{Name: "Ghost"}), http.StatusNotFound)
	testutil.AssertStatus(t, update("abc", models.RestaurantRequest{Name: "Ghost"}), http.StatusBadRequest)

	sent := hub.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, models.EventUpdateRestaurant, sent[0].event)

	// Omitted weight falls back to the default
	w = update(pizzaID, models.RestaurantRequest{Name: "Pizza Palace"})
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &resp)
	assert.Equal(t, models.DefaultWeight, resp.Data.Weight)
}

func TestDeleteRestaurant(t *testing.T) {
	store := testutil.SetupTestDB(t)
	hub := &recordingHub{}
	handler := NewRestaurantHandler(store, hub)

	tacos := testutil.CreateTestRestaurant(t, store, "Tacos", 2)
	id := strconv.FormatInt(tacos.ID, 10)

	req := httptest.NewRequest("DELETE", "/api/restaurants/"+id, nil)
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()
	handler.Delete(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Empty(t, w.Body.String())

	sent := hub.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, models.EventDeleteRestaurant, sent[0].event)
	assert.Equal(t, models.IDPayload{ID: tacos.ID}, sent[0].data)

	// Gone from the list
	w = httptest.NewRecorder()
	handler.List(w, httptest.NewRequest("GET", "/api/restaurants", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var list struct {
		Data []models.Restaurant `json:"data"`
	}
	testutil.AssertJSON(t, w, &list)
	assert.Empty(t, list.Data)

	// Row kept and the name is free again
	kept, err := store.RestaurantByID(context.Background(), tacos.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDisabled, kept.Status)
	assert.True(t, kept.Disabled)
	testutil.CreateTestRestaurant(t, store, "Tacos", 2)

	// Deleting twice is a 404
	w = httptest.NewRecorder()
	handler.Delete(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

// TestConcurrentDuplicateCreates verifies that simultaneous creates with the
// same name leave exactly one active restaurant
func TestConcurrentDuplicateCreates(t *testing.T) {
	store := testutil.SetupTestDB(t)
	handler := NewRestaurantHandler(store, &recordingHub{})

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := testutil.MakeRequest("POST", "/api/restaurants", models.RestaurantRequest{Name: "Ramen"}, nil)
			w := httptest.NewRecorder()
			handler.Create(w, req)
			if w.Code == http.StatusOK {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successCount.Load())

	restaurants, err := store.ActiveRestaurants(context.Background())
	require.NoError(t, err)
	assert.Len(t, restaurants, 1)
}
