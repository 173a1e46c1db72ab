// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/likek/what-to-eat/cliparse"
	"github.com/likek/what-to-eat/db"
	"github.com/likek/what-to-eat/models"
)

// IdentityCookie mirrors auth.CookieName without importing it
const IdentityCookie = "uniqueId"

// SetupTestDB creates a fresh sqlite database with the full schema
func SetupTestDB(t *testing.T) *db.Store {
	t.Helper()

	conn, err := db.Open(db.SQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.SQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return db.NewStore(conn, db.SQLite)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                 3000,
		DatabaseType:         cliparse.DatabaseSQLite,
		DatabaseURL:          ":memory:",
		MaxRequestsPerMinute: 60,
		BlacklistDuration:    time.Minute,
		LogLevel:             "info",
	}
}

// CreateTestIdentity stores a client identity for token and returns it
func CreateTestIdentity(t *testing.T, store *db.Store, token string) models.ClientIdentity {
	t.Helper()

	now := time.Now()
	ident := models.ClientIdentity{
		UniqueID:  token,
		IP:        "127.0.0.1",
		UserAgent: "go-test",
		Region:    "local",
		Device:    "Other",
		OS:        "Other",
		Browser:   "Go-http-client",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.UpsertIdentity(context.Background(), &ident); err != nil {
		t.Fatalf("Failed to create test identity: %v", err)
	}

	return ident
}

// CreateTestRestaurant adds an active restaurant and returns it
func CreateTestRestaurant(t *testing.T, store *db.Store, name string, weight int) models.Restaurant {
	t.Helper()

	now := time.Now()
	r := models.Restaurant{Name: name, Weight: weight, CreatedAt: now, UpdatedAt: now}
	if err := store.CreateRestaurant(context.Background(), &r); err != nil {
		t.Fatalf("Failed to create test restaurant: %v", err)
	}

	return r
}

// CreateTestSelection records a selection at the given time
func CreateTestSelection(t *testing.T, store *db.Store, restaurantID, creatorID int64, at time.Time) models.Selection {
	t.Helper()

	sel := models.Selection{
		RestaurantID: restaurantID,
		CreatorID:    creatorID,
		IP:           "127.0.0.1",
		Timestamp:    at.Unix(),
	}
	if err := store.InsertSelection(context.Background(), &sel); err != nil {
		t.Fatalf("Failed to create test selection: %v", err)
	}

	return sel
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// WithIdentity attaches the identity cookie to a request
func WithIdentity(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: IdentityCookie, Value: token})
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
