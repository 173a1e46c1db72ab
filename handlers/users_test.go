// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/likek/what-to-eat/models"
	"github.com/likek/what-to-eat/testutil"
)

func TestUserInfo(t *testing.T) {
	store := testutil.SetupTestDB(t)
	handler := NewUserHandler(store)
	ident := testutil.CreateTestIdentity(t, store, tokenA)

	t.Run("known identity", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.UserInfo(w, asIdentity(httptest.NewRequest("GET", "/api/userInfo", nil), ident))
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp struct {
			Data models.ClientIdentity `json:"data"`
		}
		testutil.AssertJSON(t, w, &resp)
		assert.Equal(t, ident.ID, resp.Data.ID)
		assert.Equal(t, "local", resp.Data.Region)
	})

	t.Run("unknown identity", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.UserInfo(w, asIdentity(httptest.NewRequest("GET", "/api/userInfo", nil), models.ClientIdentity{UniqueID: tokenB}))
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("no identity", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.UserInfo(w, httptest.NewRequest("GET", "/api/userInfo", nil))
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestRegister(t *testing.T) {
	handler := NewUserHandler(testutil.SetupTestDB(t))

	w := httptest.NewRecorder()
	handler.Register(w, httptest.NewRequest("GET", "/register", nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Empty(t, w.Body.String())
}

func TestVersion(t *testing.T) {
	handler := NewUserHandler(testutil.SetupTestDB(t))

	w := httptest.NewRecorder()
	handler.Version(w, httptest.NewRequest("GET", "/api/version", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.VersionResponse
	testutil.AssertJSON(t, w, &resp)
	assert.Equal(t, "1.0.0", resp.Version)
}
