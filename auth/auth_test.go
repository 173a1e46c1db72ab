// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdentityToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := NewIdentityToken()
		require.NoError(t, err)
		require.NoError(t, ValidateToken(token))
		assert.False(t, seen[token], "duplicate token %s", token)
		seen[token] = true
	}
}

func TestValidateToken(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"uuid", "1b4e28ba-2fa1-11d2-883f-0016d3cca427", false},
		{"empty", "", true},
		{"garbage", "not-a-token", true},
		{"sql", "' OR 1=1 --", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateToken(tt.token)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTokenFromRequest(t *testing.T) {
	token, err := NewIdentityToken()
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/restaurants", nil)
	assert.Empty(t, TokenFromRequest(req), "no cookie")

	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	assert.Equal(t, token, TokenFromRequest(req))

	bad := httptest.NewRequest("GET", "/api/restaurants", nil)
	bad.AddCookie(&http.Cookie{Name: CookieName, Value: "forged"})
	assert.Empty(t, TokenFromRequest(bad), "malformed cookie is ignored")
}

func TestIdentityCookie(t *testing.T) {
	c := IdentityCookie("abc", "")

	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, "abc", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, int((10 * 365 * 24 * time.Hour).Seconds()), c.MaxAge)

	assert.Equal(t, "/eat", IdentityCookie("abc", "/eat").Path)
}
