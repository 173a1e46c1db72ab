// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CookieName is the cookie carrying the identity token
const CookieName = "uniqueId"

// CookieMaxAge keeps the identity for roughly ten years
const CookieMaxAge = 10 * 365 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token format")

// NewIdentityToken creates a random, globally unique identity token
func NewIdentityToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate identity token: %w", err)
	}
	return id.String(), nil
}

// ValidateToken rejects cookie values that were not issued by NewIdentityToken
func ValidateToken(token string) error {
	if _, err := uuid.Parse(token); err != nil {
		return ErrInvalidToken
	}
	return nil
}

// TokenFromRequest returns the identity token carried by the request, or "" when
// the cookie is missing or malformed.
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	token := strings.TrimSpace(c.Value)
	if ValidateToken(token) != nil {
		return ""
	}
	return token
}

// IdentityCookie builds the long-lived, http-only, strict same-site cookie for token
func IdentityCookie(token, path string) *http.Cookie {
	if path == "" {
		path = "/"
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     path,
		MaxAge:   int(CookieMaxAge / time.Second),
		Expires:  time.Now().Add(CookieMaxAge),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}
