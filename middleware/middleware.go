// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/likek/what-to-eat/models"
)

// RequestRecorder persists one journal row per request
type RequestRecorder interface {
	RecordRequest(ctx context.Context, entry models.RequestLog) error
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// WithLogging wraps a handler with request logging. When recorder is not nil
// each request is also written to the request journal.
func WithLogging(recorder RequestRecorder, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Log request
		slog.Info("request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
		)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		// Call the next handler
		next(sw, r)

		// Log completion
		duration := time.Since(start)
		slog.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", duration.Milliseconds(),
		)

		if recorder == nil {
			return
		}

		entry := models.RequestLog{
			RequestTime: start,
			IP:          GetClientIP(r),
			Method:      r.Method,
			URL:         requestURL(r),
			Status:      sw.status,
			UserAgent:   r.UserAgent(),
		}
		if ident, ok := IdentityFromContext(r.Context()); ok {
			entry.Region = ident.Region
			entry.Device = ident.Device
			entry.OS = ident.OS
			entry.Browser = ident.Browser
		}
		if err := recorder.RecordRequest(context.WithoutCancel(r.Context()), entry); err != nil {
			slog.Error("failed to record request", "error", err)
		}
	}
}

func requestURL(r *http.Request) string {
	u := r.URL.RequestURI()
	if decoded, err := url.PathUnescape(u); err == nil {
		return decoded
	}
	return u
}

// JSONResponse writes a JSON response
func JSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse writes a JSON error response
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	JSONResponse(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// MessageResponse writes {"message": ...}, the shape admission failures use
func MessageResponse(w http.ResponseWriter, statusCode int, message string) {
	JSONResponse(w, statusCode, models.MessageResponse{Message: message})
}

// ParseJSONBody parses the request body into the given struct
func ParseJSONBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}

// CORS middleware allows cross-origin requests from the frontend
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Allow requests from Vite dev server and production domains
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NormalizeIP unwraps IPv4-mapped IPv6 addresses and maps the IPv6 loopback to 127.0.0.1
func NormalizeIP(ip string) string {
	switch {
	case ip == "":
		return "unknown ip"
	case ip == "::1":
		return "127.0.0.1"
	case strings.HasPrefix(ip, "::ffff:"):
		return strings.TrimPrefix(ip, "::ffff:")
	}
	return ip
}

type ctxKey int

const (
	identityKey ctxKey = iota
	clientIPKey
)

// WithIdentity stores the resolved client identity on the request context
func WithIdentity(ctx context.Context, ident models.ClientIdentity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// IdentityFromContext returns the identity placed by the identity middleware
func IdentityFromContext(ctx context.Context) (models.ClientIdentity, bool) {
	ident, ok := ctx.Value(identityKey).(models.ClientIdentity)
	return ident, ok
}

// TokenFromContext returns the identity token, or "" when the request has none
func TokenFromContext(ctx context.Context) string {
	ident, _ := IdentityFromContext(ctx)
	return ident.UniqueID
}
