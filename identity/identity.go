// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/mssola/useragent"

	"github.com/likek/what-to-eat/auth"
	"github.com/likek/what-to-eat/middleware"
	"github.com/likek/what-to-eat/models"
)

// Store is the subset of db.Store the issuer writes to
type Store interface {
	UpsertIdentity(ctx context.Context, ident *models.ClientIdentity) error
}

// RegionResolver maps an IP address to a human readable region
type RegionResolver interface {
	Resolve(ip string) string
}

// LocalResolver labels loopback and private addresses "local" and everything else "unknown".
type LocalResolver struct{}

func (LocalResolver) Resolve(ip string) string {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "unknown"
	}
	addr = addr.Unmap()
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() {
		return "local"
	}
	return "unknown"
}

type DeviceInfo struct {
	Device  string
	OS      string
	Browser string
}

// ParseUserAgent splits a User-Agent header into device, OS, and browser labels.
// Missing parts are reported as "Other".
func ParseUserAgent(header string) DeviceInfo {
	ua := useragent.New(header)

	info := DeviceInfo{
		Device:  orOther(ua.Platform()),
		OS:      orOther(ua.OS()),
		Browser: "Other",
	}

	switch {
	case ua.Bot():
		info.Device = "Bot"
	case ua.Mobile() && info.Device != "Other":
		info.Device += " (mobile)"
	}

	if name, version := ua.Browser(); name != "" {
		info.Browser = strings.TrimSpace(name + " " + version)
	}

	return info
}

func orOther(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Other"
	}
	return s
}

// Issuer hands every client a durable identity token and keeps its profile row current.
type Issuer struct {
	store      Store
	regions    RegionResolver
	cookiePath string
	now        func() time.Time
}

func NewIssuer(store Store, regions RegionResolver, cookiePath string) *Issuer {
	if regions == nil {
		regions = LocalResolver{}
	}
	return &Issuer{
		store:      store,
		regions:    regions,
		cookiePath: cookiePath,
		now:        time.Now,
	}
}

// Ensure returns the identity of the request's client. A client without a valid
// token cookie gets a new token, set on w as a long-lived cookie. In both cases
// the profile row is upserted, so repeated calls never duplicate rows.
func (i *Issuer) Ensure(w http.ResponseWriter, r *http.Request) (models.ClientIdentity, error) {
	token := auth.TokenFromRequest(r)
	if token == "" {
		var err error
		token, err = auth.NewIdentityToken()
		if err != nil {
			return models.ClientIdentity{}, err
		}
		http.SetCookie(w, auth.IdentityCookie(token, i.cookiePath))
		slog.Debug("identity issued", "remote", r.RemoteAddr)
	}

	ip := middleware.GetClientIP(r)
	device := ParseUserAgent(r.UserAgent())
	now := i.now()

	ident := models.ClientIdentity{
		UniqueID:  token,
		IP:        ip,
		UserAgent: r.UserAgent(),
		Region:    i.regions.Resolve(ip),
		Device:    device.Device,
		OS:        device.OS,
		Browser:   device.Browser,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := i.store.UpsertIdentity(r.Context(), &ident); err != nil {
		return models.ClientIdentity{}, fmt.Errorf("failed to upsert identity: %w", err)
	}

	return ident, nil
}

// Middleware runs Ensure before next and stores the identity on the request context.
func (i *Issuer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, err := i.Ensure(w, r)
		if err != nil {
			slog.Error("failed to ensure identity", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		next.ServeHTTP(w, r.WithContext(middleware.WithIdentity(r.Context(), ident)))
	})
}
