// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package admission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/likek/what-to-eat/db"
	"github.com/likek/what-to-eat/models"
)

type BlacklistStore interface {
	ActiveBlacklistEntry(ctx context.Context, token string) (models.BlacklistEntry, error)
	ExpireBlacklist(ctx context.Context, token string) error
}

// Verdict is the outcome of a blacklist lookup. Remaining is zero when the
// identity is clear.
type Verdict struct {
	Blocked   bool
	Remaining time.Duration
}

// SecondsLeft is the remaining penalty rounded down to whole seconds
func (v Verdict) SecondsLeft() int64 {
	return int64(v.Remaining / time.Second)
}

// Blacklist enforces time-boxed penalties. Expired entries are disabled lazily
// by the first request that arrives after the penalty window.
type Blacklist struct {
	store    BlacklistStore
	duration time.Duration
}

func NewBlacklist(store BlacklistStore, duration time.Duration) *Blacklist {
	return &Blacklist{store: store, duration: duration}
}

func (b *Blacklist) Check(ctx context.Context, token string, now time.Time) (Verdict, error) {
	if token == "" {
		return Verdict{}, nil
	}

	entry, err := b.store.ActiveBlacklistEntry(ctx, token)
	if errors.Is(err, db.ErrNotFound) {
		return Verdict{}, nil
	}
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to look up blacklist: %w", err)
	}

	elapsed := now.Truncate(time.Millisecond).Sub(entry.AddedAt)
	if elapsed > b.duration {
		if err := b.store.ExpireBlacklist(ctx, token); err != nil {
			return Verdict{}, err
		}
		slog.Info("blacklist entry expired", "entry_id", entry.ID, "served", humanDuration(elapsed))
		return Verdict{}, nil
	}

	return Verdict{Blocked: true, Remaining: b.duration - elapsed}, nil
}

func blacklistedMessage(v Verdict) string {
	return fmt.Sprintf("You have been blacklisted and cannot access this resource. Access returns in %d seconds.", v.SecondsLeft())
}
