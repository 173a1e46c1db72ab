// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/likek/what-to-eat/db"
	"github.com/likek/what-to-eat/models"
	"github.com/likek/what-to-eat/testutil"
)

func TestCreateSchema_Idempotent(t *testing.T) {
	store := testutil.SetupTestDB(t)

	require.NoError(t, db.CreateSchema(store.DB(), db.SQLite))

	version, err := store.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", version)
}

func TestUpsertIdentity(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()

	first := testutil.CreateTestIdentity(t, store, "token-a")
	require.NotZero(t, first.ID)

	later := time.Now().Add(time.Hour)
	again := models.ClientIdentity{
		UniqueID:  "token-a",
		IP:        "10.0.0.9",
		UserAgent: "other-agent",
		Region:    "unknown",
		CreatedAt: later,
		UpdatedAt: later,
	}
	require.NoError(t, store.UpsertIdentity(ctx, &again))

	assert.Equal(t, first.ID, again.ID, "same token must reuse the row")
	assert.Equal(t, first.CreatedAt.UnixMilli(), again.CreatedAt.UnixMilli(), "created_at is never refreshed")

	stored, err := store.IdentityByToken(ctx, "token-a")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.9", stored.IP)
	assert.Equal(t, "other-agent", stored.UserAgent)
	assert.Equal(t, later.UnixMilli(), stored.UpdatedAt.UnixMilli())

	var count int
	require.NoError(t, store.DB().QueryRow("SELECT COUNT(*) FROM client_identity").Scan(&count))
	assert.Equal(t, 1, count)

	_, err = store.IdentityByToken(ctx, "missing")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestBlacklistLifecycle(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()

	_, err := store.ActiveBlacklistEntry(ctx, "token-a")
	require.ErrorIs(t, err, db.ErrNotFound)

	entry := models.BlacklistEntry{IdentityToken: "token-a", IP: "1.2.3.4", Cookies: "{}", AddedAt: time.Now()}
	require.NoError(t, store.InsertBlacklistEntry(ctx, &entry))
	assert.True(t, entry.Enabled)

	active, err := store.ActiveBlacklistEntry(ctx, "token-a")
	require.NoError(t, err)
	assert.Equal(t, entry.ID, active.ID)
	assert.Equal(t, "1.2.3.4", active.IP)
	assert.Equal(t, entry.AddedAt.UnixMilli(), active.AddedAt.UnixMilli())

	require.NoError(t, store.ExpireBlacklist(ctx, "token-a"))

	_, err = store.ActiveBlacklistEntry(ctx, "token-a")
	assert.ErrorIs(t, err, db.ErrNotFound)

	count, err := store.CountActiveBlacklistEntries(ctx, "token-a")
	require.NoError(t, err)
	assert.Zero(t, count)

	var total int
	require.NoError(t, store.DB().QueryRow("SELECT COUNT(*) FROM blacklist").Scan(&total))
	assert.Equal(t, 1, total, "expired rows are kept as history")
}

func TestRestaurantCRUD(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()

	pizza := testutil.CreateTestRestaurant(t, store, "Pizza", 5)
	sushi := testutil.CreateTestRestaurant(t, store, "Sushi", 0)

	dup := models.Restaurant{Name: "Pizza", Weight: 1}
	assert.ErrorIs(t, store.CreateRestaurant(ctx, &dup), db.ErrDuplicateName)

	rename := models.Restaurant{ID: sushi.ID, Name: "Pizza", Weight: 1, UpdatedAt: time.Now()}
	assert.ErrorIs(t, store.UpdateRestaurant(ctx, &rename), db.ErrDuplicateName)

	rename = models.Restaurant{ID: sushi.ID, Name: "Ramen", Weight: 7, UpdatedAt: time.Now()}
	require.NoError(t, store.UpdateRestaurant(ctx, &rename))
	assert.Equal(t, "Ramen", rename.Name)
	assert.Equal(t, 7, rename.Weight)
	assert.Equal(t, models.StatusActive, rename.Status)

	require.NoError(t, store.DisableRestaurant(ctx, pizza.ID, time.Now()))
	assert.ErrorIs(t, store.DisableRestaurant(ctx, pizza.ID, time.Now()), db.ErrNotFound)

	active, err := store.ActiveRestaurants(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Ramen", active[0].Name)

	// Name uniqueness only applies among active rows
	again := testutil.CreateTestRestaurant(t, store, "Pizza", 3)
	assert.NotEqual(t, pizza.ID, again.ID)

	disabled, err := store.RestaurantByID(ctx, pizza.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDisabled, disabled.Status)
	assert.True(t, disabled.Disabled)

	missing := models.Restaurant{ID: 9999, Name: "Ghost", Weight: 1}
	assert.ErrorIs(t, store.UpdateRestaurant(ctx, &missing), db.ErrNotFound)
}

func TestDaySelections(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()

	user := testutil.CreateTestIdentity(t, store, "token-a")
	pizza := testutil.CreateTestRestaurant(t, store, "Pizza", 1)
	tacos := testutil.CreateTestRestaurant(t, store, "Tacos", 1)

	now := time.Now()
	start, _ := db.DayBounds(now)

	first := testutil.CreateTestSelection(t, store, pizza.ID, user.ID, start.Add(time.Minute))
	second := testutil.CreateTestSelection(t, store, tacos.ID, user.ID, start.Add(2*time.Minute))
	testutil.CreateTestSelection(t, store, pizza.ID, user.ID, start.Add(-time.Hour)) // yesterday

	today, err := store.DaySelections(ctx, now, db.HistoryLimit)
	require.NoError(t, err)
	require.Len(t, today, 2)
	assert.Equal(t, second.ID, today[0].ID, "newest first")
	assert.Equal(t, "Tacos", today[0].Name)
	assert.Equal(t, first.ID, today[1].ID)

	limited, err := store.DaySelections(ctx, now, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	cleared, err := store.DisableDaySelections(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, cleared)

	today, err = store.DaySelections(ctx, now, db.HistoryLimit)
	require.NoError(t, err)
	assert.Empty(t, today)

	var total int
	require.NoError(t, store.DB().QueryRow("SELECT COUNT(*) FROM selection").Scan(&total))
	assert.Equal(t, 3, total, "clearing never deletes rows")

	// Restoring the flag brings the rows back
	_, err = store.DB().Exec("UPDATE selection SET status = 'active'")
	require.NoError(t, err)
	today, err = store.DaySelections(ctx, now, db.HistoryLimit)
	require.NoError(t, err)
	assert.Len(t, today, 2)
}

func TestRequestLogTrim(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordRequest(ctx, models.RequestLog{
			RequestTime: time.Now(),
			IP:          "127.0.0.1",
			Method:      "GET",
			URL:         "/api/restaurants",
			Status:      200,
		}))
	}

	require.NoError(t, store.TrimRequestLog(ctx, 2))

	var ids []int64
	rows, err := store.DB().Query("SELECT id FROM request_log ORDER BY id")
	require.NoError(t, err)
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Close())
	assert.Equal(t, []int64{4, 5}, ids)

	require.NoError(t, store.RecordWS(ctx, models.WSLog{Time: time.Now(), Action: models.WSActionConnect, IdentityToken: "token-a"}))
}
