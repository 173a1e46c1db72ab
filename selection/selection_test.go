// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package selection

import (
	"context"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/likek/what-to-eat/models"
	"github.com/likek/what-to-eat/testutil"
)

const spinToken = "0b7d6c2e-3a41-4f8e-a1c9-7e2d5b6f8a90"

func TestDraw_Errors(t *testing.T) {
	_, err := Draw(nil, rand.Reader)
	assert.ErrorIs(t, err, ErrNoRestaurants)

	_, err = Draw([]models.Restaurant{{ID: 1, Weight: 0}, {ID: 2, Weight: 0}}, rand.Reader)
	assert.ErrorIs(t, err, ErrAllWeightsZero)
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestDraw_RandomSourceFailure(t *testing.T) {
	_, err := Draw([]models.Restaurant{{ID: 1, Weight: 3}}, brokenReader{})
	assert.Error(t, err)
}

func TestDraw_Distribution(t *testing.T) {
	restaurants := []models.Restaurant{
		{ID: 1, Name: "noodles", Weight: 10},
		{ID: 2, Name: "closed", Weight: 0},
		{ID: 3, Name: "dumplings", Weight: 5},
	}

	counts := map[int64]int{}
	const trials = 30000
	for i := 0; i < trials; i++ {
		r, err := Draw(restaurants, rand.Reader)
		require.NoError(t, err)
		counts[r.ID]++
	}

	assert.Zero(t, counts[2], "zero weight is never selected")
	require.NotZero(t, counts[3])
	assert.InDelta(t, 2.0, float64(counts[1])/float64(counts[3]), 0.15)
}

func TestSpin(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()
	creator := testutil.CreateTestIdentity(t, store, spinToken)
	engine := NewEngine(store, nil)

	t.Run("no restaurants", func(t *testing.T) {
		_, err := engine.Spin(ctx, spinToken, "10.0.0.1")
		assert.ErrorIs(t, err, ErrNoRestaurants)
		assertSelections(t, store, 0)
	})

	zero := testutil.CreateTestRestaurant(t, store, "closed today", 0)

	t.Run("all weights zero", func(t *testing.T) {
		_, err := engine.Spin(ctx, spinToken, "10.0.0.1")
		assert.ErrorIs(t, err, ErrAllWeightsZero)
		assertSelections(t, store, 0)
	})

	hotpot := testutil.CreateTestRestaurant(t, store, "hotpot", 5)

	t.Run("unknown identity", func(t *testing.T) {
		_, err := engine.Spin(ctx, "ffffffff-ffff-4fff-8fff-ffffffffffff", "10.0.0.1")
		assert.ErrorIs(t, err, ErrIdentityNotFound)
		assertSelections(t, store, 0)
	})

	t.Run("records the draw", func(t *testing.T) {
		fixed := time.Date(2025, 6, 1, 12, 30, 0, 0, time.Local)
		engine.now = func() time.Time { return fixed }
		defer func() { engine.now = time.Now }()

		res, err := engine.Spin(ctx, spinToken, "10.0.0.1")
		require.NoError(t, err)

		assert.Equal(t, hotpot.ID, res.Restaurant.ID)
		assert.NotEqual(t, zero.ID, res.Restaurant.ID)
		assert.Equal(t, creator.ID, res.Selection.CreatorID)
		assert.NotZero(t, res.Selection.ID)

		resp := res.Response()
		assert.Equal(t, "hotpot", resp.Name)
		assert.Equal(t, "10.0.0.1", resp.IP)
		assert.Equal(t, fixed.Format(time.RFC3339), resp.Timestamp)

		history, err := store.DaySelections(ctx, fixed, 20)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, res.Selection.ID, history[0].ID)
	})
}

func assertSelections(t *testing.T, store interface {
	DaySelections(context.Context, time.Time, uint64) ([]models.Selection, error)
}, want int) {
	t.Helper()
	got, err := store.DaySelections(context.Background(), time.Now(), 100)
	require.NoError(t, err)
	assert.Len(t, got, want)
}
