// Package storetest holds the behaviour every repository.Store implementation must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"habitgrid/internal/model"
	"habitgrid/internal/period"
	"habitgrid/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises s against the store contract. s must be empty.
func Run(t *testing.T, s repository.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("append rejects second log in same period", func(t *testing.T) {
		logs := s.Logs()
		require.NoError(t, logs.Append(ctx, "h-dup", "2025-01-06"))

		err := logs.Append(ctx, "h-dup", "2025-01-06")
		require.Error(t, err)
		var dup *repository.DuplicateKeyError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "h-dup", dup.HabitID)
		assert.Equal(t, "2025-01-06", dup.PeriodKey)

		counts, err := logs.CountByHabit(ctx, []string{"h-dup"})
		require.NoError(t, err)
		assert.Equal(t, 1, counts["h-dup"])
	})

	t.Run("different periods are independent", func(t *testing.T) {
		logs := s.Logs()
		require.NoError(t, logs.Append(ctx, "h-multi", "2025-01-01"))
		require.NoError(t, logs.Append(ctx, "h-multi", "2025-01-02"))
		require.NoError(t, logs.Append(ctx, "h-other", "2025-01-01"))

		counts, err := logs.CountByHabit(ctx, []string{"h-multi", "h-other", "h-none"})
		require.NoError(t, err)
		assert.Equal(t, 2, counts["h-multi"])
		assert.Equal(t, 1, counts["h-other"])
		assert.Zero(t, counts["h-none"])
	})

	t.Run("habits list in creation order", func(t *testing.T) {
		habits := s.Habits()
		base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
		for i, h := range []model.Habit{
			{ID: "b", UserID: "u1", Title: "Yoga", Cadence: period.Daily, Marker: "*", IsPublic: true},
			{ID: "a", UserID: "u2", Title: "Run", Cadence: period.Weekly, Marker: "+", IsPublic: true},
			{ID: "c", UserID: "u1", Title: "Secret", Cadence: period.Monthly, Marker: "-", IsPublic: false},
		} {
			h.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			require.NoError(t, habits.Create(ctx, &h))
		}

		public, err := habits.ListPublic(ctx)
		require.NoError(t, err)
		require.Len(t, public, 2)
		assert.Equal(t, "b", public[0].ID)
		assert.Equal(t, "a", public[1].ID)
		assert.Equal(t, period.Weekly, public[1].Cadence)

		own, err := habits.ListByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, own, 2)
		assert.Equal(t, []string{"b", "c"}, []string{own[0].ID, own[1].ID})

		got, err := habits.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "Run", got.Title)

		_, err = habits.Get(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("update is owner scoped", func(t *testing.T) {
		habits := s.Habits()
		err := habits.UpdateOwned(ctx, "u2", &model.Habit{ID: "b", Title: "Stolen", Marker: "!"})
		assert.ErrorIs(t, err, repository.ErrNotFound)

		require.NoError(t, habits.UpdateOwned(ctx, "u1", &model.Habit{ID: "b", Title: "Stretch", Marker: "~"}))
		got, err := habits.Get(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, "Stretch", got.Title)
		assert.Equal(t, "~", got.Marker)
		assert.Equal(t, period.Daily, got.Cadence)
	})

	t.Run("profiles upsert and resolve names", func(t *testing.T) {
		profiles := s.Profiles()
		require.NoError(t, profiles.Upsert(ctx, "u1", "Zara"))
		require.NoError(t, profiles.Upsert(ctx, "u1", "Zoe"))
		require.NoError(t, profiles.Upsert(ctx, "u2", ""))

		names, err := profiles.DisplayNames(ctx, []string{"u1", "u2", "u3"})
		require.NoError(t, err)
		assert.Equal(t, "Zoe", names["u1"])
		v, ok := names["u2"]
		assert.True(t, ok)
		assert.Empty(t, v)
		_, ok = names["u3"]
		assert.False(t, ok)

		p, err := profiles.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "Zoe", p.DisplayName)

		_, err = profiles.Get(ctx, "u3")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("activities newest first", func(t *testing.T) {
		acts := s.Activities()
		for _, key := range []string{"2025-01-01", "2025-01-02", "2025-01-03"} {
			require.NoError(t, acts.Insert(ctx, &model.Activity{HabitID: "b", UserID: "u1", PeriodKey: key, Message: key}))
		}
		items, err := acts.ListRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "2025-01-03", items[0].PeriodKey)
		assert.Equal(t, "2025-01-02", items[1].PeriodKey)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})
}
