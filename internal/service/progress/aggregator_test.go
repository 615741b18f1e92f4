package progress

import (
	"context"
	"errors"
	"testing"

	"habitgrid/internal/model"
	"habitgrid/internal/repository"
	"habitgrid/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTotals_EmptyInputSkipsStore(t *testing.T) {
	store := memory.New()
	agg := NewAggregator(store.Logs(), zap.NewNop())

	totals, err := agg.Totals(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, totals)
	assert.NotNil(t, totals)
	assert.Equal(t, 0, store.CountCalls)
}

func TestTotals_ZeroFillsHabitsWithoutLogs(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Logs().Append(ctx, "h1", "2025-01-01"))
	require.NoError(t, store.Logs().Append(ctx, "h1", "2025-01-02"))

	agg := NewAggregator(store.Logs(), zap.NewNop())
	totals, err := agg.Totals(ctx, []string{"h1", "h2", "h1"})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"h1": 2, "h2": 0}, totals)
	assert.Equal(t, 1, store.CountCalls)
}

func TestTotals_ReflectsLatestWrites(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	agg := NewAggregator(store.Logs(), zap.NewNop())

	totals, err := agg.Totals(ctx, []string{"h1"})
	require.NoError(t, err)
	assert.Equal(t, 0, totals["h1"])

	require.NoError(t, store.Logs().Append(ctx, "h1", "2025-01-01"))

	totals, err = agg.Totals(ctx, []string{"h1"})
	require.NoError(t, err)
	assert.Equal(t, 1, totals["h1"])
}

func TestTotals_StoreErrorPropagates(t *testing.T) {
	store := memory.New()
	store.Fail = errors.New("network unreachable")
	agg := NewAggregator(store.Logs(), zap.NewNop())

	totals, err := agg.Totals(context.Background(), []string{"h1"})
	assert.Nil(t, totals)
	var se *repository.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "network unreachable", err.Error())
}

func TestVisibleIDs(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Habits().Create(ctx, &model.Habit{ID: "pub", UserID: "u2", Title: "Run", Marker: "~", IsPublic: true}))
	require.NoError(t, store.Habits().Create(ctx, &model.Habit{ID: "priv", UserID: "u2", Title: "Diary", Marker: "!"}))
	require.NoError(t, store.Habits().Create(ctx, &model.Habit{ID: "own", UserID: "u1", Title: "Meds", Marker: "+"}))

	ids, err := VisibleIDs(ctx, store.Habits(), "u1", []string{"own", "priv", "pub", "missing", "own"})
	require.NoError(t, err)
	assert.Equal(t, []string{"own", "pub"}, ids)

	ids, err = VisibleIDs(ctx, store.Habits(), "u2", []string{"own", "priv"})
	require.NoError(t, err)
	assert.Equal(t, []string{"priv"}, ids)

	store.Fail = errors.New("boom")
	_, err = VisibleIDs(ctx, store.Habits(), "u1", []string{"own"})
	var se *repository.StoreError
	assert.ErrorAs(t, err, &se)
}
