package habit

import (
	"context"
	"errors"
	"testing"

	"habitgrid/internal/model"
	"habitgrid/internal/period"
	"habitgrid/internal/repository"
	"habitgrid/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(store *memory.Store) *Service {
	svc := NewService(store.Habits(), store.Profiles(), zap.NewNop())
	n := 0
	svc.newID = func() string {
		n++
		return []string{"h-1", "h-2", "h-3"}[n-1]
	}
	return svc
}

func TestOnboard_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   OnboardRequest
		field string
		msg   string
	}{
		{"missing name", OnboardRequest{DisplayName: "  ", Title: "Yoga", Marker: "*"}, "display_name", "Please enter your name"},
		{"missing title", OnboardRequest{DisplayName: "Ana", Title: "\t", Marker: "*"}, "title", "Please give your goal a name"},
		{"missing marker", OnboardRequest{DisplayName: "Ana", Title: "Yoga", Marker: " "}, "progress_marker", "Please choose an emoji"},
		{"bad cadence", OnboardRequest{DisplayName: "Ana", Title: "Yoga", Marker: "*", Cadence: "yearly"}, "cadence", `Unknown cadence "yearly"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			svc := newTestService(store)

			_, err := svc.Onboard(context.Background(), "u1", tt.req)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, tt.msg, ve.Error())

			habits, err := store.Habits().ListByUser(context.Background(), "u1")
			require.NoError(t, err)
			assert.Empty(t, habits)
		})
	}
}

func TestOnboard_CreatesProfileAndPublicHabit(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newTestService(store)

	h, err := svc.Onboard(ctx, "u1", OnboardRequest{DisplayName: " Ana ", Title: " Yoga ", Marker: " * ", Cadence: period.Weekly})
	require.NoError(t, err)
	assert.Equal(t, "h-1", h.ID)
	assert.Equal(t, "Yoga", h.Title)
	assert.Equal(t, "*", h.Marker)
	assert.Equal(t, period.Weekly, h.Cadence)
	assert.True(t, h.IsPublic)

	p, err := store.Profiles().Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.DisplayName)

	public, err := store.Habits().ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "u1", public[0].UserID)
}

func TestOnboard_DefaultsToDaily(t *testing.T) {
	svc := newTestService(memory.New())
	h, err := svc.Onboard(context.Background(), "u1", OnboardRequest{DisplayName: "Ana", Title: "Yoga", Marker: "*"})
	require.NoError(t, err)
	assert.Equal(t, period.Daily, h.Cadence)
}

func TestOnboard_StoreFailure(t *testing.T) {
	store := memory.New()
	store.Fail = errors.New("permission denied for table profiles")
	svc := newTestService(store)

	_, err := svc.Onboard(context.Background(), "u1", OnboardRequest{DisplayName: "Ana", Title: "Yoga", Marker: "*"})
	var se *repository.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "permission denied for table profiles", err.Error())
}

func TestSaveProfile(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newTestService(store)
	require.NoError(t, store.Habits().Create(ctx, &model.Habit{ID: "mine", UserID: "u1", Title: "Yoga", Cadence: period.Daily, Marker: "*"}))
	require.NoError(t, store.Habits().Create(ctx, &model.Habit{ID: "theirs", UserID: "u2", Title: "Run", Cadence: period.Daily, Marker: "~"}))

	t.Run("validates before writing", func(t *testing.T) {
		err := svc.SaveProfile(ctx, "u1", "Ana", []HabitEdit{{ID: "mine", Title: "Stretch", Marker: ""}})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "Emoji cannot be empty.", ve.Message)

		_, err = store.Profiles().Get(ctx, "u1")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("empty name", func(t *testing.T) {
		err := svc.SaveProfile(ctx, "u1", " ", nil)
		assert.EqualError(t, err, "Display name cannot be empty.")
	})

	t.Run("empty title", func(t *testing.T) {
		err := svc.SaveProfile(ctx, "u1", "Ana", []HabitEdit{{ID: "mine", Title: " ", Marker: "*"}})
		assert.EqualError(t, err, "Goal name cannot be empty.")
	})

	t.Run("updates own habits", func(t *testing.T) {
		require.NoError(t, svc.SaveProfile(ctx, "u1", " Ana ", []HabitEdit{{ID: "mine", Title: " Stretch ", Marker: "+"}}))

		view, err := svc.Profile(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "Ana", view.DisplayName)
		require.Len(t, view.Habits, 1)
		assert.Equal(t, "Stretch", view.Habits[0].Title)
		assert.Equal(t, "+", view.Habits[0].Marker)
	})

	t.Run("does not modify caller edits", func(t *testing.T) {
		edits := []HabitEdit{{ID: "mine", Title: "  Walk  ", Marker: " ^ "}}
		require.NoError(t, svc.SaveProfile(ctx, "u1", "Ana", edits))

		assert.Equal(t, "  Walk  ", edits[0].Title)
		assert.Equal(t, " ^ ", edits[0].Marker)
		h, err := store.Habits().Get(ctx, "mine")
		require.NoError(t, err)
		assert.Equal(t, "Walk", h.Title)
	})

	t.Run("cannot edit other users habit", func(t *testing.T) {
		err := svc.SaveProfile(ctx, "u1", "Ana", []HabitEdit{{ID: "theirs", Title: "Mine now", Marker: "!"}})
		assert.ErrorIs(t, err, repository.ErrNotFound)

		h, err := store.Habits().Get(ctx, "theirs")
		require.NoError(t, err)
		assert.Equal(t, "Run", h.Title)
	})
}

func TestProfile_WithoutProfileRow(t *testing.T) {
	svc := newTestService(memory.New())
	view, err := svc.Profile(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, view.DisplayName)
	assert.NotNil(t, view.Habits)
	assert.Empty(t, view.Habits)
}
