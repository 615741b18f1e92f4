package completion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	mqcontracts "habitgrid/contracts/mq"
	"habitgrid/internal/model"
	"habitgrid/internal/period"
	"habitgrid/internal/repository"
	"habitgrid/internal/repository/memory"
	"habitgrid/internal/service/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePublisher struct {
	mu       sync.Mutex
	err      error
	calls    int
	payloads []mqcontracts.HabitCompletedPayload
}

func (p *fakePublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload.(mqcontracts.HabitCompletedPayload))
	return nil
}

// wednesday, 2025-01-08
var fixedNow = time.Date(2025, time.January, 8, 21, 30, 0, 0, time.UTC)

func setup(t *testing.T, now time.Time) (*Service, *memory.Store, *fakePublisher) {
	t.Helper()
	store := memory.New()
	for _, h := range []model.Habit{
		{ID: "yoga", UserID: "u1", Title: "Yoga", Cadence: period.Daily, Marker: "*", IsPublic: true},
		{ID: "call", UserID: "u1", Title: "Call mum", Cadence: period.Weekly, Marker: "+", IsPublic: true},
		{ID: "budget", UserID: "u1", Title: "Budget", Cadence: period.Monthly, Marker: "$", IsPublic: true},
		{ID: "run", UserID: "u2", Title: "Run", Cadence: period.Daily, Marker: "~", IsPublic: true},
	} {
		require.NoError(t, store.Habits().Create(context.Background(), &h))
	}
	pub := &fakePublisher{}
	log := zap.NewNop()
	svc := NewService(store.Habits(), store.Logs(), progress.NewAggregator(store.Logs(), log), period.FixedClock{T: now}, pub, log)
	return svc, store, pub
}

func TestLogCompletion_UsesPeriodKey(t *testing.T) {
	svc, _, _ := setup(t, fixedNow)
	ctx := context.Background()

	key, err := svc.LogCompletion(ctx, "yoga", period.Daily)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-08", key)

	key, err = svc.LogCompletion(ctx, "call", period.Weekly)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-06", key)

	key, err = svc.LogCompletion(ctx, "budget", period.Monthly)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", key)
}

func TestLogCompletion_DuplicateInSamePeriod(t *testing.T) {
	svc, store, _ := setup(t, fixedNow)
	ctx := context.Background()

	_, err := svc.LogCompletion(ctx, "call", period.Weekly)
	require.NoError(t, err)

	_, err = svc.LogCompletion(ctx, "call", period.Weekly)
	var dup *repository.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "2025-01-06", dup.PeriodKey)
	assert.Equal(t, "You already logged it this week!", StatusMessage(err, period.Weekly))

	counts, err := store.Logs().CountByHabit(ctx, []string{"call"})
	require.NoError(t, err)
	assert.Equal(t, 1, counts["call"])
}

func TestComplete_RefreshesDisplayedTotals(t *testing.T) {
	svc, store, pub := setup(t, fixedNow)
	ctx := context.Background()
	require.NoError(t, store.Logs().Append(ctx, "run", "2025-01-07"))

	out, err := svc.Complete(ctx, "u1", "yoga", []string{"yoga", "run", "call"})
	require.NoError(t, err)

	assert.Equal(t, "2025-01-08", out.PeriodKey)
	assert.Equal(t, map[string]int{"yoga": 1, "run": 1, "call": 0}, out.Totals)
	assert.Empty(t, out.RefreshError)

	require.Len(t, pub.payloads, 1)
	assert.Equal(t, "yoga", pub.payloads[0].HabitID)
	assert.Equal(t, "u1", pub.payloads[0].UserID)
	assert.Equal(t, "2025-01-08", pub.payloads[0].PeriodKey)
}

func TestComplete_RefreshSkipsHiddenHabits(t *testing.T) {
	svc, store, _ := setup(t, fixedNow)
	ctx := context.Background()
	require.NoError(t, store.Habits().Create(ctx, &model.Habit{ID: "diary", UserID: "u2", Title: "Diary", Cadence: period.Daily, Marker: "!"}))
	require.NoError(t, store.Habits().Create(ctx, &model.Habit{ID: "meds", UserID: "u1", Title: "Meds", Cadence: period.Daily, Marker: "+"}))
	require.NoError(t, store.Logs().Append(ctx, "diary", "2025-01-07"))

	out, err := svc.Complete(ctx, "u1", "yoga", []string{"yoga", "diary", "meds", "gone"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"yoga": 1, "meds": 0}, out.Totals)
}

func TestComplete_DefaultsRefreshToLoggedHabit(t *testing.T) {
	svc, _, _ := setup(t, fixedNow)

	out, err := svc.Complete(context.Background(), "u1", "budget", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"budget": 1}, out.Totals)
}

func TestComplete_RejectsOtherUsersHabit(t *testing.T) {
	svc, store, pub := setup(t, fixedNow)
	ctx := context.Background()

	_, err := svc.Complete(ctx, "u1", "run", nil)
	assert.ErrorIs(t, err, ErrNotOwner)

	counts, err := store.Logs().CountByHabit(ctx, []string{"run"})
	require.NoError(t, err)
	assert.Zero(t, counts["run"])
	assert.Zero(t, pub.calls)
}

func TestComplete_UnknownHabit(t *testing.T) {
	svc, _, _ := setup(t, fixedNow)
	_, err := svc.Complete(context.Background(), "u1", "nope", nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestComplete_DuplicateDoesNotPublish(t *testing.T) {
	svc, _, pub := setup(t, fixedNow)
	ctx := context.Background()

	_, err := svc.Complete(ctx, "u1", "yoga", nil)
	require.NoError(t, err)
	_, err = svc.Complete(ctx, "u1", "yoga", nil)
	assert.True(t, repository.IsDuplicate(err))
	var le *LogError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, period.Daily, le.Cadence)
	assert.EqualError(t, err, "You already logged it today!")
	assert.Equal(t, 1, pub.calls)
}

func TestComplete_NextPeriodSucceeds(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := setup(t, fixedNow)
	_, err := svc.Complete(ctx, "u1", "call", nil)
	require.NoError(t, err)

	nextMonday := time.Date(2025, time.January, 13, 0, 5, 0, 0, time.UTC)
	log := zap.NewNop()
	later := NewService(store.Habits(), store.Logs(), progress.NewAggregator(store.Logs(), log), period.FixedClock{T: nextMonday}, nil, log)

	out, err := later.Complete(ctx, "u1", "call", nil)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-13", out.PeriodKey)
	assert.Equal(t, 2, out.Totals["call"])
}

func TestComplete_PublishFailureDoesNotFailWrite(t *testing.T) {
	svc, _, pub := setup(t, fixedNow)
	pub.err = errors.New("channel closed")

	out, err := svc.Complete(context.Background(), "u1", "yoga", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Totals["yoga"])
}

func TestLogCompletion_StoreErrorSurfacedVerbatim(t *testing.T) {
	svc, store, _ := setup(t, fixedNow)
	store.Fail = errors.New("new row violates row-level security policy")

	_, err := svc.LogCompletion(context.Background(), "yoga", period.Daily)
	var se *repository.StoreError
	require.ErrorAs(t, err, &se)
	assert.False(t, repository.IsDuplicate(err))
	assert.Equal(t, "new row violates row-level security policy", StatusMessage(err, period.Daily))
}

func TestStatusMessage(t *testing.T) {
	dup := &repository.DuplicateKeyError{HabitID: "h", PeriodKey: "2025-01-01"}
	assert.Equal(t, "You already logged it today!", StatusMessage(dup, period.Daily))
	assert.Equal(t, "You already logged it this week!", StatusMessage(dup, period.Weekly))
	assert.Equal(t, "You already logged it this month!", StatusMessage(dup, period.Monthly))
	assert.Equal(t, "", StatusMessage(nil, period.Daily))
	assert.Equal(t, "Something went wrong.", StatusMessage(&repository.StoreError{Op: "x", Err: errors.New("")}, period.Daily))
}

type countFailingLogs struct {
	repository.CompletionLogStore
	err error
}

func (c countFailingLogs) CountByHabit(ctx context.Context, ids []string) (map[string]int, error) {
	return nil, c.err
}

func TestComplete_RefreshFailureKeepsWrite(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.Habits().Create(ctx, &model.Habit{ID: "yoga", UserID: "u1", Title: "Yoga", Cadence: period.Daily, Marker: "*", IsPublic: true}))

	log := zap.NewNop()
	failing := countFailingLogs{CompletionLogStore: store.Logs(), err: &repository.StoreError{Op: "count", Err: errors.New("connection reset")}}
	svc := NewService(store.Habits(), store.Logs(), progress.NewAggregator(failing, log), period.FixedClock{T: fixedNow}, nil, log)

	out, err := svc.Complete(ctx, "u1", "yoga", []string{"yoga"})
	require.NoError(t, err)
	assert.Nil(t, out.Totals)
	assert.Equal(t, "connection reset", out.RefreshError)

	counts, err := store.Logs().CountByHabit(ctx, []string{"yoga"})
	require.NoError(t, err)
	assert.Equal(t, 1, counts["yoga"])
}
