package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	mqcontracts "habitgrid/contracts/mq"
	"habitgrid/internal/repository/memory"
	"habitgrid/pkg/mq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDeduper struct {
	seen     map[string]bool
	released []string
}

func newFakeDeduper() *fakeDeduper {
	return &fakeDeduper{seen: map[string]bool{}}
}

func (f *fakeDeduper) AcquireOnce(ctx context.Context, handler, id string) bool {
	k := handler + "/" + id
	if f.seen[k] {
		return false
	}
	f.seen[k] = true
	return true
}

func (f *fakeDeduper) Release(ctx context.Context, handler, id string) {
	delete(f.seen, handler+"/"+id)
	f.released = append(f.released, id)
}

func payload(t *testing.T, p mqcontracts.HabitCompletedPayload) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	return raw
}

func TestHabitCompletedHandler_RecordsActivityOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	h := NewHabitCompletedHandler(store.Activities(), newFakeDeduper(), zap.NewNop())

	msg := payload(t, mqcontracts.HabitCompletedPayload{
		HabitID: "h1", UserID: "u1", Title: "Yoga", Cadence: "weekly", Marker: "*", PeriodKey: "2025-01-06",
	})
	require.NoError(t, h.Handle(ctx, msg))
	require.NoError(t, h.Handle(ctx, msg))

	items, err := store.Activities().ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "* Yoga done this week", items[0].Message)
	assert.Equal(t, "2025-01-06", items[0].PeriodKey)
}

func TestHabitCompletedHandler_PoisonMessages(t *testing.T) {
	h := NewHabitCompletedHandler(memory.New().Activities(), nil, zap.NewNop())

	err := h.Handle(context.Background(), json.RawMessage(`{not json`))
	assert.ErrorIs(t, err, mq.ErrPoison)

	err = h.Handle(context.Background(), payload(t, mqcontracts.HabitCompletedPayload{HabitID: "h1"}))
	assert.ErrorIs(t, err, mq.ErrPoison)
}

func TestHabitCompletedHandler_ReleasesOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	dd := newFakeDeduper()
	h := NewHabitCompletedHandler(store.Activities(), dd, zap.NewNop())
	msg := payload(t, mqcontracts.HabitCompletedPayload{HabitID: "h1", UserID: "u1", Title: "Run", Cadence: "daily", PeriodKey: "2025-01-08"})

	store.Fail = errors.New("disk full")
	err := h.Handle(ctx, msg)
	require.Error(t, err)
	assert.NotErrorIs(t, err, mq.ErrPoison)
	assert.Equal(t, []string{"h1:2025-01-08"}, dd.released)

	store.Fail = nil
	require.NoError(t, h.Handle(ctx, msg))
	items, err := store.Activities().ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Run done today", items[0].Message)
}
