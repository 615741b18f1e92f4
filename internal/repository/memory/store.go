// Package memory is an in-process implementation of the repository contracts.
// It enforces the same (habit_id, period_key) uniqueness as the SQL schemas.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"habitgrid/internal/model"
	"habitgrid/internal/repository"
)

type logKey struct {
	habitID   string
	periodKey string
}

type Store struct {
	mu         sync.RWMutex
	habits     map[string]model.Habit
	order      []string
	profiles   map[string]model.Profile
	logs       map[logKey]time.Time
	activities []model.Activity
	now        func() time.Time

	// Fail, when set, is returned (wrapped in *repository.StoreError) by every call.
	Fail error
	// CountCalls counts CountByHabit invocations.
	CountCalls int
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		habits:   make(map[string]model.Habit),
		profiles: make(map[string]model.Profile),
		logs:     make(map[logKey]time.Time),
		now:      time.Now,
	}
}

func (s *Store) Habits() repository.HabitStore { return habitStore{s} }
func (s *Store) Profiles() repository.ProfileStore { return profileStore{s} }
func (s *Store) Logs() repository.CompletionLogStore { return logStore{s} }
func (s *Store) Activities() repository.ActivityStore { return activityStore{s} }
func (s *Store) Ping(ctx context.Context) error { return s.fail("ping") }
func (s *Store) Close() error { return nil }

func (s *Store) fail(op string) error {
	if s.Fail != nil {
		return repository.WrapStore(op, s.Fail)
	}
	return nil
}

type habitStore struct{ s *Store }

func (h habitStore) Create(ctx context.Context, habit *model.Habit) error {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if err := h.s.fail("create habit"); err != nil {
		return err
	}
	if _, ok := h.s.habits[habit.ID]; ok {
		return repository.WrapStore("create habit", errDuplicateHabit)
	}
	if habit.CreatedAt.IsZero() {
		habit.CreatedAt = h.s.now()
	}
	h.s.habits[habit.ID] = *habit
	h.s.order = append(h.s.order, habit.ID)
	return nil
}

func (h habitStore) Get(ctx context.Context, id string) (*model.Habit, error) {
	h.s.mu.RLock()
	defer h.s.mu.RUnlock()
	if err := h.s.fail("get habit"); err != nil {
		return nil, err
	}
	habit, ok := h.s.habits[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &habit, nil
}

func (h habitStore) ListPublic(ctx context.Context) ([]model.Habit, error) {
	return h.list("list public habits", func(m model.Habit) bool { return m.IsPublic })
}

func (h habitStore) ListByUser(ctx context.Context, userID string) ([]model.Habit, error) {
	return h.list("list user habits", func(m model.Habit) bool { return m.UserID == userID })
}

func (h habitStore) list(op string, keep func(model.Habit) bool) ([]model.Habit, error) {
	h.s.mu.RLock()
	defer h.s.mu.RUnlock()
	if err := h.s.fail(op); err != nil {
		return nil, err
	}
	var out []model.Habit
	for _, id := range h.s.order {
		if m := h.s.habits[id]; keep(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (h habitStore) UpdateOwned(ctx context.Context, userID string, habit *model.Habit) error {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if err := h.s.fail("update habit"); err != nil {
		return err
	}
	cur, ok := h.s.habits[habit.ID]
	if !ok || cur.UserID != userID {
		return repository.ErrNotFound
	}
	cur.Title = habit.Title
	cur.Marker = habit.Marker
	h.s.habits[habit.ID] = cur
	return nil
}

type profileStore struct{ s *Store }

func (p profileStore) Upsert(ctx context.Context, userID, displayName string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if err := p.s.fail("upsert profile"); err != nil {
		return err
	}
	p.s.profiles[userID] = model.Profile{UserID: userID, DisplayName: displayName, UpdatedAt: p.s.now()}
	return nil
}

func (p profileStore) Get(ctx context.Context, userID string) (*model.Profile, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	if err := p.s.fail("get profile"); err != nil {
		return nil, err
	}
	prof, ok := p.s.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &prof, nil
}

func (p profileStore) DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	if err := p.s.fail("load display names"); err != nil {
		return nil, err
	}
	names := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		if prof, ok := p.s.profiles[id]; ok {
			names[id] = prof.DisplayName
		}
	}
	return names, nil
}

type logStore struct{ s *Store }

func (l logStore) Append(ctx context.Context, habitID, periodKey string) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if err := l.s.fail("append completion log"); err != nil {
		return err
	}
	k := logKey{habitID: habitID, periodKey: periodKey}
	if _, ok := l.s.logs[k]; ok {
		return &repository.DuplicateKeyError{HabitID: habitID, PeriodKey: periodKey}
	}
	l.s.logs[k] = l.s.now()
	return nil
}

func (l logStore) CountByHabit(ctx context.Context, habitIDs []string) (map[string]int, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	l.s.CountCalls++
	if err := l.s.fail("count completion logs"); err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(habitIDs))
	for _, id := range habitIDs {
		want[id] = true
	}
	counts := make(map[string]int)
	for k := range l.s.logs {
		if want[k.habitID] {
			counts[k.habitID]++
		}
	}
	return counts, nil
}

type activityStore struct{ s *Store }

func (a activityStore) Insert(ctx context.Context, act *model.Activity) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if err := a.s.fail("insert activity"); err != nil {
		return err
	}
	act.ID = int64(len(a.s.activities) + 1)
	if act.CreatedAt.IsZero() {
		act.CreatedAt = a.s.now()
	}
	a.s.activities = append(a.s.activities, *act)
	return nil
}

func (a activityStore) ListRecent(ctx context.Context, limit int) ([]model.Activity, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	if err := a.s.fail("list activities"); err != nil {
		return nil, err
	}
	out := make([]model.Activity, len(a.s.activities))
	copy(out, a.s.activities)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
