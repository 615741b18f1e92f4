// Package habit 负责 onboarding 和个人资料编辑：本地校验通过后才访问存储
package habit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"habitgrid/internal/model"
	"habitgrid/internal/period"
	"habitgrid/internal/repository"
	"habitgrid/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ValidationError 表示输入在本地校验失败，Message 直接展示给用户
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type Service struct {
	habits   repository.HabitStore
	profiles repository.ProfileStore
	logger   *zap.Logger
	newID    func() string
}

func NewService(habits repository.HabitStore, profiles repository.ProfileStore, logger *zap.Logger) *Service {
	return &Service{
		habits:   habits,
		profiles: profiles,
		logger:   logger,
		newID:    func() string { return uuid.NewString() },
	}
}

type OnboardRequest struct {
	DisplayName string         `json:"display_name"`
	Title       string         `json:"title"`
	Cadence     period.Cadence `json:"cadence"`
	Marker      string         `json:"progress_marker"`
}

// Onboard 保存 display name 并创建一个公开 habit
func (s *Service) Onboard(ctx context.Context, userID string, req OnboardRequest) (*model.Habit, error) {
	name := strings.TrimSpace(req.DisplayName)
	title := strings.TrimSpace(req.Title)
	marker := strings.TrimSpace(req.Marker)

	switch {
	case name == "":
		return nil, &ValidationError{Field: "display_name", Message: "Please enter your name"}
	case title == "":
		return nil, &ValidationError{Field: "title", Message: "Please give your goal a name"}
	case marker == "":
		return nil, &ValidationError{Field: "progress_marker", Message: "Please choose an emoji"}
	}

	cadence := req.Cadence
	if cadence == "" {
		cadence = period.Daily
	}
	if !cadence.Valid() {
		return nil, &ValidationError{Field: "cadence", Message: fmt.Sprintf("Unknown cadence %q", req.Cadence)}
	}

	log := logger.WithTrace(ctx, s.logger).With(zap.String("user_id", userID))

	if err := s.profiles.Upsert(ctx, userID, name); err != nil {
		log.Error("Failed to save display name", zap.Error(err))
		return nil, repository.WrapStore("upsert profile", err)
	}

	h := &model.Habit{
		ID:       s.newID(),
		UserID:   userID,
		Title:    title,
		Cadence:  cadence,
		Marker:   marker,
		IsPublic: true,
	}
	if err := s.habits.Create(ctx, h); err != nil {
		log.Error("Failed to create habit", zap.Error(err))
		return nil, repository.WrapStore("create habit", err)
	}

	log.Info("User onboarded",
		zap.String("habit_id", h.ID),
		zap.String("cadence", string(h.Cadence)),
	)
	return h, nil
}

// HabitEdit 是个人资料页上对一个 habit 的修改
type HabitEdit struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Marker string `json:"progress_marker"`
}

// SaveProfile 先校验全部输入，再依次写 profile 和每个 habit。
// 中途失败时已写入的部分不回滚。
func (s *Service) SaveProfile(ctx context.Context, userID, displayName string, edits []HabitEdit) error {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return &ValidationError{Field: "display_name", Message: "Display name cannot be empty."}
	}
	// 在副本上 trim，不改调用方的 slice
	cleaned := make([]HabitEdit, len(edits))
	for i, e := range edits {
		e.Title = strings.TrimSpace(e.Title)
		e.Marker = strings.TrimSpace(e.Marker)
		cleaned[i] = e
		if e.Title == "" {
			return &ValidationError{Field: "title", Message: "Goal name cannot be empty."}
		}
		if e.Marker == "" {
			return &ValidationError{Field: "progress_marker", Message: "Emoji cannot be empty."}
		}
	}

	log := logger.WithTrace(ctx, s.logger).With(zap.String("user_id", userID))

	if err := s.profiles.Upsert(ctx, userID, name); err != nil {
		log.Error("Failed to update display name", zap.Error(err))
		return repository.WrapStore("update profile", err)
	}

	for _, e := range cleaned {
		h := &model.Habit{ID: e.ID, Title: e.Title, Marker: e.Marker}
		if err := s.habits.UpdateOwned(ctx, userID, h); err != nil {
			log.Error("Failed to update habit", zap.String("habit_id", e.ID), zap.Error(err))
			if errors.Is(err, repository.ErrNotFound) {
				return err
			}
			return repository.WrapStore("update habit", err)
		}
	}

	log.Info("Profile saved", zap.Int("habit_count", len(cleaned)))
	return nil
}

// ProfileView 是 GET /profile 的返回
type ProfileView struct {
	UserID      string        `json:"user_id"`
	DisplayName string        `json:"display_name"`
	Habits      []model.Habit `json:"habits"`
}

// Profile 还没有 profile 时 DisplayName 为空
func (s *Service) Profile(ctx context.Context, userID string) (*ProfileView, error) {
	view := &ProfileView{UserID: userID}

	p, err := s.profiles.Get(ctx, userID)
	switch {
	case err == nil:
		view.DisplayName = p.DisplayName
	case !errors.Is(err, repository.ErrNotFound):
		return nil, repository.WrapStore("get profile", err)
	}

	habits, err := s.ListOwn(ctx, userID)
	if err != nil {
		return nil, err
	}
	view.Habits = habits
	return view, nil
}

// ListOwn 按创建顺序返回用户自己的 habit
func (s *Service) ListOwn(ctx context.Context, userID string) ([]model.Habit, error) {
	habits, err := s.habits.ListByUser(ctx, userID)
	if err != nil {
		return nil, repository.WrapStore("list user habits", err)
	}
	if habits == nil {
		habits = []model.Habit{}
	}
	return habits, nil
}
