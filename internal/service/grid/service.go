package grid

import (
	"context"
	"sort"

	"habitgrid/internal/repository"
	"habitgrid/internal/service/progress"

	"go.uber.org/zap"
)

// Service 负责取数（公开 habit、display name、totals）并交给 Compose
type Service struct {
	habits     repository.HabitStore
	profiles   repository.ProfileStore
	aggregator *progress.Aggregator
	logger     *zap.Logger
}

func NewService(habits repository.HabitStore, profiles repository.ProfileStore, aggregator *progress.Aggregator, logger *zap.Logger) *Service {
	return &Service{
		habits:     habits,
		profiles:   profiles,
		aggregator: aggregator,
		logger:     logger,
	}
}

// Load 任一步失败都直接返回错误，调用方保留上一次的结果
func (s *Service) Load(ctx context.Context, viewerID string, policy LayoutPolicy) (*Grid, error) {
	habits, err := s.habits.ListPublic(ctx)
	if err != nil {
		return nil, err
	}

	owners := make(map[string]struct{}, len(habits))
	habitIDs := make([]string, 0, len(habits))
	for _, h := range habits {
		owners[h.UserID] = struct{}{}
		habitIDs = append(habitIDs, h.ID)
	}
	userIDs := make([]string, 0, len(owners))
	for id := range owners {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)

	names := map[string]string{}
	if len(userIDs) > 0 {
		names, err = s.profiles.DisplayNames(ctx, userIDs)
		if err != nil {
			return nil, err
		}
	}

	totals, err := s.aggregator.Totals(ctx, habitIDs)
	if err != nil {
		return nil, err
	}

	g := Compose(habits, names, totals, viewerID, policy)
	s.logger.Debug("Grid composed",
		zap.String("viewer_id", viewerID),
		zap.Int("tiles", len(g.Tiles)),
		zap.Int("columns", g.Layout.Columns),
	)
	return &g, nil
}

// Totals 只返回 viewer 能看到的 habit 的 totals，其余 id 不出现在结果里
func (s *Service) Totals(ctx context.Context, viewerID string, habitIDs []string) (map[string]int, error) {
	ids, err := progress.VisibleIDs(ctx, s.habits, viewerID, habitIDs)
	if err != nil {
		return nil, err
	}
	return s.aggregator.Totals(ctx, ids)
}
