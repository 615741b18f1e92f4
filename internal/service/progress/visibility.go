package progress

import (
	"context"
	"errors"

	"habitgrid/internal/repository"
)

// VisibleIDs 过滤出 viewer 能看到的 habit：公开的或自己的。
// 不存在的 id 和别人的私有 habit 直接丢弃，保持输入顺序并去重。
func VisibleIDs(ctx context.Context, habits repository.HabitStore, viewerID string, habitIDs []string) ([]string, error) {
	ids := uniq(habitIDs)
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		h, err := habits.Get(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if h.IsPublic || h.UserID == viewerID {
			out = append(out, id)
		}
	}
	return out, nil
}
