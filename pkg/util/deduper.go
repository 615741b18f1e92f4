package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Deduper struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deduper{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// DedupKey 格式化去重 key
func DedupKey(handler, id string) string {
	return fmt.Sprintf("dedup:%s:%s", handler, id)
}

// AcquireOnce tries to acquire a dedup lock for a given handler + id.
// returns true if this is the FIRST time processing
// returns false if it's a duplicate
func (d *Deduper) AcquireOnce(ctx context.Context, handler, id string) bool {
	key := DedupKey(handler, id)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		// Redis 不可用时不阻止处理，返回 true
		d.logger.Warn("Redis dedup check failed, allowing processing",
			zap.String("handler", handler),
			zap.String("id", id),
			zap.Error(err),
		)
		return true
	}

	if !ok {
		d.logger.Info("Skipped duplicated event",
			zap.String("handler", handler),
			zap.String("id", id),
			zap.String("dedup_key", key),
		)
	}

	return ok
}

// Release 处理失败时释放锁，让 MQ 重投的消息能再次处理
func (d *Deduper) Release(ctx context.Context, handler, id string) {
	if err := d.rdb.Del(ctx, DedupKey(handler, id)).Err(); err != nil {
		d.logger.Warn("Failed to release dedup key", zap.String("handler", handler), zap.String("id", id), zap.Error(err))
	}
}
