// Package bootstrap 按配置组装存储，cmd/api 和 cmd/worker 共用
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"habitgrid/internal/config"
	"habitgrid/internal/repository"
	"habitgrid/internal/repository/sqlite"
	"habitgrid/migrations"
	"habitgrid/pkg/db"

	"go.uber.org/zap"
)

// OpenStore 根据 store.driver 打开 PostgreSQL（并执行迁移）或 SQLite
func OpenStore(cfg *config.Config, log *zap.Logger) (repository.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		pool, err := db.NewConnection(cfg.DB, log)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := migrations.Apply(ctx, pool, log); err != nil {
			pool.Close()
			return nil, err
		}
		return repository.NewPostgresStore(pool, log), nil
	case "sqlite":
		return sqlite.Open(cfg.Store.SQLitePath, log)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}
