// Package migrations 内嵌 PostgreSQL schema，启动时按文件名顺序执行（全部幂等）
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed *.sql
var files embed.FS

// Files 按执行顺序返回 migration 文件名
func Files() ([]string, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func Apply(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) error {
	names, err := Files()
	if err != nil {
		return err
	}
	for _, name := range names {
		body, err := files.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.Exec(ctx, string(body)); err != nil {
			logger.Error("Migration failed", zap.String("file", name), zap.Error(err))
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		logger.Info("Migration applied", zap.String("file", name))
	}
	return nil
}
