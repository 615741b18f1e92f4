package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pgUniqueViolation 是 PostgreSQL unique_violation 的 SQLSTATE
const pgUniqueViolation = "23505"

// PostgresStore 基于 pgxpool 的 Store 实现
type PostgresStore struct {
	db         *pgxpool.Pool
	habits     *HabitRepository
	profiles   *ProfileRepository
	logs       *CompletionLogRepository
	activities *ActivityRepository
}

func NewPostgresStore(db *pgxpool.Pool, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{
		db:         db,
		habits:     NewHabitRepository(db, logger),
		profiles:   NewProfileRepository(db, logger),
		logs:       NewCompletionLogRepository(db, logger),
		activities: NewActivityRepository(db, logger),
	}
}

func (s *PostgresStore) Habits() HabitStore { return s.habits }
func (s *PostgresStore) Profiles() ProfileStore { return s.profiles }
func (s *PostgresStore) Logs() CompletionLogStore { return s.logs }
func (s *PostgresStore) Activities() ActivityStore { return s.activities }
func (s *PostgresStore) Ping(ctx context.Context) error { return s.db.Ping(ctx) }

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
