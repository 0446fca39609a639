package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PoolConfig bounds the database/sql pool behind GORM.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowQuery       time.Duration
}

// DefaultPool suits a single API or worker process.
var DefaultPool = PoolConfig{
	MaxOpenConns:    20,
	MaxIdleConns:    5,
	ConnMaxLifetime: 30 * time.Minute,
	SlowQuery:       200 * time.Millisecond,
}

// Connect opens PostgreSQL through GORM, applies the pool limits and pings.
func Connect(ctx context.Context, dsn string, pool PoolConfig, logger *slog.Logger) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	cfg := &gorm.Config{Logger: gormlogger.Discard}
	if logger != nil {
		cfg.Logger = gormlogger.New(slog.NewLogLogger(logger.Handler(), slog.LevelWarn), gormlogger.Config{
			SlowThreshold:             pool.SlowQuery,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}
	db, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Open connects and returns the DB plus a close function. An empty DSN yields a
// nil DB and no error so callers can choose the in-memory store instead.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*gorm.DB, func(), error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, func() {}, nil
	}
	db, err := Connect(ctx, dsn, DefaultPool, logger)
	if err != nil {
		return nil, func() {}, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, func() {}, err
	}
	if logger != nil {
		logger.Info("postgres connection established")
	}
	return db, func() { _ = sqlDB.Close() }, nil
}
