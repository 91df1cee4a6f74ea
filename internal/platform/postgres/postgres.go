// Package postgres opens the GORM handle shared by the order repository and idempotency store.
package postgres

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var errEmptyDSN = errors.New("postgres DSN is empty")

// PoolConfig sizes the database/sql pool under GORM.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// DefaultPoolConfig suits a single API replica sharing the database with a worker.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxIdleTime: 5 * time.Minute,
		ConnMaxLifetime: 30 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// Option adjusts the pool before the first connection is made.
type Option func(*PoolConfig)

// WithMaxOpenConns caps open connections; values below 1 keep the default.
func WithMaxOpenConns(n int) Option {
	return func(c *PoolConfig) {
		if n > 0 {
			c.MaxOpenConns = n
			if c.MaxIdleConns > n {
				c.MaxIdleConns = n
			}
		}
	}
}

// WithPingTimeout bounds the connectivity check.
func WithPingTimeout(d time.Duration) Option {
	return func(c *PoolConfig) {
		if d > 0 {
			c.PingTimeout = d
		}
	}
}

func buildPoolConfig(opts ...Option) PoolConfig {
	cfg := DefaultPoolConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Connect opens PostgreSQL through GORM, applies the pool settings and pings the server.
func Connect(ctx context.Context, dsn string, opts ...Option) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errEmptyDSN
	}
	pool := buildPoolConfig(opts...)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pool.PingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// ConnectOptional is Connect for processes that can run without postgres.
// A missing DSN or failed dial is logged and yields a nil DB with a no-op cleanup.
func ConnectOptional(ctx context.Context, dsn string, logger *slog.Logger, opts ...Option) (*gorm.DB, func()) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := Connect(ctx, dsn, opts...)
	switch {
	case errors.Is(err, errEmptyDSN):
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory order storage")
		return nil, func() {}
	case err != nil:
		logger.Warn("failed to connect to postgres, falling back to in-memory order storage", slog.String("error", err.Error()))
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to in-memory order storage", slog.String("error", err.Error()))
		return nil, func() {}
	}
	logger.Info("postgres connection established", slog.Int("max_open_conns", sqlDB.Stats().MaxOpenConnections))
	return db, func() { _ = sqlDB.Close() }
}
