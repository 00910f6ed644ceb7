// Package sqlstore keeps the mirrored collections in a relational database
// through GORM. PostgreSQL serves production; SQLite serves local runs and tests.
package sqlstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	domain "placeholder-mirror/internal/domain/user"
	"placeholder-mirror/pkg/logger"
)

// PoolConfig tunes the database/sql pool behind GORM.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowQuery       time.Duration
	LogLevel        string
}

// Gateway implements domain.Gateway on top of a GORM dialector.
type Gateway struct {
	name      string
	dialector func() gorm.Dialector
	pool      PoolConfig
	log       *zap.Logger

	mu          sync.Mutex
	db          *gorm.DB
	collections *domain.Collections
}

// NewPostgresGateway creates a gateway for the PostgreSQL database at dsn.
func NewPostgresGateway(dsn string, pool PoolConfig, log *zap.Logger) *Gateway {
	return &Gateway{
		name:      "postgres",
		dialector: func() gorm.Dialector { return postgres.Open(dsn) },
		pool:      pool,
		log:       log,
	}
}

// NewSQLiteGateway creates a gateway for the SQLite database file at path.
func NewSQLiteGateway(path string, pool PoolConfig, log *zap.Logger) *Gateway {
	// SQLite serializes writers; a single connection avoids "database is locked".
	pool.MaxOpenConns = 1
	pool.MaxIdleConns = 1
	return &Gateway{
		name:      "sqlite",
		dialector: func() gorm.Dialector { return sqlite.Open(path) },
		pool:      pool,
		log:       log,
	}
}

// Connect opens the database, verifies it and migrates the schema.
// It is a no-op when the gateway is already connected.
func (g *Gateway) Connect(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.db != nil {
		return nil
	}

	db, err := gorm.Open(g.dialector(), &gorm.Config{
		Logger: logger.NewGormLogger(g.log, g.pool.SlowQuery, g.pool.LogLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to open %s database: %w", g.name, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if g.pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(g.pool.MaxOpenConns)
	}
	if g.pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(g.pool.MaxIdleConns)
	}
	if g.pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(g.pool.ConnMaxLifetime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("failed to ping %s database: %w", g.name, err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&UserSchema{}, &PostSchema{}, &CommentSchema{}); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("failed to migrate %s schema: %w", g.name, err)
	}

	g.db = db
	g.collections = &domain.Collections{
		Users:    NewUserRepo(db, g.log),
		Posts:    NewPostRepo(db, g.log),
		Comments: NewCommentRepo(db, g.log),
	}

	g.log.Info("database connected",
		zap.String("driver", g.name),
		zap.Int("max_open_conns", g.pool.MaxOpenConns),
	)
	return nil
}

// Close releases the connection pool. Closing a closed gateway is a no-op.
func (g *Gateway) Close(_ context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.db == nil {
		return nil
	}

	sqlDB, err := g.db.DB()
	g.db = nil
	g.collections = nil
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close %s database: %w", g.name, err)
	}

	g.log.Info("database connection closed", zap.String("driver", g.name))
	return nil
}

// Collections returns the bound repositories, or domain.ErrStoreNotInitialized
// before Connect has succeeded.
func (g *Gateway) Collections() (*domain.Collections, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.collections == nil {
		return nil, domain.ErrStoreNotInitialized
	}
	return g.collections, nil
}
