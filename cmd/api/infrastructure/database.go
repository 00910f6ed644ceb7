package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"placeholder-mirror/internal/adapter/db/mongostore"
	"placeholder-mirror/internal/adapter/db/sqlstore"
	"placeholder-mirror/internal/config"
	domain "placeholder-mirror/internal/domain/user"
)

// NewDatabase builds the gateway selected by STORE_DRIVER and connects it.
func NewDatabase(ctx context.Context, cfg *config.Config, l *zap.Logger) (domain.Gateway, error) {
	gw, err := newGateway(cfg, l)
	if err != nil {
		return nil, err
	}

	if err := gw.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to %s store: %w", cfg.Store.Driver, err)
	}

	l.Info("database connected successfully",
		zap.String("driver", cfg.Store.Driver),
	)

	return gw, nil
}

func newGateway(cfg *config.Config, l *zap.Logger) (domain.Gateway, error) {
	switch cfg.Store.Driver {
	case config.StoreMongo:
		return mongostore.NewGateway(mongostore.Config{
			URI:            cfg.Mongo.URI,
			Database:       cfg.Mongo.Database,
			ConnectTimeout: time.Duration(cfg.Mongo.ConnectTimeoutSeconds) * time.Second,
		}, l), nil
	case config.StorePostgres:
		return sqlstore.NewPostgresGateway(cfg.DB.DSN(), poolConfig(cfg), l), nil
	case config.StoreSQLite:
		return sqlstore.NewSQLiteGateway(cfg.SQLite.Path, poolConfig(cfg), l), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

func poolConfig(cfg *config.Config) sqlstore.PoolConfig {
	return sqlstore.PoolConfig{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DB.ConnMaxLifetime) * time.Second,
		SlowQuery:       time.Duration(cfg.DB.SlowQuerySeconds * float64(time.Second)),
		LogLevel:        cfg.Logger.Level,
	}
}
