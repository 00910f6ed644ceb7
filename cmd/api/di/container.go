package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"placeholder-mirror/cmd/api/infrastructure"
	"placeholder-mirror/internal/adapter/cache"
	ginhandler "placeholder-mirror/internal/adapter/gin/handler"
	ginrouter "placeholder-mirror/internal/adapter/gin/router"
	"placeholder-mirror/internal/adapter/upstream"
	"placeholder-mirror/internal/config"
	domain "placeholder-mirror/internal/domain/user"
	"placeholder-mirror/internal/usecase/loader"
	"placeholder-mirror/internal/usecase/user"
	"placeholder-mirror/pkg/metrics"
	redisclient "placeholder-mirror/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Gateway     domain.Gateway
	RedisClient *redisclient.Client // nil when REDIS_ENABLED is false
	Registry    *prometheus.Registry
	Metrics     *metrics.Metrics
	UserUC      *user.Usecase
	Loader      *loader.Usecase
	Router      *gin.Engine
}

// NewContainer creates and initializes all application dependencies.
// The store is connected before it returns.
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	gw, err := infrastructure.NewDatabase(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c := &Container{Config: cfg, Logger: l, Gateway: gw}

	var userCache cache.UserDetailCache
	if cfg.Redis.Enabled {
		rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
		if err != nil {
			_ = c.Close(ctx)
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		c.RedisClient = rdb
		userCache = cache.NewRedisUserDetailCache(
			rdb.Client,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			l,
		)
	}

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metrics.New(c.Registry)

	fetcher := upstream.NewClient(
		cfg.Upstream.BaseURL,
		time.Duration(cfg.Upstream.TimeoutSeconds)*time.Second,
		c.Metrics,
		l,
	)

	c.Loader = loader.New(fetcher, gw, userCache, c.Metrics, loader.Options{
		UserLimit:      cfg.Upstream.UserLimit,
		MaxConcurrency: cfg.Upstream.MaxConcurrency,
	}, l)
	c.UserUC = user.New(gw, userCache, cfg.Upstream.MaxConcurrency, l)

	c.Router = ginrouter.SetupRouter(
		ginhandler.NewUserHandler(c.UserUC, cfg.App.PublicBaseURL, l),
		ginhandler.NewDataHandler(c.Loader, cfg.App.Author, cfg.App.Portfolio),
		ginrouter.Options{
			ServiceName: cfg.Logger.ServiceName,
			Metrics:     c.Metrics,
			Gatherer:    c.Registry,
		},
		l,
	)

	return c, nil
}

// Close closes all resources held by the container
func (c *Container) Close(ctx context.Context) error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.Gateway != nil {
		if err := c.Gateway.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
