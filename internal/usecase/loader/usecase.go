// Package loader repopulates the store from the upstream placeholder API.
package loader

import (
	"context"
	"time"

	"go.uber.org/zap"

	"placeholder-mirror/internal/adapter/cache"
	domain "placeholder-mirror/internal/domain/user"
	apperrors "placeholder-mirror/pkg/errors"
	"placeholder-mirror/pkg/fanout"
	"placeholder-mirror/pkg/logger"
	"placeholder-mirror/pkg/metrics"
)

// DefaultUserLimit is the number of upstream users kept by a load.
const DefaultUserLimit = 10

// Fetcher reads the remote resources.
type Fetcher interface {
	Users(ctx context.Context) ([]domain.User, error)
	PostsByUser(ctx context.Context, userID int64) ([]domain.Post, error)
	CommentsByPost(ctx context.Context, postID int64) ([]domain.Comment, error)
}

// Options tunes a load run.
type Options struct {
	UserLimit      int // users kept from the head of the upstream list
	MaxConcurrency int // concurrent upstream requests per stage, 0 for unbounded
}

// Result reports what a successful run inserted.
type Result struct {
	Users    int `json:"users"`
	Posts    int `json:"posts"`
	Comments int `json:"comments"`
}

// Usecase runs the wipe-and-repopulate pipeline.
type Usecase struct {
	fetcher Fetcher
	gateway domain.Gateway
	cache   cache.UserDetailCache // nil disables invalidation
	metrics *metrics.Metrics
	opts    Options
	log     *zap.Logger
}

// New creates a loader. A non-positive UserLimit falls back to DefaultUserLimit.
func New(f Fetcher, gw domain.Gateway, c cache.UserDetailCache, m *metrics.Metrics, opts Options, log *zap.Logger) *Usecase {
	if opts.UserLimit <= 0 {
		opts.UserLimit = DefaultUserLimit
	}
	return &Usecase{fetcher: f, gateway: gw, cache: c, metrics: m, opts: opts, log: log}
}

// LoadData replaces the stored users, posts and comments with a fresh copy of
// the first UserLimit upstream users and everything they own.
//
// Stages run in order and the first failure aborts the run. Collections wiped
// or inserted before the failure stay that way.
func (uc *Usecase) LoadData(ctx context.Context) (*Result, error) {
	log := logger.WithContext(ctx, uc.log).With(zap.String("op", "load_data"))
	start := time.Now()

	res, err := uc.run(ctx, log)

	// cached details describe the previous data even when the run failed midway
	uc.invalidateCache(ctx, log)

	if err != nil {
		uc.metrics.ObserveLoad(0, 0, 0, err)
		log.Error("data load failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, err
	}

	uc.metrics.ObserveLoad(res.Users, res.Posts, res.Comments, nil)
	log.Info("data load completed",
		zap.Int("users", res.Users),
		zap.Int("posts", res.Posts),
		zap.Int("comments", res.Comments),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func (uc *Usecase) run(ctx context.Context, log *zap.Logger) (*Result, error) {
	cols, err := uc.gateway.Collections()
	if err != nil {
		return nil, apperrors.NewInternalError("storage unavailable", err)
	}

	users, err := uc.fetcher.Users(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) > uc.opts.UserLimit {
		users = users[:uc.opts.UserLimit]
	}
	log.Info("fetched users", zap.Int("count", len(users)))

	if err := cols.Users.DeleteAll(ctx); err != nil {
		return nil, err
	}
	if err := cols.Posts.DeleteAll(ctx); err != nil {
		return nil, err
	}
	if err := cols.Comments.DeleteAll(ctx); err != nil {
		return nil, err
	}
	log.Debug("cleared collections")

	if len(users) > 0 {
		if err := cols.Users.InsertMany(ctx, users); err != nil {
			return nil, err
		}
	}

	postGroups, err := fanout.Map(ctx, uc.opts.MaxConcurrency, users, func(ctx context.Context, u domain.User) ([]domain.Post, error) {
		return uc.fetcher.PostsByUser(ctx, u.ID)
	})
	if err != nil {
		return nil, err
	}
	posts := fanout.Flatten(postGroups)
	log.Info("fetched posts", zap.Int("count", len(posts)))

	if len(posts) > 0 {
		if err := cols.Posts.InsertMany(ctx, posts); err != nil {
			return nil, err
		}
	}

	commentGroups, err := fanout.Map(ctx, uc.opts.MaxConcurrency, posts, func(ctx context.Context, p domain.Post) ([]domain.Comment, error) {
		return uc.fetcher.CommentsByPost(ctx, p.ID)
	})
	if err != nil {
		return nil, err
	}
	comments := fanout.Flatten(commentGroups)
	log.Info("fetched comments", zap.Int("count", len(comments)))

	if len(comments) > 0 {
		if err := cols.Comments.InsertMany(ctx, comments); err != nil {
			return nil, err
		}
	}

	return &Result{Users: len(users), Posts: len(posts), Comments: len(comments)}, nil
}

func (uc *Usecase) invalidateCache(ctx context.Context, log *zap.Logger) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeleteAll(ctx); err != nil {
		log.Warn("failed to flush user detail cache", zap.Error(err))
	}
}
