package user

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"placeholder-mirror/internal/adapter/cache"
	domain "placeholder-mirror/internal/domain/user"
	apperrors "placeholder-mirror/pkg/errors"
	"placeholder-mirror/pkg/fanout"
	"placeholder-mirror/pkg/logger"
)

// Messages returned to clients.
const (
	MsgInvalidID     = "Invalid user ID format"
	MsgNotFound      = "User not found"
	MsgAlreadyExists = "User already exists"
	MsgMissingFields = "Missing required user fields"
)

// Usecase implements the business logic for the mirrored users.
// Collections are resolved from the gateway on every call; before Connect every
// operation fails with an internal error.
type Usecase struct {
	gateway        domain.Gateway
	cache          cache.UserDetailCache // nil disables caching
	log            *zap.Logger
	validate       *validator.Validate
	maxConcurrency int
	group          singleflight.Group
}

// New creates a new instance of Usecase. maxConcurrency bounds the comment
// fan-out of GetUserByID; zero means unbounded.
func New(gw domain.Gateway, c cache.UserDetailCache, maxConcurrency int, log *zap.Logger) *Usecase {
	return &Usecase{
		gateway:        gw,
		cache:          c,
		log:            log,
		validate:       validator.New(),
		maxConcurrency: maxConcurrency,
	}
}

// parseID parses a base-10 int64 user id.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.NewInvalidIDError(raw, MsgInvalidID, err)
	}
	return id, nil
}

func (uc *Usecase) collections() (*domain.Collections, error) {
	cols, err := uc.gateway.Collections()
	if err != nil {
		return nil, apperrors.NewInternalError("storage unavailable", err)
	}
	return cols, nil
}

// GetUserByID returns the user with its posts and their comments.
// Assembled details are served cache-aside; concurrent misses for the same id
// share one database read.
func (uc *Usecase) GetUserByID(ctx context.Context, rawID string) (*domain.UserDetail, error) {
	log := logger.WithContext(ctx, uc.log).With(zap.String("op", "get_user"), zap.String("raw_id", rawID))

	id, err := parseID(rawID)
	if err != nil {
		log.Warn("get user validation failed", zap.Error(err))
		return nil, err
	}

	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, id)
		if err != nil {
			log.Warn("cache get error, falling back to database", zap.Error(err))
		} else if cached != nil {
			log.Info("user retrieved from cache", zap.Int64("id", id))
			return cached, nil
		}
	}

	// The shared load outlives any single caller; each caller waits on its own ctx.
	ch := uc.group.DoChan(fmt.Sprintf("user:detail:%d", id), func() (any, error) {
		return uc.loadAndCache(context.WithoutCancel(ctx), log, id)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		log.Warn("get user abandoned by caller", zap.Int64("id", id), zap.Error(ctx.Err()))
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		if apperrors.KindOf(res.Err) == apperrors.KindNotFound {
			log.Warn("user not found", zap.Int64("id", id))
		} else {
			log.Error("failed to get user", zap.Int64("id", id), zap.Error(res.Err))
		}
		return nil, res.Err
	}

	detail := res.Val.(*domain.UserDetail)
	log.Info("user retrieved", zap.Int64("id", id), zap.Int("posts", len(detail.Posts)))
	return detail, nil
}

// loadAndCache assembles the detail and caches it unless the user was
// invalidated while it was being read.
func (uc *Usecase) loadAndCache(ctx context.Context, log *zap.Logger, id int64) (*domain.UserDetail, error) {
	if uc.cache == nil {
		return uc.loadDetail(ctx, id)
	}

	// another caller may have filled the cache while we waited
	if cached, err := uc.cache.Get(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	// read before the store so a delete landing mid-load voids the Set
	gen, genErr := uc.cache.Generation(ctx, id)
	if genErr != nil {
		log.Warn("cache generation unavailable, result will not be cached", zap.Int64("id", id), zap.Error(genErr))
	}

	detail, err := uc.loadDetail(ctx, id)
	if err != nil || genErr != nil {
		return detail, err
	}

	switch err := uc.cache.Set(ctx, detail, gen); {
	case errors.Is(err, cache.ErrStaleGeneration):
		log.Debug("user detail invalidated during load, not cached", zap.Int64("id", id))
	case err != nil:
		log.Warn("failed to cache user detail", zap.Int64("id", id), zap.Error(err))
	}
	return detail, nil
}

// loadDetail reads the user, its posts and, concurrently, the comments of each post.
func (uc *Usecase) loadDetail(ctx context.Context, id int64) (*domain.UserDetail, error) {
	cols, err := uc.collections()
	if err != nil {
		return nil, err
	}

	u, err := cols.Users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperrors.NewNotFoundError("user", id, MsgNotFound)
	}

	posts, err := cols.Posts.FindByUserID(ctx, id)
	if err != nil {
		return nil, err
	}

	details, err := fanout.Map(ctx, uc.maxConcurrency, posts, func(ctx context.Context, p domain.Post) (domain.PostDetail, error) {
		comments, err := cols.Comments.FindByPostID(ctx, p.ID)
		if err != nil {
			return domain.PostDetail{}, err
		}
		return domain.NewPostDetail(p, comments), nil
	})
	if err != nil {
		return nil, err
	}

	return domain.NewUserDetail(*u, details), nil
}

// CreateUser stores a new user after checking required fields and id uniqueness.
func (uc *Usecase) CreateUser(ctx context.Context, in CreateUserRequest) (*domain.User, error) {
	log := logger.WithContext(ctx, uc.log).With(zap.String("op", "create_user"), zap.Int64("id", in.ID))

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, missingFieldsError(err)
	}

	cols, err := uc.collections()
	if err != nil {
		log.Error("failed to create user", zap.Error(err))
		return nil, err
	}

	existing, err := cols.Users.FindByID(ctx, in.ID)
	if err != nil {
		log.Error("failed to check existing user", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		log.Warn("user already exists")
		return nil, apperrors.NewAlreadyExistsError("user", in.ID, MsgAlreadyExists)
	}

	u := in.ToDomain()
	if err := cols.Users.InsertOne(ctx, &u); err != nil {
		log.Error("failed to create user", zap.Error(err))
		return nil, err
	}

	log.Info("user created")
	return &u, nil
}

// missingFieldsError converts validator.ValidationErrors into a ValidationError
// naming the offending fields.
func missingFieldsError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.NewValidationError(MsgMissingFields)
	}

	fields := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		fields = append(fields, e.Field())
	}
	return apperrors.NewValidationError(MsgMissingFields, fields...)
}

// DeleteUserByID removes the user, its posts and the comments of those posts.
func (uc *Usecase) DeleteUserByID(ctx context.Context, rawID string) error {
	log := logger.WithContext(ctx, uc.log).With(zap.String("op", "delete_user"), zap.String("raw_id", rawID))

	id, err := parseID(rawID)
	if err != nil {
		log.Warn("delete user validation failed", zap.Error(err))
		return err
	}

	err = uc.cascadeDelete(ctx, id)
	if err != nil && apperrors.KindOf(err) == apperrors.KindNotFound {
		log.Warn("user not found", zap.Int64("id", id))
		return err
	}

	// a failed cascade may still have removed the user row
	if uc.cache != nil {
		if cacheErr := uc.cache.Delete(ctx, id); cacheErr != nil {
			log.Warn("failed to invalidate cache after delete", zap.Int64("id", id), zap.Error(cacheErr))
		}
	}

	if err != nil {
		log.Error("failed to delete user", zap.Int64("id", id), zap.Error(err))
		return err
	}

	log.Info("user deleted", zap.Int64("id", id))
	return nil
}

func (uc *Usecase) cascadeDelete(ctx context.Context, id int64) error {
	cols, err := uc.collections()
	if err != nil {
		return err
	}

	u, err := cols.Users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return apperrors.NewNotFoundError("user", id, MsgNotFound)
	}

	if err := cols.Users.DeleteByID(ctx, id); err != nil {
		return err
	}

	posts, err := cols.Posts.FindByUserID(ctx, id)
	if err != nil {
		return err
	}
	postIDs := make([]int64, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	if err := cols.Posts.DeleteByUserID(ctx, id); err != nil {
		return err
	}
	if len(postIDs) > 0 {
		if err := cols.Comments.DeleteByPostIDs(ctx, postIDs); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAllUsers empties users, posts and comments.
func (uc *Usecase) DeleteAllUsers(ctx context.Context) error {
	log := logger.WithContext(ctx, uc.log).With(zap.String("op", "delete_all_users"))

	if err := uc.deleteAll(ctx); err != nil {
		log.Error("failed to delete users", zap.Error(err))
		return err
	}

	if uc.cache != nil {
		if err := uc.cache.DeleteAll(ctx); err != nil {
			log.Warn("failed to flush user detail cache", zap.Error(err))
		}
	}

	log.Info("all users deleted")
	return nil
}

func (uc *Usecase) deleteAll(ctx context.Context) error {
	cols, err := uc.collections()
	if err != nil {
		return err
	}
	if err := cols.Users.DeleteAll(ctx); err != nil {
		return err
	}
	if err := cols.Posts.DeleteAll(ctx); err != nil {
		return err
	}
	return cols.Comments.DeleteAll(ctx)
}
