package sqlstore

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	domain "placeholder-mirror/internal/domain/user"
	apperrors "placeholder-mirror/pkg/errors"
)

// insertBatchSize bounds the rows per INSERT statement.
const insertBatchSize = 500

// UserRepo implements domain.UserRepository with GORM.
type UserRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(db *gorm.DB, log *zap.Logger) *UserRepo {
	return &UserRepo{db: db, log: log}
}

// InsertMany inserts users in batches.
func (r *UserRepo) InsertMany(ctx context.Context, users []domain.User) error {
	if len(users) == 0 {
		return nil
	}

	models := make([]UserSchema, len(users))
	for i, u := range users {
		models[i] = toUserSchema(u)
	}

	if err := r.db.WithContext(ctx).CreateInBatches(&models, insertBatchSize).Error; err != nil {
		r.log.Error("failed to insert users", zap.Int("count", len(users)), zap.Error(err))
		return apperrors.NewStorageError("insert many", "users", err)
	}
	return nil
}

// InsertOne inserts a single user.
func (r *UserRepo) InsertOne(ctx context.Context, u *domain.User) error {
	if u == nil {
		return apperrors.NewStorageError("insert one", "users", errors.New("user cannot be nil"))
	}

	model := toUserSchema(*u)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to insert user", zap.Int64("id", u.ID), zap.Error(err))
		return apperrors.NewStorageError("insert one", "users", err)
	}
	return nil
}

// FindByID returns the user with id, or nil when there is none.
func (r *UserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&models).Error; err != nil {
		r.log.Error("failed to find user", zap.Int64("id", id), zap.Error(err))
		return nil, apperrors.NewStorageError("find", "users", err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	return models[0].toDomain(), nil
}

// DeleteByID removes the user with id.
func (r *UserRepo) DeleteByID(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&UserSchema{}).Error; err != nil {
		r.log.Error("failed to delete user", zap.Int64("id", id), zap.Error(err))
		return apperrors.NewStorageError("delete", "users", err)
	}
	return nil
}

// DeleteAll removes every user.
func (r *UserRepo) DeleteAll(ctx context.Context) error {
	return deleteAll(ctx, r.db, &UserSchema{}, "users")
}

// PostRepo implements domain.PostRepository with GORM.
type PostRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewPostRepo creates a new instance of PostRepo.
func NewPostRepo(db *gorm.DB, log *zap.Logger) *PostRepo {
	return &PostRepo{db: db, log: log}
}

// InsertMany inserts posts in batches.
func (r *PostRepo) InsertMany(ctx context.Context, posts []domain.Post) error {
	if len(posts) == 0 {
		return nil
	}

	models := make([]PostSchema, len(posts))
	for i, p := range posts {
		models[i] = toPostSchema(p)
	}

	if err := r.db.WithContext(ctx).CreateInBatches(&models, insertBatchSize).Error; err != nil {
		r.log.Error("failed to insert posts", zap.Int("count", len(posts)), zap.Error(err))
		return apperrors.NewStorageError("insert many", "posts", err)
	}
	return nil
}

// FindByUserID returns the posts of userID ordered by id.
func (r *PostRepo) FindByUserID(ctx context.Context, userID int64) ([]domain.Post, error) {
	var models []PostSchema
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&models).Error; err != nil {
		r.log.Error("failed to find posts", zap.Int64("user_id", userID), zap.Error(err))
		return nil, apperrors.NewStorageError("find", "posts", err)
	}

	posts := make([]domain.Post, len(models))
	for i, m := range models {
		posts[i] = m.toDomain()
	}
	return posts, nil
}

// DeleteByUserID removes every post of userID.
func (r *PostRepo) DeleteByUserID(ctx context.Context, userID int64) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&PostSchema{}).Error; err != nil {
		r.log.Error("failed to delete posts", zap.Int64("user_id", userID), zap.Error(err))
		return apperrors.NewStorageError("delete", "posts", err)
	}
	return nil
}

// DeleteAll removes every post.
func (r *PostRepo) DeleteAll(ctx context.Context) error {
	return deleteAll(ctx, r.db, &PostSchema{}, "posts")
}

// CommentRepo implements domain.CommentRepository with GORM.
type CommentRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewCommentRepo creates a new instance of CommentRepo.
func NewCommentRepo(db *gorm.DB, log *zap.Logger) *CommentRepo {
	return &CommentRepo{db: db, log: log}
}

// InsertMany inserts comments in batches.
func (r *CommentRepo) InsertMany(ctx context.Context, comments []domain.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	models := make([]CommentSchema, len(comments))
	for i, c := range comments {
		models[i] = toCommentSchema(c)
	}

	if err := r.db.WithContext(ctx).CreateInBatches(&models, insertBatchSize).Error; err != nil {
		r.log.Error("failed to insert comments", zap.Int("count", len(comments)), zap.Error(err))
		return apperrors.NewStorageError("insert many", "comments", err)
	}
	return nil
}

// FindByPostID returns the comments of postID ordered by id.
func (r *CommentRepo) FindByPostID(ctx context.Context, postID int64) ([]domain.Comment, error) {
	var models []CommentSchema
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("id").Find(&models).Error; err != nil {
		r.log.Error("failed to find comments", zap.Int64("post_id", postID), zap.Error(err))
		return nil, apperrors.NewStorageError("find", "comments", err)
	}

	comments := make([]domain.Comment, len(models))
	for i, m := range models {
		comments[i] = m.toDomain()
	}
	return comments, nil
}

// DeleteByPostIDs removes every comment whose post id is in postIDs.
func (r *CommentRepo) DeleteByPostIDs(ctx context.Context, postIDs []int64) error {
	if len(postIDs) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Delete(&CommentSchema{}).Error; err != nil {
		r.log.Error("failed to delete comments", zap.Int("post_count", len(postIDs)), zap.Error(err))
		return apperrors.NewStorageError("delete", "comments", err)
	}
	return nil
}

// DeleteAll removes every comment.
func (r *CommentRepo) DeleteAll(ctx context.Context) error {
	return deleteAll(ctx, r.db, &CommentSchema{}, "comments")
}

// deleteAll issues an unconditional DELETE; GORM refuses one without a WHERE clause.
func deleteAll(ctx context.Context, db *gorm.DB, model any, table string) error {
	if err := db.WithContext(ctx).Where("1 = 1").Delete(model).Error; err != nil {
		return apperrors.NewStorageError("delete all", table, err)
	}
	return nil
}
