package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	domain "placeholder-mirror/internal/domain/user"
	apperrors "placeholder-mirror/pkg/errors"
)

// UserRepo implements domain.UserRepository over the users collection.
type UserRepo struct {
	coll *mongo.Collection
	log  *zap.Logger
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(coll *mongo.Collection, log *zap.Logger) *UserRepo {
	return &UserRepo{coll: coll, log: log}
}

// InsertMany inserts users in one bulk write.
func (r *UserRepo) InsertMany(ctx context.Context, users []domain.User) error {
	return insertMany(ctx, r.coll, r.log, users)
}

// InsertOne inserts a single user.
func (r *UserRepo) InsertOne(ctx context.Context, u *domain.User) error {
	if u == nil {
		return apperrors.NewStorageError("insert one", r.coll.Name(), errors.New("user cannot be nil"))
	}
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		r.log.Error("failed to insert user", zap.Int64("id", u.ID), zap.Error(err))
		return apperrors.NewStorageError("insert one", r.coll.Name(), err)
	}
	return nil
}

// FindByID returns the user with id, or nil when there is none.
func (r *UserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("failed to find user", zap.Int64("id", id), zap.Error(err))
		return nil, apperrors.NewStorageError("find", r.coll.Name(), err)
	}
	return &u, nil
}

// DeleteByID removes the user with id.
func (r *UserRepo) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		r.log.Error("failed to delete user", zap.Int64("id", id), zap.Error(err))
		return apperrors.NewStorageError("delete", r.coll.Name(), err)
	}
	return nil
}

// DeleteAll removes every user.
func (r *UserRepo) DeleteAll(ctx context.Context) error {
	return deleteMany(ctx, r.coll, bson.M{})
}

// PostRepo implements domain.PostRepository over the posts collection.
type PostRepo struct {
	coll *mongo.Collection
	log  *zap.Logger
}

// NewPostRepo creates a new instance of PostRepo.
func NewPostRepo(coll *mongo.Collection, log *zap.Logger) *PostRepo {
	return &PostRepo{coll: coll, log: log}
}

// InsertMany inserts posts in one bulk write.
func (r *PostRepo) InsertMany(ctx context.Context, posts []domain.Post) error {
	return insertMany(ctx, r.coll, r.log, posts)
}

// FindByUserID returns the posts of userID in insertion order.
func (r *PostRepo) FindByUserID(ctx context.Context, userID int64) ([]domain.Post, error) {
	posts, err := findAll[domain.Post](ctx, r.coll, bson.M{"userId": userID})
	if err != nil {
		r.log.Error("failed to find posts", zap.Int64("user_id", userID), zap.Error(err))
	}
	return posts, err
}

// DeleteByUserID removes every post of userID.
func (r *PostRepo) DeleteByUserID(ctx context.Context, userID int64) error {
	return deleteMany(ctx, r.coll, bson.M{"userId": userID})
}

// DeleteAll removes every post.
func (r *PostRepo) DeleteAll(ctx context.Context) error {
	return deleteMany(ctx, r.coll, bson.M{})
}

// CommentRepo implements domain.CommentRepository over the comments collection.
type CommentRepo struct {
	coll *mongo.Collection
	log  *zap.Logger
}

// NewCommentRepo creates a new instance of CommentRepo.
func NewCommentRepo(coll *mongo.Collection, log *zap.Logger) *CommentRepo {
	return &CommentRepo{coll: coll, log: log}
}

// InsertMany inserts comments in one bulk write.
func (r *CommentRepo) InsertMany(ctx context.Context, comments []domain.Comment) error {
	return insertMany(ctx, r.coll, r.log, comments)
}

// FindByPostID returns the comments of postID in insertion order.
func (r *CommentRepo) FindByPostID(ctx context.Context, postID int64) ([]domain.Comment, error) {
	comments, err := findAll[domain.Comment](ctx, r.coll, bson.M{"postId": postID})
	if err != nil {
		r.log.Error("failed to find comments", zap.Int64("post_id", postID), zap.Error(err))
	}
	return comments, err
}

// DeleteByPostIDs removes every comment whose postId is in postIDs.
func (r *CommentRepo) DeleteByPostIDs(ctx context.Context, postIDs []int64) error {
	if len(postIDs) == 0 {
		return nil
	}
	return deleteMany(ctx, r.coll, bson.M{"postId": bson.M{"$in": postIDs}})
}

// DeleteAll removes every comment.
func (r *CommentRepo) DeleteAll(ctx context.Context) error {
	return deleteMany(ctx, r.coll, bson.M{})
}

func insertMany[T any](ctx context.Context, coll *mongo.Collection, log *zap.Logger, items []T) error {
	if len(items) == 0 {
		return nil
	}

	docs := make([]interface{}, len(items))
	for i := range items {
		docs[i] = items[i]
	}

	if _, err := coll.InsertMany(ctx, docs); err != nil {
		log.Error("failed to insert documents", zap.String("collection", coll.Name()), zap.Int("count", len(items)), zap.Error(err))
		return apperrors.NewStorageError("insert many", coll.Name(), err)
	}
	return nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) ([]T, error) {
	cur, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, apperrors.NewStorageError("find", coll.Name(), err)
	}

	items := []T{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, apperrors.NewStorageError("find", coll.Name(), err)
	}
	return items, nil
}

func deleteMany(ctx context.Context, coll *mongo.Collection, filter bson.M) error {
	if _, err := coll.DeleteMany(ctx, filter); err != nil {
		return apperrors.NewStorageError("delete", coll.Name(), err)
	}
	return nil
}
