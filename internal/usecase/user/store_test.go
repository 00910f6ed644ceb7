package user

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"placeholder-mirror/internal/adapter/cache"
	"placeholder-mirror/internal/adapter/db/sqlstore"
	domain "placeholder-mirror/internal/domain/user"
	apperrors "placeholder-mirror/pkg/errors"
)

// seededUsecase wires the usecase to a SQLite store and a miniredis cache
// holding two users, three posts and four comments.
func seededUsecase(t *testing.T) (*Usecase, *domain.Collections, *miniredis.Miniredis) {
	t.Helper()
	ctx := context.Background()
	log := zaptest.NewLogger(t)

	gw := sqlstore.NewSQLiteGateway(filepath.Join(t.TempDir(), "mirror.db"), sqlstore.PoolConfig{}, log)
	require.NoError(t, gw.Connect(ctx))
	t.Cleanup(func() { _ = gw.Close(ctx) })

	cols, err := gw.Collections()
	require.NoError(t, err)

	require.NoError(t, cols.Users.InsertMany(ctx, []domain.User{
		{ID: 1, Name: "Leanne Graham", Username: "Bret", Email: "Sincere@april.biz"},
		{ID: 2, Name: "Ervin Howell", Username: "Antonette", Email: "Shanna@melissa.tv"},
	}))
	require.NoError(t, cols.Posts.InsertMany(ctx, []domain.Post{
		{ID: 1, UserID: 1, Title: "a"},
		{ID: 2, UserID: 1, Title: "b"},
		{ID: 3, UserID: 2, Title: "c"},
	}))
	require.NoError(t, cols.Comments.InsertMany(ctx, []domain.Comment{
		{ID: 1, PostID: 1},
		{ID: 2, PostID: 1},
		{ID: 3, PostID: 2},
		{ID: 4, PostID: 3},
	}))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	uc := New(gw, cache.NewRedisUserDetailCache(client, time.Minute, log), 2, log)
	return uc, cols, mr
}

// heldSetCache parks the first Set until release is closed.
type heldSetCache struct {
	cache.UserDetailCache
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func holdSets(uc *Usecase) *heldSetCache {
	h := &heldSetCache{
		UserDetailCache: uc.cache,
		entered:         make(chan struct{}),
		release:         make(chan struct{}),
	}
	uc.cache = h
	return h
}

func (h *heldSetCache) Set(ctx context.Context, detail *domain.UserDetail, gen cache.Generation) error {
	h.once.Do(func() { close(h.entered) })
	<-h.release
	return h.UserDetailCache.Set(ctx, detail, gen)
}

func TestUsecase_GetRacingDelete_DoesNotResurrectUser(t *testing.T) {
	uc, _, mr := seededUsecase(t)
	held := holdSets(uc)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := uc.GetUserByID(ctx, "1")
		done <- err
	}()
	<-held.entered

	require.NoError(t, uc.DeleteUserByID(ctx, "1"))
	close(held.release)
	require.NoError(t, <-done)

	assert.False(t, mr.Exists("user:detail:1"))
	_, err := uc.GetUserByID(ctx, "1")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestUsecase_GetRacingDeleteAll_DoesNotResurrectUser(t *testing.T) {
	uc, _, mr := seededUsecase(t)
	held := holdSets(uc)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := uc.GetUserByID(ctx, "2")
		done <- err
	}()
	<-held.entered

	require.NoError(t, uc.DeleteAllUsers(ctx))
	close(held.release)
	require.NoError(t, <-done)

	assert.False(t, mr.Exists("user:detail:2"))
	_, err := uc.GetUserByID(ctx, "2")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestUsecase_GetUserByID_Store(t *testing.T) {
	uc, _, mr := seededUsecase(t)

	detail, err := uc.GetUserByID(context.Background(), "1")
	require.NoError(t, err)

	require.Len(t, detail.Posts, 2)
	assert.Len(t, detail.Posts[0].Comments, 2)
	assert.Len(t, detail.Posts[1].Comments, 1)
	assert.True(t, mr.Exists("user:detail:1"))
}

func TestUsecase_GetUserByID_ConcurrentReaders(t *testing.T) {
	uc, _, _ := seededUsecase(t)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			detail, err := uc.GetUserByID(context.Background(), "2")
			if err == nil && len(detail.Posts) != 1 {
				err = assert.AnError
			}
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestUsecase_DeleteUserByID_Store(t *testing.T) {
	uc, cols, mr := seededUsecase(t)
	ctx := context.Background()

	_, err := uc.GetUserByID(ctx, "1")
	require.NoError(t, err)
	require.True(t, mr.Exists("user:detail:1"))

	require.NoError(t, uc.DeleteUserByID(ctx, "1"))

	assert.False(t, mr.Exists("user:detail:1"))

	u, err := cols.Users.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, u)

	posts, err := cols.Posts.FindByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, posts)

	for _, postID := range []int64{1, 2} {
		comments, err := cols.Comments.FindByPostID(ctx, postID)
		require.NoError(t, err)
		assert.Empty(t, comments)
	}

	// the other user is untouched
	detail, err := uc.GetUserByID(ctx, "2")
	require.NoError(t, err)
	require.Len(t, detail.Posts, 1)
	assert.Len(t, detail.Posts[0].Comments, 1)

	_, err = uc.GetUserByID(ctx, "1")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestUsecase_DeleteAllUsers_Twice(t *testing.T) {
	uc, cols, mr := seededUsecase(t)
	ctx := context.Background()

	_, err := uc.GetUserByID(ctx, "2")
	require.NoError(t, err)

	require.NoError(t, uc.DeleteAllUsers(ctx))
	require.NoError(t, uc.DeleteAllUsers(ctx))

	assert.False(t, mr.Exists("user:detail:2"))
	for _, id := range []int64{1, 2} {
		u, err := cols.Users.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, u)
	}
	comments, err := cols.Comments.FindByPostID(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestUsecase_CreateUser_DuplicateKeepsOne(t *testing.T) {
	uc, cols, _ := seededUsecase(t)
	ctx := context.Background()

	req := CreateUserRequest{ID: 99, Name: "New", Username: "newbie", Email: "new@example.com"}

	_, err := uc.CreateUser(ctx, req)
	require.NoError(t, err)

	_, err = uc.CreateUser(ctx, CreateUserRequest{ID: 99, Name: "Other", Username: "other", Email: "o@example.com"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAlreadyExists, apperrors.KindOf(err))

	u, err := cols.Users.FindByID(ctx, 99)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "newbie", u.Username)
}
