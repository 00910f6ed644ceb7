package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "placeholder-mirror/internal/domain/user"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func sampleDetail(id int64) *domain.UserDetail {
	post := domain.Post{ID: id * 10, UserID: id, Title: "title", Body: "body"}
	comments := []domain.Comment{{ID: id * 100, PostID: post.ID, Name: "n", Email: "e@example.com", Body: "c"}}
	return domain.NewUserDetail(
		domain.User{ID: id, Name: "Leanne Graham", Username: "Bret", Email: "Sincere@april.biz"},
		[]domain.PostDetail{domain.NewPostDetail(post, comments)},
	)
}

func TestRedisUserDetailCache_Set_Success(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserDetailCache(client, 5*time.Minute, zaptest.NewLogger(t))

	detail := sampleDetail(1)
	err := cache.Set(context.Background(), detail, Generation{})
	require.NoError(t, err)

	// Verify data is in Redis
	data, err := client.Get(context.Background(), "user:detail:1").Bytes()
	require.NoError(t, err)

	var cached domain.UserDetail
	require.NoError(t, json.Unmarshal(data, &cached))
	assert.Equal(t, *detail, cached)
}

func TestRedisUserDetailCache_Set_Nil(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserDetailCache(client, 5*time.Minute, zaptest.NewLogger(t))

	err := cache.Set(context.Background(), nil, Generation{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot cache nil user detail")
}

func TestRedisUserDetailCache_Get_Success(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserDetailCache(client, 5*time.Minute, zaptest.NewLogger(t))

	detail := sampleDetail(2)
	require.NoError(t, cache.Set(context.Background(), detail, Generation{}))

	got, err := cache.Get(context.Background(), 2)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, detail, got)
}

func TestRedisUserDetailCache_Get_CacheMiss(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserDetailCache(client, 5*time.Minute, zaptest.NewLogger(t))

	got, err := cache.Get(context.Background(), 999)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisUserDetailCache_Get_Corrupted(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserDetailCache(client, 5*time.Minute, zaptest.NewLogger(t))

	require.NoError(t, mr.Set("user:detail:3", "{not json"))

	got, err := cache.Get(context.Background(), 3)
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestRedisUserDetailCache_Delete_Success(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserDetailCache(client, 5*time.Minute, zaptest.NewLogger(t))

	require.NoError(t, cache.Set(context.Background(), sampleDetail(1), Generation{}))
	assert.True(t, mr.Exists("user:detail:1"))

	require.NoError(t, cache.Delete(context.Background(), 1))
	assert.False(t, mr.Exists("user:detail:1"))

	// deleting a missing key is not an error
	assert.NoError(t, cache.Delete(context.Background(), 1))
}

func TestRedisUserDetailCache_DeleteAll(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserDetailCache(client, 5*time.Minute, zaptest.NewLogger(t))

	for id := int64(1); id <= 250; id++ {
		require.NoError(t, cache.Set(context.Background(), sampleDetail(id), Generation{}))
	}
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, cache.DeleteAll(context.Background()))

	for id := 1; id <= 250; id++ {
		assert.False(t, mr.Exists(fmt.Sprintf("user:detail:%d", id)))
	}
	assert.True(t, mr.Exists("unrelated"))
}

func TestRedisUserDetailCache_DeleteAll_Empty(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserDetailCache(client, 5*time.Minute, zaptest.NewLogger(t))

	assert.NoError(t, cache.DeleteAll(context.Background()))
}

func TestRedisUserDetailCache_Generation(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserDetailCache(client, time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	gen, err := cache.Generation(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, Generation{}, gen)

	require.NoError(t, cache.Delete(ctx, 1))
	require.NoError(t, cache.Delete(ctx, 1))
	require.NoError(t, cache.DeleteAll(ctx))

	gen, err = cache.Generation(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, Generation{All: 1, User: 2}, gen)

	other, err := cache.Generation(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, Generation{All: 1}, other)
}

func TestRedisUserDetailCache_Set_StaleAfterDelete(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserDetailCache(client, time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	gen, err := cache.Generation(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, cache.Delete(ctx, 1))

	err = cache.Set(ctx, sampleDetail(1), gen)
	assert.ErrorIs(t, err, ErrStaleGeneration)
	assert.False(t, mr.Exists("user:detail:1"))

	// other ids are unaffected
	require.NoError(t, cache.Set(ctx, sampleDetail(2), gen))

	fresh, err := cache.Generation(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, cache.Set(ctx, sampleDetail(1), fresh))
	assert.True(t, mr.Exists("user:detail:1"))
}

func TestRedisUserDetailCache_Set_StaleAfterDeleteAll(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserDetailCache(client, time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	gen, err := cache.Generation(ctx, 7)
	require.NoError(t, err)

	require.NoError(t, cache.DeleteAll(ctx))

	assert.ErrorIs(t, cache.Set(ctx, sampleDetail(7), gen), ErrStaleGeneration)
	assert.False(t, mr.Exists("user:detail:7"))
	assert.True(t, mr.Exists("user:generation"), "DeleteAll must not scan away its own counter")
}

func TestRedisUserDetailCache_TTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserDetailCache(client, 2*time.Second, zaptest.NewLogger(t))

	require.NoError(t, cache.Set(context.Background(), sampleDetail(1), Generation{}))
	assert.Equal(t, 2*time.Second, mr.TTL("user:detail:1"))

	mr.FastForward(3 * time.Second)

	got, err := cache.Get(context.Background(), 1)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisUserDetailCache_Unavailable(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserDetailCache(client, time.Minute, zaptest.NewLogger(t))
	mr.Close()

	_, err := cache.Get(context.Background(), 1)
	assert.Error(t, err)
	assert.Error(t, cache.DeleteAll(context.Background()))
}
