package mongostore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "placeholder-mirror/internal/domain/user"
)

// setupMongo connects to the server named by MONGO_TEST_URI in a throwaway
// database, skipping the test when the variable is unset.
func setupMongo(t *testing.T) *domain.Collections {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	gw := NewGateway(Config{
		URI:            uri,
		Database:       fmt.Sprintf("mirror_test_%d", time.Now().UnixNano()),
		ConnectTimeout: 10 * time.Second,
	}, zaptest.NewLogger(t))
	require.NoError(t, gw.Connect(context.Background()))

	t.Cleanup(func() {
		ctx := context.Background()
		_ = gw.client.Database(gw.cfg.Database).Drop(ctx)
		_ = gw.Close(ctx)
	})

	cols, err := gw.Collections()
	require.NoError(t, err)
	return cols
}

func TestGateway_CollectionsBeforeConnect(t *testing.T) {
	gw := NewGateway(Config{URI: "mongodb://localhost:27017", Database: "x"}, zaptest.NewLogger(t))

	cols, err := gw.Collections()
	assert.Nil(t, cols)
	assert.ErrorIs(t, err, domain.ErrStoreNotInitialized)

	// closing an unconnected gateway is a no-op
	assert.NoError(t, gw.Close(context.Background()))
}

func TestGateway_ConnectInvalidURI(t *testing.T) {
	gw := NewGateway(Config{URI: "not-a-mongo-uri", Database: "x"}, zaptest.NewLogger(t))

	err := gw.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to MongoDB")

	_, err = gw.Collections()
	assert.ErrorIs(t, err, domain.ErrStoreNotInitialized)
}

func TestRepos_Integration(t *testing.T) {
	cols := setupMongo(t)
	ctx := context.Background()

	users := []domain.User{
		{ID: 1, Name: "Leanne Graham", Username: "Bret", Email: "Sincere@april.biz",
			Company: domain.Company{Name: "Romaguera-Crona", CatchPhrase: "neural-net", BS: "e-markets"}},
		{ID: 2, Name: "Ervin Howell", Username: "Antonette", Email: "Shanna@melissa.tv"},
	}
	require.NoError(t, cols.Users.InsertMany(ctx, users))
	require.NoError(t, cols.Posts.InsertMany(ctx, []domain.Post{
		{ID: 1, UserID: 1, Title: "a"},
		{ID: 2, UserID: 1, Title: "b"},
		{ID: 3, UserID: 2, Title: "c"},
	}))
	require.NoError(t, cols.Comments.InsertMany(ctx, []domain.Comment{
		{ID: 10, PostID: 1},
		{ID: 11, PostID: 2},
		{ID: 12, PostID: 3},
	}))

	got, err := cols.Users.FindByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, users[0], *got)

	missing, err := cols.Users.FindByID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)

	posts, err := cols.Posts.FindByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	require.NoError(t, cols.Users.DeleteByID(ctx, 1))
	require.NoError(t, cols.Posts.DeleteByUserID(ctx, 1))
	require.NoError(t, cols.Comments.DeleteByPostIDs(ctx, []int64{1, 2}))

	comments, err := cols.Comments.FindByPostID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, comments)
	comments, err = cols.Comments.FindByPostID(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	require.NoError(t, cols.Users.DeleteAll(ctx))
	require.NoError(t, cols.Posts.DeleteAll(ctx))
	require.NoError(t, cols.Comments.DeleteAll(ctx))

	got, err = cols.Users.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, got)
}
