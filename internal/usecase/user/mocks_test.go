package user

import (
	"context"

	"github.com/stretchr/testify/mock"

	"placeholder-mirror/internal/adapter/cache"
	domain "placeholder-mirror/internal/domain/user"
)

// MockGateway is a mock implementation of domain.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Connect(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockGateway) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockGateway) Collections() (*domain.Collections, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Collections), args.Error(1)
}

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) InsertMany(ctx context.Context, users []domain.User) error {
	return m.Called(ctx, users).Error(0)
}

func (m *MockUserRepository) InsertOne(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) DeleteByID(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) DeleteAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockPostRepository is a mock implementation of domain.PostRepository
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) InsertMany(ctx context.Context, posts []domain.Post) error {
	return m.Called(ctx, posts).Error(0)
}

func (m *MockPostRepository) FindByUserID(ctx context.Context, userID int64) ([]domain.Post, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Post), args.Error(1)
}

func (m *MockPostRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockPostRepository) DeleteAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockCommentRepository is a mock implementation of domain.CommentRepository
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) InsertMany(ctx context.Context, comments []domain.Comment) error {
	return m.Called(ctx, comments).Error(0)
}

func (m *MockCommentRepository) FindByPostID(ctx context.Context, postID int64) ([]domain.Comment, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) DeleteByPostIDs(ctx context.Context, postIDs []int64) error {
	return m.Called(ctx, postIDs).Error(0)
}

func (m *MockCommentRepository) DeleteAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockCache is a mock implementation of cache.UserDetailCache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, id int64) (*domain.UserDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserDetail), args.Error(1)
}

func (m *MockCache) Generation(ctx context.Context, id int64) (cache.Generation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(cache.Generation), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, detail *domain.UserDetail, gen cache.Generation) error {
	return m.Called(ctx, detail, gen).Error(0)
}

func (m *MockCache) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCache) DeleteAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockStore struct {
	gateway  *MockGateway
	users    *MockUserRepository
	posts    *MockPostRepository
	comments *MockCommentRepository
}

func newMockStore() *mockStore {
	s := &mockStore{
		gateway:  new(MockGateway),
		users:    new(MockUserRepository),
		posts:    new(MockPostRepository),
		comments: new(MockCommentRepository),
	}
	s.gateway.On("Collections").Return(&domain.Collections{
		Users:    s.users,
		Posts:    s.posts,
		Comments: s.comments,
	}, nil).Maybe()
	return s
}

func (s *mockStore) assertExpectations(t mock.TestingT) {
	s.users.AssertExpectations(t)
	s.posts.AssertExpectations(t)
	s.comments.AssertExpectations(t)
}
