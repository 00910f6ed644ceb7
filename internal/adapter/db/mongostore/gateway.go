// Package mongostore keeps the mirrored collections in MongoDB.
package mongostore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	domain "placeholder-mirror/internal/domain/user"
)

// Collection names.
const (
	UsersCollection    = "users"
	PostsCollection    = "posts"
	CommentsCollection = "comments"
)

// Config holds MongoDB connection settings.
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// Gateway implements domain.Gateway with a single mongo.Client.
type Gateway struct {
	cfg Config
	log *zap.Logger

	mu          sync.Mutex
	client      *mongo.Client
	collections *domain.Collections
}

// NewGateway creates an unconnected gateway.
func NewGateway(cfg Config, log *zap.Logger) *Gateway {
	return &Gateway{cfg: cfg, log: log}
}

// Connect dials MongoDB, pings the primary and binds the three collections.
// Calling it on a connected gateway does nothing.
func (g *Gateway) Connect(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return nil
	}

	if g.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.ConnectTimeout)
		defer cancel()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(g.cfg.URI))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(g.cfg.Database)
	g.client = client
	g.collections = &domain.Collections{
		Users:    NewUserRepo(db.Collection(UsersCollection), g.log),
		Posts:    NewPostRepo(db.Collection(PostsCollection), g.log),
		Comments: NewCommentRepo(db.Collection(CommentsCollection), g.log),
	}

	g.log.Info("MongoDB connected", zap.String("database", g.cfg.Database))
	return nil
}

// Close disconnects the client. Closing a closed gateway is a no-op.
func (g *Gateway) Close(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client == nil {
		return nil
	}

	client := g.client
	g.client = nil
	g.collections = nil

	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	g.log.Info("MongoDB connection closed")
	return nil
}

// Collections returns the bound repositories, or domain.ErrStoreNotInitialized
// before Connect has succeeded.
func (g *Gateway) Collections() (*domain.Collections, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.collections == nil {
		return nil, domain.ErrStoreNotInitialized
	}
	return g.collections, nil
}
