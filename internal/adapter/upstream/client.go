// Package upstream reads the placeholder API that the service mirrors.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	domain "placeholder-mirror/internal/domain/user"
	apperrors "placeholder-mirror/pkg/errors"
	"placeholder-mirror/pkg/logger"
	"placeholder-mirror/pkg/metrics"
)

// Resource names, also used as metric labels.
const (
	ResourceUsers    = "users"
	ResourcePosts    = "posts"
	ResourceComments = "comments"
)

// QueryParam is the single optional filter appended to a resource URL.
type QueryParam struct {
	Key   string
	Value string
}

// Fetch issues a GET against resourceURL, appending q when present, and decodes
// the JSON array in the response body. Non-2xx responses, transport failures
// and malformed bodies are reported as *errors.UpstreamError.
func Fetch[T any](ctx context.Context, client *http.Client, resourceURL string, q *QueryParam) ([]T, error) {
	target := resourceURL
	if q != nil {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + url.QueryEscape(q.Key) + "=" + url.QueryEscape(q.Value)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, apperrors.NewUpstreamError(target, 0, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, apperrors.NewUpstreamError(target, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewUpstreamError(target, resp.StatusCode, nil)
	}

	var items []T
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, apperrors.NewUpstreamError(target, 0, fmt.Errorf("decode response: %w", err))
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Client fetches users, posts and comments from the placeholder API.
type Client struct {
	baseURL string
	http    *http.Client
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewClient creates a client for baseURL. A non-positive timeout leaves the
// request bounded by the caller's context only.
func NewClient(baseURL string, timeout time.Duration, m *metrics.Metrics, log *zap.Logger) *Client {
	hc := &http.Client{}
	if timeout > 0 {
		hc.Timeout = timeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		metrics: m,
		log:     log,
	}
}

// Users fetches every remote user.
func (c *Client) Users(ctx context.Context) ([]domain.User, error) {
	users, err := Fetch[domain.User](ctx, c.http, c.resourceURL(ResourceUsers), nil)
	c.observe(ctx, ResourceUsers, nil, len(users), err)
	return users, err
}

// PostsByUser fetches the posts written by userID.
func (c *Client) PostsByUser(ctx context.Context, userID int64) ([]domain.Post, error) {
	q := &QueryParam{Key: "userId", Value: strconv.FormatInt(userID, 10)}
	posts, err := Fetch[domain.Post](ctx, c.http, c.resourceURL(ResourcePosts), q)
	c.observe(ctx, ResourcePosts, q, len(posts), err)
	return posts, err
}

// CommentsByPost fetches the comments attached to postID.
func (c *Client) CommentsByPost(ctx context.Context, postID int64) ([]domain.Comment, error) {
	q := &QueryParam{Key: "postId", Value: strconv.FormatInt(postID, 10)}
	comments, err := Fetch[domain.Comment](ctx, c.http, c.resourceURL(ResourceComments), q)
	c.observe(ctx, ResourceComments, q, len(comments), err)
	return comments, err
}

func (c *Client) resourceURL(resource string) string {
	return c.baseURL + "/" + resource
}

func (c *Client) observe(ctx context.Context, resource string, q *QueryParam, count int, err error) {
	c.metrics.ObserveFetch(resource, err)

	fields := []zap.Field{zap.String("resource", resource)}
	if q != nil {
		fields = append(fields, zap.String(q.Key, q.Value))
	}

	log := logger.WithContext(ctx, c.log)
	if err != nil {
		log.Warn("upstream fetch failed", append(fields, zap.Error(err))...)
		return
	}
	log.Debug("upstream fetch completed", append(fields, zap.Int("count", count))...)
}
