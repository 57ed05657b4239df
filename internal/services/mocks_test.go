package services

import (
	"context"
	"os"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/anonto42/tweetline/backend/internal/cache"
	"github.com/anonto42/tweetline/backend/internal/models"
)

func TestMain(m *testing.M) {
	passwordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

// Each mock lets a test override a single method; unset methods behave like an
// empty store.

type mockUserRepository struct {
	createFn        func(ctx context.Context, user *models.User) error
	getByIDFn       func(ctx context.Context, id string) (*models.User, error)
	getByEmailFn    func(ctx context.Context, email string) (*models.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*models.User, error)
	getByFirebaseFn func(ctx context.Context, uid string) (*models.User, error)
	findFn          func(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	getByIDsFn      func(ctx context.Context, ids []string) ([]models.User, error)
	updateFn        func(ctx context.Context, user *models.User) error
	deleteFn        func(ctx context.Context, id string) error

	created []*models.User
	updated []*models.User
}

func (m *mockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	m.created = append(m.created, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepository) GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	if m.getByFirebaseFn != nil {
		return m.getByFirebaseFn(ctx, uid)
	}
	return nil, nil
}

func (m *mockUserRepository) FindUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	if m.findFn != nil {
		return m.findFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockUserRepository) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return nil, nil
}

func (m *mockUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	m.updated = append(m.updated, user)
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) DeleteUser(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockFollowRepository struct {
	getFn            func(ctx context.Context, followerID, followedID string) (*models.Follow, error)
	createFn         func(ctx context.Context, follow *models.Follow) error
	deleteFn         func(ctx context.Context, id string) (bool, error)
	followerIDsFn    func(ctx context.Context, userID string) ([]string, error)
	followingIDsFn   func(ctx context.Context, userID string) ([]string, error)
	countFollowersFn func(ctx context.Context, userID string) (int64, error)
	countFollowingFn func(ctx context.Context, userID string) (int64, error)

	created []*models.Follow
	deleted []string
}

func (m *mockFollowRepository) GetFollow(ctx context.Context, followerID, followedID string) (*models.Follow, error) {
	if m.getFn != nil {
		return m.getFn(ctx, followerID, followedID)
	}
	return nil, nil
}

func (m *mockFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	m.created = append(m.created, follow)
	if m.createFn != nil {
		return m.createFn(ctx, follow)
	}
	follow.ID = "follow-1"
	return nil
}

func (m *mockFollowRepository) DeleteFollow(ctx context.Context, id string) (bool, error) {
	m.deleted = append(m.deleted, id)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return true, nil
}

func (m *mockFollowRepository) GetFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	if m.followerIDsFn != nil {
		return m.followerIDsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) GetFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	if m.followingIDsFn != nil {
		return m.followingIDsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	if m.countFollowersFn != nil {
		return m.countFollowersFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockFollowRepository) CountFollowing(ctx context.Context, userID string) (int64, error) {
	if m.countFollowingFn != nil {
		return m.countFollowingFn(ctx, userID)
	}
	return 0, nil
}

type mockLikeRepository struct {
	getFn      func(ctx context.Context, userID, tweetID string) (*models.Like, error)
	createFn   func(ctx context.Context, like *models.Like) error
	deleteFn   func(ctx context.Context, id string) (bool, error)
	countFn    func(ctx context.Context, tweetIDs []string) (map[string]int64, error)
	likedIDsFn func(ctx context.Context, userID string, tweetIDs []string) (map[string]bool, error)

	created []*models.Like
	deleted []string
}

func (m *mockLikeRepository) GetLike(ctx context.Context, userID, tweetID string) (*models.Like, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, tweetID)
	}
	return nil, nil
}

func (m *mockLikeRepository) CreateLike(ctx context.Context, like *models.Like) error {
	m.created = append(m.created, like)
	if m.createFn != nil {
		return m.createFn(ctx, like)
	}
	like.ID = "like-1"
	return nil
}

func (m *mockLikeRepository) DeleteLike(ctx context.Context, id string) (bool, error) {
	m.deleted = append(m.deleted, id)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return true, nil
}

func (m *mockLikeRepository) CountByTweetIDs(ctx context.Context, tweetIDs []string) (map[string]int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx, tweetIDs)
	}
	return map[string]int64{}, nil
}

func (m *mockLikeRepository) LikedTweetIDs(ctx context.Context, userID string, tweetIDs []string) (map[string]bool, error) {
	if m.likedIDsFn != nil {
		return m.likedIDsFn(ctx, userID, tweetIDs)
	}
	return map[string]bool{}, nil
}

type mockTweetRepository struct {
	createFn       func(ctx context.Context, tweet *models.Tweet) error
	getByIDFn      func(ctx context.Context, id string) (*models.Tweet, error)
	byUserFn       func(ctx context.Context, userID string) ([]models.Tweet, error)
	timelineFn     func(ctx context.Context, authorIDs []string, search string, offset, limit int) ([]models.Tweet, error)
	repliesFn      func(ctx context.Context, parentID string) ([]models.Tweet, error)
	countRepliesFn func(ctx context.Context, parentIDs []string) (map[string]int64, error)
	updateFn       func(ctx context.Context, tweet *models.Tweet) error
	deleteFn       func(ctx context.Context, id string) error

	created []*models.Tweet
	deleted []string
}

func (m *mockTweetRepository) CreateTweet(ctx context.Context, tweet *models.Tweet) error {
	m.created = append(m.created, tweet)
	if m.createFn != nil {
		return m.createFn(ctx, tweet)
	}
	return nil
}

func (m *mockTweetRepository) GetTweetByID(ctx context.Context, id string) (*models.Tweet, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockTweetRepository) GetTweetsByUserID(ctx context.Context, userID string) ([]models.Tweet, error) {
	if m.byUserFn != nil {
		return m.byUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockTweetRepository) GetTimeline(ctx context.Context, authorIDs []string, search string, offset, limit int) ([]models.Tweet, error) {
	if m.timelineFn != nil {
		return m.timelineFn(ctx, authorIDs, search, offset, limit)
	}
	return nil, nil
}

func (m *mockTweetRepository) GetReplies(ctx context.Context, parentID string) ([]models.Tweet, error) {
	if m.repliesFn != nil {
		return m.repliesFn(ctx, parentID)
	}
	return nil, nil
}

func (m *mockTweetRepository) CountReplies(ctx context.Context, parentIDs []string) (map[string]int64, error) {
	if m.countRepliesFn != nil {
		return m.countRepliesFn(ctx, parentIDs)
	}
	return map[string]int64{}, nil
}

func (m *mockTweetRepository) UpdateTweet(ctx context.Context, tweet *models.Tweet) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, tweet)
	}
	return nil
}

func (m *mockTweetRepository) DeleteTweet(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// inlineTx runs fn without a database; the error it returns is passed through.
type inlineTx struct {
	calls int
}

func (t *inlineTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type recordingCountCache struct {
	mu          sync.Mutex
	entries     map[string]cache.Counts
	invalidated []string
}

func newRecordingCountCache() *recordingCountCache {
	return &recordingCountCache{entries: map[string]cache.Counts{}}
}

func (c *recordingCountCache) Get(_ context.Context, userID string) (cache.Counts, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	counts, ok := c.entries[userID]
	return counts, ok, nil
}

func (c *recordingCountCache) Set(_ context.Context, userID string, counts cache.Counts) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = counts
	return nil
}

func (c *recordingCountCache) Invalidate(_ context.Context, userIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range userIDs {
		delete(c.entries, id)
	}
	c.invalidated = append(c.invalidated, userIDs...)
	return nil
}

type recordingNotifier struct {
	sent []*models.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, notification *models.Notification) {
	n.sent = append(n.sent, notification)
}

func usersByID(users ...*models.User) func(ctx context.Context, id string) (*models.User, error) {
	return func(_ context.Context, id string) (*models.User, error) {
		for _, u := range users {
			if u.ID == id {
				return u, nil
			}
		}
		return nil, nil
	}
}
