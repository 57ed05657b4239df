package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anonto42/tweetline/backend/internal/cache"
	"github.com/anonto42/tweetline/backend/internal/models"
	"github.com/anonto42/tweetline/backend/internal/repositories"
)

const (
	aliceID = "6f1c2a4e-1111-4a6b-9c1e-000000000001"
	bobID   = "6f1c2a4e-2222-4a6b-9c1e-000000000002"
	tweetID = "6f1c2a4e-3333-4a6b-9c1e-000000000003"
)

var (
	alice = &models.User{ID: aliceID, Name: "Alice", Username: "alice", Email: "alice@example.com"}
	bob   = &models.User{ID: bobID, Name: "Bob", Username: "bob", Email: "bob@example.com"}
)

type userFixture struct {
	users    *mockUserRepository
	follows  *mockFollowRepository
	tweets   *mockTweetRepository
	tx       *inlineTx
	counts   *recordingCountCache
	notifier *recordingNotifier
	service  *UserService
}

func newUserFixture() *userFixture {
	f := &userFixture{
		users:    &mockUserRepository{getByIDFn: usersByID(alice, bob)},
		follows:  &mockFollowRepository{},
		tweets:   &mockTweetRepository{},
		tx:       &inlineTx{},
		counts:   newRecordingCountCache(),
		notifier: &recordingNotifier{},
	}
	f.service = NewUserService(f.users, f.follows, f.tweets, f.tx, f.counts, f.notifier, zap.NewNop())
	return f
}

func TestUserService_Follow(t *testing.T) {
	t.Run("unknown follower is not found", func(t *testing.T) {
		f := newUserFixture()
		f.users.getByIDFn = usersByID(bob)

		res := f.service.Follow(context.Background(), FollowInput{ID: bobID, UserID: aliceID})

		assert.False(t, res.OK)
		assert.Equal(t, http.StatusNotFound, res.Code)
		assert.Equal(t, "User not found", res.Message)
		assert.Empty(t, f.follows.created)
	})

	t.Run("unknown followed user is not found", func(t *testing.T) {
		f := newUserFixture()
		f.users.getByIDFn = usersByID(alice)

		res := f.service.Follow(context.Background(), FollowInput{ID: bobID, UserID: aliceID})

		assert.Equal(t, http.StatusNotFound, res.Code)
		assert.Equal(t, "User not found", res.Message)
	})

	t.Run("self follow is a conflict once both users exist", func(t *testing.T) {
		f := newUserFixture()

		res := f.service.Follow(context.Background(), FollowInput{ID: aliceID, UserID: aliceID})

		assert.False(t, res.OK)
		assert.Equal(t, http.StatusConflict, res.Code)
		assert.Equal(t, "Follower ID and Followed ID can't be the same", res.Message)
		assert.Empty(t, f.follows.created)
	})

	t.Run("self follow of a missing user is not found first", func(t *testing.T) {
		f := newUserFixture()
		f.users.getByIDFn = usersByID(bob)

		res := f.service.Follow(context.Background(), FollowInput{ID: aliceID, UserID: aliceID})

		assert.Equal(t, http.StatusNotFound, res.Code)
	})

	t.Run("absent edge is created", func(t *testing.T) {
		f := newUserFixture()

		res := f.service.Follow(context.Background(), FollowInput{ID: bobID, UserID: aliceID})

		require.True(t, res.OK)
		assert.Equal(t, http.StatusCreated, res.Code)
		assert.Equal(t, "User followed successfully", res.Message)
		edge, ok := res.Data.(*models.Follow)
		require.True(t, ok)
		assert.Equal(t, aliceID, edge.FollowerID)
		assert.Equal(t, bobID, edge.FollowedID)
		assert.Equal(t, 1, f.tx.calls)
		assert.ElementsMatch(t, []string{aliceID, bobID}, f.counts.invalidated)
		require.Len(t, f.notifier.sent, 1)
		assert.Equal(t, models.NotificationFollow, f.notifier.sent[0].Type)
		assert.Equal(t, bobID, f.notifier.sent[0].RecipientID)
	})

	t.Run("present edge is removed", func(t *testing.T) {
		f := newUserFixture()
		f.follows.getFn = func(_ context.Context, followerID, followedID string) (*models.Follow, error) {
			return &models.Follow{ID: "edge-1", FollowerID: followerID, FollowedID: followedID}, nil
		}

		res := f.service.Follow(context.Background(), FollowInput{ID: bobID, UserID: aliceID})

		require.True(t, res.OK)
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, "Follow removed successfully", res.Message)
		assert.Nil(t, res.Data)
		assert.Equal(t, []string{"edge-1"}, f.follows.deleted)
		assert.Empty(t, f.notifier.sent)
		assert.ElementsMatch(t, []string{aliceID, bobID}, f.counts.invalidated)
	})

	t.Run("store failure is an internal error", func(t *testing.T) {
		f := newUserFixture()
		f.users.getByIDFn = func(context.Context, string) (*models.User, error) {
			return nil, errors.New("Exception")
		}

		res := f.service.Follow(context.Background(), FollowInput{ID: bobID, UserID: aliceID})

		assert.False(t, res.OK)
		assert.Equal(t, http.StatusInternalServerError, res.Code)
		assert.Equal(t, "Internal server error: Exception", res.Message)
		assert.Empty(t, f.counts.invalidated)
	})

	t.Run("wrapped store failure reports the root cause", func(t *testing.T) {
		f := newUserFixture()
		f.follows.createFn = func(context.Context, *models.Follow) error {
			return fmt.Errorf("create follow: %w", errors.New("Exception"))
		}

		res := f.service.Follow(context.Background(), FollowInput{ID: bobID, UserID: aliceID})

		assert.Equal(t, http.StatusInternalServerError, res.Code)
		assert.Equal(t, "Internal server error: Exception", res.Message)
	})

	t.Run("racing insert is a conflict", func(t *testing.T) {
		f := newUserFixture()
		f.follows.createFn = func(context.Context, *models.Follow) error {
			return repositories.ErrDuplicateEdge
		}

		res := f.service.Follow(context.Background(), FollowInput{ID: bobID, UserID: aliceID})

		assert.Equal(t, http.StatusConflict, res.Code)
		assert.Equal(t, "Follow already exists", res.Message)
		assert.Empty(t, f.notifier.sent)
	})
}

func TestUserService_FindMany_ReadsCountsThroughCache(t *testing.T) {
	f := newUserFixture()
	f.users.findFn = func(context.Context, models.UserFilter) ([]models.User, error) {
		return []models.User{*alice, *bob}, nil
	}
	storeReads := 0
	f.follows.countFollowersFn = func(_ context.Context, userID string) (int64, error) {
		storeReads++
		if userID == aliceID {
			return 3, nil
		}
		return 1, nil
	}
	require.NoError(t, f.counts.Set(context.Background(), bobID, cache.Counts{Followers: 7, Following: 2}))

	res := f.service.FindMany(context.Background(), models.UserFilter{})

	require.True(t, res.OK)
	assert.Equal(t, "Users fetched successfully", res.Message)
	bases, ok := res.Data.([]models.UserBase)
	require.True(t, ok)
	require.Len(t, bases, 2)
	assert.Equal(t, int64(3), *bases[0].Followers)
	assert.Equal(t, int64(7), *bases[1].Followers)
	assert.Equal(t, int64(2), *bases[1].Following)
	assert.Equal(t, 1, storeReads)

	cached, hit, err := f.counts.Get(context.Background(), aliceID)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, int64(3), cached.Followers)
}

func TestUserService_FindOne(t *testing.T) {
	t.Run("missing user", func(t *testing.T) {
		f := newUserFixture()
		res := f.service.FindOne(context.Background(), tweetID)
		assert.Equal(t, http.StatusNotFound, res.Code)
		assert.Equal(t, "User not found", res.Message)
	})

	t.Run("user with relations", func(t *testing.T) {
		f := newUserFixture()
		f.follows.followerIDsFn = func(context.Context, string) ([]string, error) {
			return []string{bobID}, nil
		}
		f.users.getByIDsFn = func(_ context.Context, ids []string) ([]models.User, error) {
			if len(ids) == 0 {
				return nil, nil
			}
			return []models.User{*bob}, nil
		}

		res := f.service.FindOne(context.Background(), aliceID)

		require.True(t, res.OK)
		assert.Equal(t, "User fetched successfully", res.Message)
		detail, ok := res.Data.(models.UserDetail)
		require.True(t, ok)
		assert.Equal(t, "alice", detail.Username)
		require.Len(t, detail.Followers, 1)
		assert.Equal(t, "bob", detail.Followers[0].Username)
		assert.Empty(t, detail.Following)
		assert.NotNil(t, detail.Tweets)
	})
}

func TestUserService_Update(t *testing.T) {
	t.Run("only the owner may update", func(t *testing.T) {
		f := newUserFixture()
		name := "Mallory"
		res := f.service.Update(context.Background(), UpdateUserInput{ID: aliceID, ActorID: bobID, Name: &name})
		assert.Equal(t, http.StatusForbidden, res.Code)
		assert.Equal(t, "You can only update your own profile", res.Message)
		assert.Empty(t, f.users.updated)
	})

	t.Run("taken username is a conflict", func(t *testing.T) {
		f := newUserFixture()
		f.users.getByUsernameFn = func(context.Context, string) (*models.User, error) { return bob, nil }
		username := "bob"
		res := f.service.Update(context.Background(), UpdateUserInput{ID: aliceID, ActorID: aliceID, Username: &username})
		assert.Equal(t, http.StatusConflict, res.Code)
		assert.Equal(t, "Username is already in use.", res.Message)
	})

	t.Run("password is stored hashed", func(t *testing.T) {
		f := newUserFixture()
		owner := *alice
		f.users.getByIDFn = usersByID(&owner)
		password := "s3cret"
		bio := "hello"

		res := f.service.Update(context.Background(), UpdateUserInput{ID: aliceID, ActorID: aliceID, Password: &password, Bio: &bio})

		require.True(t, res.OK)
		assert.Equal(t, "User updated successfully", res.Message)
		require.Len(t, f.users.updated, 1)
		assert.NotEqual(t, password, f.users.updated[0].Password)
		assert.True(t, checkPassword(f.users.updated[0].Password, password))
		updated, ok := res.Data.(models.UserUpdated)
		require.True(t, ok)
		assert.Equal(t, "hello", *updated.Bio)
	})
}

func TestUserService_Remove(t *testing.T) {
	t.Run("only the owner may remove", func(t *testing.T) {
		f := newUserFixture()
		res := f.service.Remove(context.Background(), aliceID, bobID)
		assert.Equal(t, http.StatusForbidden, res.Code)
		assert.Equal(t, "You can only remove your own profile", res.Message)
	})

	t.Run("removal invalidates related counters", func(t *testing.T) {
		f := newUserFixture()
		f.follows.followerIDsFn = func(context.Context, string) ([]string, error) { return []string{bobID}, nil }

		res := f.service.Remove(context.Background(), aliceID, aliceID)

		require.True(t, res.OK)
		assert.Equal(t, "User removed successfully", res.Message)
		assert.ElementsMatch(t, []string{aliceID, bobID}, f.counts.invalidated)
	})
}
