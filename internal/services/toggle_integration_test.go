package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/anonto42/tweetline/backend/internal/cache"
	"github.com/anonto42/tweetline/backend/internal/models"
	"github.com/anonto42/tweetline/backend/internal/repositories"
	"github.com/anonto42/tweetline/backend/pkg/config"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(config.SQLiteDSN(":memory:")), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, config.Migrate(db))
	return db
}

func TestToggleRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	userRepo := repositories.NewPostgresUserRepository(db)
	followRepo := repositories.NewPostgresFollowRepository(db)
	likeRepo := repositories.NewPostgresLikeRepository(db)
	tweetRepo := repositories.NewPostgresTweetRepository(db)
	notificationRepo := repositories.NewPostgresNotificationRepository(db)
	tx := repositories.NewGormTransactor(db)

	a := &models.User{Name: "Alice", Username: "alice", Email: "alice@example.com", Password: "x"}
	b := &models.User{Name: "Bob", Username: "bob", Email: "bob@example.com", Password: "x"}
	require.NoError(t, userRepo.CreateUser(ctx, a))
	require.NoError(t, userRepo.CreateUser(ctx, b))

	notifications := NewNotificationService(notificationRepo, userRepo, zap.NewNop())
	users := NewUserService(userRepo, followRepo, tweetRepo, tx, cache.NoopCountCache{}, notifications, zap.NewNop())
	tweets := NewTweetService(tweetRepo, likeRepo, userRepo, followRepo, tx, notifications, zap.NewNop())

	t.Run("follow", func(t *testing.T) {
		first := users.Follow(ctx, FollowInput{ID: b.ID, UserID: a.ID})
		require.Equal(t, http.StatusCreated, first.Code)
		count, err := followRepo.CountFollowers(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		second := users.Follow(ctx, FollowInput{ID: b.ID, UserID: a.ID})
		require.Equal(t, http.StatusOK, second.Code)
		count, err = followRepo.CountFollowers(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		third := users.Follow(ctx, FollowInput{ID: b.ID, UserID: a.ID})
		assert.Equal(t, http.StatusCreated, third.Code)
	})

	t.Run("like", func(t *testing.T) {
		content := "first!"
		tweet := &models.Tweet{UserID: b.ID, Type: models.TweetTypeTweet, Content: &content}
		require.NoError(t, tweetRepo.CreateTweet(ctx, tweet))

		first := tweets.Like(ctx, LikeInput{TweetID: tweet.ID, UserID: a.ID})
		require.Equal(t, http.StatusCreated, first.Code)
		second := tweets.Like(ctx, LikeInput{TweetID: tweet.ID, UserID: a.ID})
		require.Equal(t, http.StatusOK, second.Code)

		counts, err := likeRepo.CountByTweetIDs(ctx, []string{tweet.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(0), counts[tweet.ID])
	})

	t.Run("recipient sees follow and like notifications", func(t *testing.T) {
		res := notifications.FindAll(ctx, b.ID, models.Pagination{})
		require.True(t, res.OK)
		page := res.Data.(models.NotificationPage)
		// two follows (created, removed, created) and one like
		assert.Equal(t, int64(3), page.Total)
		assert.Equal(t, int64(3), page.Unread)
		for _, n := range page.Notifications {
			assert.Equal(t, "alice", n.Actor.Username)
		}

		read := notifications.MarkAllAsRead(ctx, b.ID)
		require.True(t, read.OK)
		unread := notifications.UnreadCount(ctx, b.ID)
		assert.Equal(t, map[string]int64{"count": 0}, unread.Data)
	})
}
