package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anonto42/tweetline/backend/internal/models"
	"github.com/anonto42/tweetline/backend/internal/repositories"
)

func TestNotificationService(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	userRepo := repositories.NewPostgresUserRepository(db)
	notificationRepo := repositories.NewPostgresNotificationRepository(db)
	svc := NewNotificationService(notificationRepo, userRepo, zap.NewNop())

	a := &models.User{Name: "Alice", Username: "alice", Email: "alice@example.com", Password: "x"}
	b := &models.User{Name: "Bob", Username: "bob", Email: "bob@example.com", Password: "x"}
	require.NoError(t, userRepo.CreateUser(ctx, a))
	require.NoError(t, userRepo.CreateUser(ctx, b))

	svc.Notify(ctx, &models.Notification{Type: models.NotificationFollow, ActorID: a.ID, RecipientID: a.ID})
	own := svc.UnreadCount(ctx, a.ID)
	assert.Equal(t, map[string]int64{"count": 0}, own.Data, "acting on yourself records nothing")

	n := &models.Notification{Type: models.NotificationFollow, ActorID: a.ID, RecipientID: b.ID}
	svc.Notify(ctx, n)
	require.NotEmpty(t, n.ID)

	t.Run("another user cannot mark it", func(t *testing.T) {
		res := svc.MarkAsRead(ctx, n.ID, a.ID)
		assert.Equal(t, http.StatusNotFound, res.Code)
		assert.Equal(t, "Notification not found", res.Message)
	})

	t.Run("recipient marks it", func(t *testing.T) {
		res := svc.MarkAsRead(ctx, n.ID, b.ID)
		require.True(t, res.OK)
		assert.Equal(t, "Notification marked as read", res.Message)

		page := svc.FindAll(ctx, b.ID, models.Pagination{}).Data.(models.NotificationPage)
		require.Len(t, page.Notifications, 1)
		assert.True(t, page.Notifications[0].IsRead)
		assert.Equal(t, int64(0), page.Unread)
	})
}
