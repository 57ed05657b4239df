package services

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/anonto42/tweetline/backend/internal/models"
	"github.com/anonto42/tweetline/backend/internal/repositories"
)

const defaultNotificationTake = 20

// Notifier records activity for a user. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, n *models.Notification)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, *models.Notification) {}

type NotificationService struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	logger        *zap.Logger
}

func NewNotificationService(notifications repositories.NotificationRepository, users repositories.UserRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, users: users, logger: logger}
}

// Notify stores n unless the actor is the recipient. Failures are logged only.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) {
	if n.ActorID == n.RecipientID {
		return
	}
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		s.logger.Warn("store notification failed",
			zap.String("type", string(n.Type)),
			zap.String("recipient_id", n.RecipientID),
			zap.Error(err),
		)
	}
}

// FindAll returns one page of the recipient's notifications with actors resolved.
func (s *NotificationService) FindAll(ctx context.Context, recipientID string, page models.Pagination) Result {
	take := page.Take
	if take <= 0 {
		take = defaultNotificationTake
	}
	pageNo := page.Page
	if pageNo <= 0 {
		pageNo = 1
	}

	notifications, total, err := s.notifications.GetByRecipientID(ctx, recipientID, (pageNo-1)*take, take)
	if err != nil {
		s.logger.Error("get notifications failed", zap.String("user_id", recipientID), zap.Error(err))
		return InternalError(err)
	}
	unread, err := s.notifications.GetUnreadCount(ctx, recipientID)
	if err != nil {
		return InternalError(err)
	}

	actorIDs := make([]string, 0, len(notifications))
	seen := make(map[string]bool, len(notifications))
	for _, n := range notifications {
		if !seen[n.ActorID] {
			seen[n.ActorID] = true
			actorIDs = append(actorIDs, n.ActorID)
		}
	}
	actors, err := s.users.GetUsersByIDs(ctx, actorIDs)
	if err != nil {
		return InternalError(err)
	}
	byID := make(map[string]models.UserBase, len(actors))
	for i := range actors {
		byID[actors[i].ID] = actors[i].ToBase()
	}

	views := make([]models.NotificationView, 0, len(notifications))
	for _, n := range notifications {
		views = append(views, models.NotificationView{Notification: n, Actor: byID[n.ActorID]})
	}
	return Success(http.StatusOK, "Notifications fetched successfully", models.NotificationPage{
		Notifications: views,
		Total:         total,
		Unread:        unread,
	})
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) Result {
	count, err := s.notifications.GetUnreadCount(ctx, recipientID)
	if err != nil {
		s.logger.Error("count unread notifications failed", zap.String("user_id", recipientID), zap.Error(err))
		return InternalError(err)
	}
	return Success(http.StatusOK, "Unread count fetched successfully", map[string]int64{"count": count})
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id, recipientID string) Result {
	updated, err := s.notifications.MarkAsRead(ctx, id, recipientID)
	if err != nil {
		s.logger.Error("mark notification read failed", zap.String("notification_id", id), zap.Error(err))
		return InternalError(err)
	}
	if !updated {
		return Failure(http.StatusNotFound, "Notification not found")
	}
	return Success(http.StatusOK, "Notification marked as read", nil)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, recipientID string) Result {
	updated, err := s.notifications.MarkAllAsRead(ctx, recipientID)
	if err != nil {
		s.logger.Error("mark notifications read failed", zap.String("user_id", recipientID), zap.Error(err))
		return InternalError(err)
	}
	return Success(http.StatusOK, "All notifications marked as read", map[string]int64{"updated": updated})
}
