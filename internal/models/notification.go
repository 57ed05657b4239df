package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationFollow NotificationType = "follow"
	NotificationLike   NotificationType = "like"
)

// Notification tells RecipientID that ActorID followed them or liked one of their tweets.
type Notification struct {
	ID          string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Type        NotificationType `json:"type" gorm:"type:varchar(20);not null;index"`
	ActorID     string           `json:"actorId" gorm:"type:varchar(36);not null;index"`
	RecipientID string           `json:"recipientId" gorm:"type:varchar(36);not null;index"`
	TweetID     *string          `json:"tweetId,omitempty" gorm:"type:varchar(36);index"`
	IsRead      bool             `json:"isRead" gorm:"not null;default:false;index"`
	CreatedAt   time.Time        `json:"createdAt" gorm:"index"`
}

func (Notification) TableName() string { return "notifications" }

func (n *Notification) BeforeCreate(_ *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// NotificationView is a notification with its actor resolved.
type NotificationView struct {
	Notification
	Actor UserBase `json:"actor"`
}

// NotificationPage is one page of a recipient's notifications.
type NotificationPage struct {
	Notifications []NotificationView `json:"notifications"`
	Total         int64              `json:"total"`
	Unread        int64              `json:"unread"`
}
