package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Follow is a directed follow edge. The pair (FollowerID, FollowedID) is unique.
type Follow struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FollowerID string    `json:"followerId" gorm:"type:varchar(36);not null;index;uniqueIndex:idx_follower_followed"`
	FollowedID string    `json:"followedId" gorm:"type:varchar(36);not null;index;uniqueIndex:idx_follower_followed"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Follow) TableName() string { return "follows" }

func (f *Follow) BeforeCreate(_ *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
