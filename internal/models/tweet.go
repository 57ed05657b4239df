package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TweetType string

const (
	TweetTypeTweet   TweetType = "TWEET"
	TweetTypeReply   TweetType = "REPLY"
	TweetTypeRetweet TweetType = "RETWEET"
)

// Valid reports whether t is one of the known tweet types.
func (t TweetType) Valid() bool {
	switch t {
	case TweetTypeTweet, TweetTypeReply, TweetTypeRetweet:
		return true
	}
	return false
}

// NeedsParent reports whether tweets of this type must reference a parent tweet.
func (t TweetType) NeedsParent() bool {
	return t == TweetTypeReply || t == TweetTypeRetweet
}

// Tweet is stored in the relational store next to its likes so a like toggle and
// the tweet lookup share a transaction.
type Tweet struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);not null;index"`
	Type      TweetType `json:"type" gorm:"type:varchar(10);not null"`
	ParentID  *string   `json:"parentId,omitempty" gorm:"type:varchar(36);index"`
	Content   *string   `json:"content,omitempty" gorm:"size:280"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`

	Likes         []Like         `json:"-" gorm:"foreignKey:TweetID;constraint:OnDelete:CASCADE"`
	Replies       []Tweet        `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	Notifications []Notification `json:"-" gorm:"foreignKey:TweetID;constraint:OnDelete:CASCADE"`
}

func (Tweet) TableName() string { return "tweets" }

func (t *Tweet) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TweetView is a tweet enriched for timelines and single lookups.
type TweetView struct {
	Tweet
	Author       UserBase `json:"author"`
	LikesCount   int64    `json:"likesCount"`
	RepliesCount int64    `json:"repliesCount"`
	Liked        bool     `json:"liked"`
	Replies      []Tweet  `json:"replies,omitempty"`
}

// CreateTweetRequest is the body of POST /tweets.
type CreateTweetRequest struct {
	Type     *string `json:"type"`
	ParentID *string `json:"parentId"`
	Content  *string `json:"content"`
}

// UpdateTweetRequest is the body of PATCH /tweets/:id.
type UpdateTweetRequest struct {
	Content *string `json:"content"`
}

// Pagination is the timeline query. Page is 1-based on the wire.
type Pagination struct {
	Page   int    `query:"page"`
	Take   int    `query:"take"`
	Search string `query:"search"`
}
