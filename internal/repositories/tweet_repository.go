package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/tweetline/backend/internal/models"
	"gorm.io/gorm"
)

// TweetRepository defines the interface for tweet data operations
type TweetRepository interface {
	CreateTweet(ctx context.Context, tweet *models.Tweet) error
	GetTweetByID(ctx context.Context, id string) (*models.Tweet, error)
	GetTweetsByUserID(ctx context.Context, userID string) ([]models.Tweet, error)
	GetTimeline(ctx context.Context, authorIDs []string, search string, offset, limit int) ([]models.Tweet, error)
	GetReplies(ctx context.Context, parentID string) ([]models.Tweet, error)
	CountReplies(ctx context.Context, parentIDs []string) (map[string]int64, error)
	UpdateTweet(ctx context.Context, tweet *models.Tweet) error
	DeleteTweet(ctx context.Context, id string) error
}

// PostgresTweetRepository implements TweetRepository with GORM
type PostgresTweetRepository struct {
	db *gorm.DB
}

// NewPostgresTweetRepository creates a new PostgresTweetRepository
func NewPostgresTweetRepository(db *gorm.DB) *PostgresTweetRepository {
	return &PostgresTweetRepository{db: db}
}

func (r *PostgresTweetRepository) CreateTweet(ctx context.Context, tweet *models.Tweet) error {
	if err := conn(ctx, r.db).Create(tweet).Error; err != nil {
		return fmt.Errorf("create tweet: %w", err)
	}
	return nil
}

// GetTweetByID returns nil, nil when the tweet does not exist.
func (r *PostgresTweetRepository) GetTweetByID(ctx context.Context, id string) (*models.Tweet, error) {
	var tweet models.Tweet
	err := conn(ctx, r.db).Where("id = ?", id).First(&tweet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tweet: %w", err)
	}
	return &tweet, nil
}

func (r *PostgresTweetRepository) GetTweetsByUserID(ctx context.Context, userID string) ([]models.Tweet, error) {
	var tweets []models.Tweet
	if err := conn(ctx, r.db).Where("user_id = ?", userID).Order("created_at DESC").Find(&tweets).Error; err != nil {
		return nil, fmt.Errorf("get tweets by user: %w", err)
	}
	return tweets, nil
}

// GetTimeline returns tweets written by any of authorIDs, newest first.
func (r *PostgresTweetRepository) GetTimeline(ctx context.Context, authorIDs []string, search string, offset, limit int) ([]models.Tweet, error) {
	var tweets []models.Tweet
	if len(authorIDs) == 0 {
		return tweets, nil
	}

	q := conn(ctx, r.db).Where("user_id IN ?", authorIDs)
	if search != "" {
		q = q.Where("LOWER(content) LIKE ? ESCAPE '\\'", like(search))
	}
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&tweets).Error
	if err != nil {
		return nil, fmt.Errorf("get timeline: %w", err)
	}
	return tweets, nil
}

func (r *PostgresTweetRepository) GetReplies(ctx context.Context, parentID string) ([]models.Tweet, error) {
	var tweets []models.Tweet
	err := conn(ctx, r.db).
		Where("parent_id = ? AND type = ?", parentID, models.TweetTypeReply).
		Order("created_at ASC").
		Find(&tweets).Error
	if err != nil {
		return nil, fmt.Errorf("get replies: %w", err)
	}
	return tweets, nil
}

func (r *PostgresTweetRepository) CountReplies(ctx context.Context, parentIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(parentIDs))
	if len(parentIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ParentID string
		Total    int64
	}
	err := conn(ctx, r.db).Model(&models.Tweet{}).
		Select("parent_id, COUNT(*) AS total").
		Where("parent_id IN ? AND type = ?", parentIDs, models.TweetTypeReply).
		Group("parent_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count replies: %w", err)
	}
	for _, row := range rows {
		counts[row.ParentID] = row.Total
	}
	return counts, nil
}

func (r *PostgresTweetRepository) UpdateTweet(ctx context.Context, tweet *models.Tweet) error {
	if err := conn(ctx, r.db).Save(tweet).Error; err != nil {
		return fmt.Errorf("update tweet: %w", err)
	}
	return nil
}

func (r *PostgresTweetRepository) DeleteTweet(ctx context.Context, id string) error {
	if err := conn(ctx, r.db).Delete(&models.Tweet{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete tweet: %w", err)
	}
	return nil
}
