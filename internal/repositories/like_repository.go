package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/tweetline/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	GetLike(ctx context.Context, userID, tweetID string) (*models.Like, error)
	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, id string) (bool, error)
	CountByTweetIDs(ctx context.Context, tweetIDs []string) (map[string]int64, error)
	LikedTweetIDs(ctx context.Context, userID string, tweetIDs []string) (map[string]bool, error)
}

// PostgresLikeRepository implements LikeRepository with GORM
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// GetLike returns nil, nil when the user has not liked the tweet.
func (r *PostgresLikeRepository) GetLike(ctx context.Context, userID, tweetID string) (*models.Like, error) {
	var like models.Like
	err := conn(ctx, r.db).Where("user_id = ? AND tweet_id = ?", userID, tweetID).First(&like).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get like: %w", err)
	}
	return &like, nil
}

func (r *PostgresLikeRepository) CreateLike(ctx context.Context, like *models.Like) error {
	err := conn(ctx, r.db).Create(like).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEdge
	}
	if err != nil {
		return fmt.Errorf("create like: %w", err)
	}
	return nil
}

// DeleteLike reports whether a row was actually removed.
func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, id string) (bool, error) {
	res := conn(ctx, r.db).Where("id = ?", id).Delete(&models.Like{})
	if res.Error != nil {
		return false, fmt.Errorf("delete like: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresLikeRepository) CountByTweetIDs(ctx context.Context, tweetIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(tweetIDs))
	if len(tweetIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		TweetID string
		Total   int64
	}
	err := conn(ctx, r.db).Model(&models.Like{}).
		Select("tweet_id, COUNT(*) AS total").
		Where("tweet_id IN ?", tweetIDs).
		Group("tweet_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	for _, row := range rows {
		counts[row.TweetID] = row.Total
	}
	return counts, nil
}

func (r *PostgresLikeRepository) LikedTweetIDs(ctx context.Context, userID string, tweetIDs []string) (map[string]bool, error) {
	liked := make(map[string]bool, len(tweetIDs))
	if len(tweetIDs) == 0 {
		return liked, nil
	}

	var ids []string
	err := conn(ctx, r.db).Model(&models.Like{}).
		Where("user_id = ? AND tweet_id IN ?", userID, tweetIDs).
		Pluck("tweet_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("liked tweet ids: %w", err)
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
