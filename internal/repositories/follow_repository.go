package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/tweetline/backend/internal/models"
	"gorm.io/gorm"
)

// ErrDuplicateEdge is returned when a relationship row already exists for the pair.
var ErrDuplicateEdge = errors.New("relationship already exists")

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	GetFollow(ctx context.Context, followerID, followedID string) (*models.Follow, error)
	CreateFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, id string) (bool, error)
	GetFollowerIDs(ctx context.Context, userID string) ([]string, error)
	GetFollowingIDs(ctx context.Context, userID string) ([]string, error)
	CountFollowers(ctx context.Context, userID string) (int64, error)
	CountFollowing(ctx context.Context, userID string) (int64, error)
}

// PostgresFollowRepository implements FollowRepository with GORM
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// GetFollow returns nil, nil when followerID does not follow followedID.
func (r *PostgresFollowRepository) GetFollow(ctx context.Context, followerID, followedID string) (*models.Follow, error) {
	var follow models.Follow
	err := conn(ctx, r.db).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		First(&follow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get follow: %w", err)
	}
	return &follow, nil
}

func (r *PostgresFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	err := conn(ctx, r.db).Create(follow).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEdge
	}
	if err != nil {
		return fmt.Errorf("create follow: %w", err)
	}
	return nil
}

// DeleteFollow reports whether a row was actually removed.
func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, id string) (bool, error) {
	res := conn(ctx, r.db).Where("id = ?", id).Delete(&models.Follow{})
	if res.Error != nil {
		return false, fmt.Errorf("delete follow: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresFollowRepository) GetFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := conn(ctx, r.db).Model(&models.Follow{}).Where("followed_id = ?", userID).Pluck("follower_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("get follower ids: %w", err)
	}
	return ids, nil
}

func (r *PostgresFollowRepository) GetFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := conn(ctx, r.db).Model(&models.Follow{}).Where("follower_id = ?", userID).Pluck("followed_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("get following ids: %w", err)
	}
	return ids, nil
}

func (r *PostgresFollowRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.Follow{}).Where("followed_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count followers: %w", err)
	}
	return count, nil
}

func (r *PostgresFollowRepository) CountFollowing(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count following: %w", err)
	}
	return count, nil
}
