package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/tweetline/backend/internal/models"
	"gorm.io/gorm"
)

// ErrUserConflict is returned when the email, username or firebase uid is taken.
var ErrUserConflict = errors.New("user already exists")

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	FindUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
}

// PostgresUserRepository implements UserRepository with GORM. It works against
// any dialect the application opens (postgres in production, sqlite locally).
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	err := conn(ctx, r.db).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUserConflict
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUserByID returns nil, nil when no user has the given id.
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *PostgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *PostgresUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	return r.first(ctx, "firebase_uid = ?", firebaseUID)
}

func (r *PostgresUserRepository) first(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := conn(ctx, r.db).Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// FindUsers matches every non-empty filter field as a case-insensitive substring.
func (r *PostgresUserRepository) FindUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	q := conn(ctx, r.db).Model(&models.User{})
	if filter.Name != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", like(filter.Name))
	}
	if filter.Username != "" {
		q = q.Where("LOWER(username) LIKE ? ESCAPE '\\'", like(filter.Username))
	}
	if filter.Email != "" {
		q = q.Where("LOWER(email) LIKE ? ESCAPE '\\'", like(filter.Email))
	}

	var users []models.User
	if err := q.Order("username ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return users, nil
}

func (r *PostgresUserRepository) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := conn(ctx, r.db).Where("id IN ?", ids).Order("username ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("get users by ids: %w", err)
	}
	return users, nil
}

func (r *PostgresUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	err := conn(ctx, r.db).Save(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUserConflict
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// DeleteUser removes the user; follow edges, likes and tweets go with it through
// ON DELETE CASCADE.
func (r *PostgresUserRepository) DeleteUser(ctx context.Context, id string) error {
	if err := conn(ctx, r.db).Delete(&models.User{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// like builds a case-insensitive substring pattern. Wildcards in s match
// literally; queries must use ESCAPE '\'.
func like(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
