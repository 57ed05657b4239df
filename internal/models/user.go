package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"not null"`
	Username    string    `json:"username" gorm:"uniqueIndex;not null"`
	Email       string    `json:"email" gorm:"uniqueIndex;not null"` // Ensure email is unique across all users
	Password    string    `json:"-" gorm:"not null"`                  // Store hashed password, ignore for JSON serialization
	Bio         *string   `json:"bio,omitempty"`
	FirebaseUID *string   `json:"firebaseUid,omitempty" gorm:"uniqueIndex"` // Link to Firebase User UID
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Followers []Follow `json:"-" gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE"`
	Following []Follow `json:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Tweets    []Tweet  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Likes     []Like   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	Notifications     []Notification `json:"-" gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE"`
	SentNotifications []Notification `json:"-" gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserBase is the compact representation used in lists and relations.
type UserBase struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	Followers *int64 `json:"followers,omitempty"`
	Following *int64 `json:"following,omitempty"`
}

// UserDetail is returned by the single user lookup.
type UserDetail struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Username  string     `json:"username"`
	Email     string     `json:"email,omitempty"`
	Bio       *string    `json:"bio,omitempty"`
	Followers []UserBase `json:"followers"`
	Following []UserBase `json:"following"`
	Tweets    []Tweet    `json:"tweets"`
}

// UserUpdated is returned after a profile update.
type UserUpdated struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Bio      *string `json:"bio,omitempty"`
}

func (u *User) ToBase() UserBase {
	return UserBase{ID: u.ID, Name: u.Name, Username: u.Username}
}

func (u *User) ToUpdated() UserUpdated {
	return UserUpdated{ID: u.ID, Name: u.Name, Username: u.Username, Email: u.Email, Bio: u.Bio}
}

// UserFilter narrows the user search. Empty fields are ignored.
type UserFilter struct {
	Name     string `query:"name"`
	Username string `query:"username"`
	Email    string `query:"email"`
}

type SignupRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	Bio      *string `json:"bio"`
}

type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller resolved from a bearer token.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
