package validators

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/anonto42/tweetline/backend/internal/models"
)

const maxBioLength = 160

// SignupTypeMessages reports any non-string signup field with one message.
var SignupTypeMessages = map[string]any{
	"*": "All fields must be strings.",
}

// UserLookup is the store access the uniqueness stage needs.
type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// SignupChain validates POST /auth/signup bodies.
func SignupChain(v *Validator, users UserLookup) Chain[models.SignupRequest] {
	return NewChain(
		signupRequired,
		func(_ context.Context, req *models.SignupRequest) *Failure {
			var errs []string
			if utf8.RuneCountInString(strings.TrimSpace(*req.Name)) < 3 {
				errs = append(errs, "Name must be at least 3 characters long.")
			}
			if !v.IsEmail(*req.Email) {
				errs = append(errs, "Invalid email.")
			}
			if utf8.RuneCountInString(*req.Username) < 3 {
				errs = append(errs, "Username must be at least 3 characters long.")
			}
			if utf8.RuneCountInString(*req.Password) < 4 {
				errs = append(errs, "Password must be at least 4 characters long.")
			}
			return FailAll(errs)
		},
		func(ctx context.Context, req *models.SignupRequest) *Failure {
			existing, err := users.GetUserByEmail(ctx, strings.ToLower(*req.Email))
			if err != nil {
				return internal(err)
			}
			if existing != nil {
				return Fail("Email is already in use.")
			}
			existing, err = users.GetUserByUsername(ctx, *req.Username)
			if err != nil {
				return internal(err)
			}
			if existing != nil {
				return Fail("Username is already in use.")
			}
			return nil
		},
	)
}

func signupRequired(_ context.Context, req *models.SignupRequest) *Failure {
	var errs []string
	if blank(req.Name) {
		errs = append(errs, "Name is required!")
	}
	if blank(req.Email) {
		errs = append(errs, "Email is required!")
	}
	if blank(req.Password) {
		errs = append(errs, "Password is required!")
	}
	if blank(req.Username) {
		errs = append(errs, "Username is required!")
	}
	return FailAll(errs)
}

// LoginChain validates POST /auth/login bodies.
func LoginChain(v *Validator) Chain[models.LoginRequest] {
	return NewChain(StructStage[models.LoginRequest](v, map[string]string{
		"Email.required":    "Email is required!",
		"Password.required": "Password is required!",
	}))
}

// UpdateUserChain validates PATCH /users/:id bodies. Only provided fields are checked.
func UpdateUserChain() Chain[models.UpdateUserRequest] {
	return NewChain(
		func(_ context.Context, req *models.UpdateUserRequest) *Failure {
			if req.Name == nil && req.Username == nil && req.Password == nil && req.Bio == nil {
				return FailAll([]string{"At least one field must be provided"})
			}
			return nil
		},
		func(_ context.Context, req *models.UpdateUserRequest) *Failure {
			var errs []string
			if req.Name != nil && utf8.RuneCountInString(strings.TrimSpace(*req.Name)) < 3 {
				errs = append(errs, "Name must be at least 3 characters long.")
			}
			if req.Username != nil && utf8.RuneCountInString(*req.Username) < 3 {
				errs = append(errs, "Username must be at least 3 characters long.")
			}
			if req.Password != nil && utf8.RuneCountInString(*req.Password) < 4 {
				errs = append(errs, "Password must be at least 4 characters long.")
			}
			if req.Bio != nil && utf8.RuneCountInString(*req.Bio) > maxBioLength {
				errs = append(errs, fmt.Sprintf("Bio must be at most %d characters long.", maxBioLength))
			}
			return FailAll(errs)
		},
	)
}

func internal(err error) *Failure {
	return &Failure{Code: http.StatusInternalServerError, Message: "Internal server error: " + err.Error()}
}
