package services

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anonto42/tweetline/backend/internal/metrics"
	"github.com/anonto42/tweetline/backend/internal/models"
	"github.com/anonto42/tweetline/backend/internal/repositories"
	"github.com/anonto42/tweetline/backend/pkg/firebase"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Generate(user *models.User) (string, error)
}

// FirebaseVerifier checks Firebase ID tokens.
type FirebaseVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebase.Claims, error)
}

type SignupInput struct {
	Name     string
	Email    string
	Username string
	Password string
}

// AuthPayload is returned by every successful login.
type AuthPayload struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

var usernameSanitizer = regexp.MustCompile(`[^a-z0-9_]+`)

const minUsernameLength = 3

type AuthService struct {
	users    repositories.UserRepository
	tokens   TokenIssuer
	firebase FirebaseVerifier
	logger   *zap.Logger
}

// NewAuthService creates an AuthService. verifier may be nil when Firebase is
// not configured.
func NewAuthService(users repositories.UserRepository, tokens TokenIssuer, verifier FirebaseVerifier, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, firebase: verifier, logger: logger}
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) Result {
	hashed, err := hashPassword(in.Password)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return InternalError(err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.ToLower(in.Email),
		Username: in.Username,
		Password: hashed,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserConflict) {
			return Failure(http.StatusConflict, "Email or username is already in use.")
		}
		s.logger.Error("create user failed", zap.String("email", user.Email), zap.Error(err))
		return InternalError(err)
	}

	metrics.SignupTotal.Inc()
	s.logger.Info("user signed up", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return Success(http.StatusCreated, "User created successfully", user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) Result {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		s.logger.Error("get user failed", zap.Error(err))
		return InternalError(err)
	}
	if user == nil {
		metrics.LoginFailure.WithLabelValues("unknown_email").Inc()
		return Failure(http.StatusUnauthorized, "Invalid credentials")
	}
	if !checkPassword(user.Password, password) {
		metrics.LoginFailure.WithLabelValues("wrong_password").Inc()
		return Failure(http.StatusUnauthorized, "Invalid credentials")
	}
	return s.issue(user)
}

// FirebaseLogin exchanges a Firebase ID token for an access token. Unknown
// Firebase accounts are linked by email or provisioned on first login.
func (s *AuthService) FirebaseLogin(ctx context.Context, idToken string) Result {
	if s.firebase == nil {
		return Failure(http.StatusServiceUnavailable, "Firebase login is not configured")
	}
	claims, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.logger.Warn("firebase token rejected", zap.Error(err))
		metrics.LoginFailure.WithLabelValues("firebase_token").Inc()
		return Failure(http.StatusUnauthorized, "Invalid Firebase ID token")
	}
	if claims.Email == "" {
		return Failure(http.StatusUnauthorized, "Firebase account has no email")
	}

	user, err := s.users.GetUserByFirebaseUID(ctx, claims.UID)
	if err != nil {
		return InternalError(err)
	}
	if user != nil {
		return s.issue(user)
	}

	user, err = s.users.GetUserByEmail(ctx, strings.ToLower(claims.Email))
	if err != nil {
		return InternalError(err)
	}
	if user != nil {
		uid := claims.UID
		user.FirebaseUID = &uid
		if err := s.users.UpdateUser(ctx, user); err != nil {
			s.logger.Error("link firebase account failed", zap.String("user_id", user.ID), zap.Error(err))
			return InternalError(err)
		}
		return s.issue(user)
	}

	user, err = s.provision(ctx, claims)
	if errors.Is(err, repositories.ErrUserConflict) {
		return Failure(http.StatusConflict, "Email or username is already in use.")
	}
	if err != nil {
		s.logger.Error("provision firebase user failed", zap.String("firebase_uid", claims.UID), zap.Error(err))
		return InternalError(err)
	}
	return s.issue(user)
}

func (s *AuthService) provision(ctx context.Context, claims *firebase.Claims) (*models.User, error) {
	// Firebase users never log in with a password; store an unguessable one.
	hashed, err := hashPassword(uuid.NewString())
	if err != nil {
		return nil, err
	}

	local := usernameSanitizer.ReplaceAllString(strings.ToLower(strings.SplitN(claims.Email, "@", 2)[0]), "")
	name := claims.Name
	if name == "" {
		name = local
	}
	uid := claims.UID
	user := &models.User{
		Name:        name,
		Email:       strings.ToLower(claims.Email),
		Password:    hashed,
		FirebaseUID: &uid,
	}

	for _, username := range usernameCandidates(local, claims.UID) {
		user.Username = username
		err = s.users.CreateUser(ctx, user)
		if errors.Is(err, repositories.ErrUserConflict) {
			s.logger.Debug("provisioned username taken", zap.String("username", username))
			continue
		}
		if err != nil {
			return nil, err
		}
		metrics.SignupTotal.Inc()
		s.logger.Info("firebase user provisioned", zap.String("user_id", user.ID), zap.String("username", username))
		return user, nil
	}
	return nil, err
}

// usernameCandidates derives usernames for a provisioned account, shortest
// first: the email local part with a 6 then 12 character uid prefix, then a
// random suffix.
func usernameCandidates(local, uid string) []string {
	if len(local) < minUsernameLength {
		local = "user" + local
	}
	suffix := usernameSanitizer.ReplaceAllString(strings.ToLower(uid), "")

	var candidates []string
	if suffix != "" {
		candidates = append(candidates, local+"_"+suffix[:min(6, len(suffix))])
		if len(suffix) > 6 {
			candidates = append(candidates, local+"_"+suffix[:min(12, len(suffix))])
		}
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	return append(candidates, local+"_"+random)
}

func (s *AuthService) issue(user *models.User) Result {
	token, err := s.tokens.Generate(user)
	if err != nil {
		s.logger.Error("generate token failed", zap.String("user_id", user.ID), zap.Error(err))
		return InternalError(err)
	}
	return Success(http.StatusOK, "Login successful", AuthPayload{Token: token, User: user})
}
