package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/tweetline/backend/internal/middleware"
	"github.com/anonto42/tweetline/backend/internal/models"
	"github.com/anonto42/tweetline/backend/internal/services"
	"github.com/anonto42/tweetline/backend/validators"
)

// UserService is the user side of the service layer.
type UserService interface {
	Follow(ctx context.Context, in services.FollowInput) services.Result
	FindMany(ctx context.Context, filter models.UserFilter) services.Result
	FindOne(ctx context.Context, id string) services.Result
	Update(ctx context.Context, in services.UpdateUserInput) services.Result
	Remove(ctx context.Context, id, actorID string) services.Result
}

// TweetService is the tweet side of the service layer.
type TweetService interface {
	Like(ctx context.Context, in services.LikeInput) services.Result
	Create(ctx context.Context, in services.CreateTweetInput) services.Result
	FindAll(ctx context.Context, userID string, page models.Pagination) services.Result
	FindOne(ctx context.Context, id, viewerID string) services.Result
	Update(ctx context.Context, in services.UpdateTweetInput) services.Result
	Remove(ctx context.Context, id, actorID string) services.Result
}

type AuthService interface {
	Signup(ctx context.Context, in services.SignupInput) services.Result
	Login(ctx context.Context, email, password string) services.Result
	FirebaseLogin(ctx context.Context, idToken string) services.Result
}

func respond(c echo.Context, r services.Result) error {
	return c.JSON(r.Code, r)
}

func reject(c echo.Context, f *validators.Failure) error {
	return respond(c, services.Failure(f.Code, f.Message))
}

// caller returns the authenticated identity of the request.
func caller(c echo.Context) (*models.Identity, error) {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized: Token is required")
	}
	return identity, nil
}

// HTTPErrorHandler renders every error that reaches echo as an envelope.
func HTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var result services.Result
		var he *echo.HTTPError
		if errors.As(err, &he) {
			message := he.Message
			if _, ok := message.(string); !ok {
				message = http.StatusText(he.Code)
			}
			result = services.Failure(he.Code, message)
		} else {
			result = services.Failure(http.StatusInternalServerError, "An unexpected error occurred: "+err.Error())
		}

		if result.Code >= http.StatusInternalServerError {
			logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(result.Code)
		} else {
			err = c.JSON(result.Code, result)
		}
		if err != nil {
			logger.Error("write error response failed", zap.Error(err))
		}
	}
}
