package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/tweetline/backend/internal/services"
)

// Guard turns a panic inside a handler into a 500 envelope. The panic is
// reported to Sentry when the request carries a hub.
func Guard(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}
				logger.Error("handler panicked",
					zap.String("method", c.Request().Method),
					zap.String("path", c.Path()),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
				)
				if hub := sentryecho.GetHubFromContext(c); hub != nil {
					hub.RecoverWithContext(c.Request().Context(), r)
				}
				result := services.Failure(http.StatusInternalServerError, fmt.Sprintf("An unexpected error occurred: %v", r))
				err = c.JSON(result.Code, result)
			}()
			return next(c)
		}
	}
}
