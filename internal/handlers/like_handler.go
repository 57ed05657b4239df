package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/anonto42/tweetline/backend/internal/services"
	"github.com/anonto42/tweetline/backend/validators"
)

// LikeHandler handles like toggles on tweets
type LikeHandler struct {
	service   TweetService
	validator *validators.Validator
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(service TweetService, v *validators.Validator) *LikeHandler {
	return &LikeHandler{service: service, validator: v}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/like/:id", h.Like)
}

// Like likes the tweet in the path, or removes the like when it exists.
func (h *LikeHandler) Like(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if f := h.validator.Identifier(id); f != nil {
		return reject(c, f)
	}
	return respond(c, h.service.Like(c.Request().Context(), services.LikeInput{TweetID: id, UserID: identity.ID}))
}
