package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/anonto42/tweetline/backend/internal/services"
	"github.com/anonto42/tweetline/backend/validators"
)

// FollowHandler handles follow toggles
type FollowHandler struct {
	service   UserService
	validator *validators.Validator
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(service UserService, v *validators.Validator) *FollowHandler {
	return &FollowHandler{service: service, validator: v}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/follow/:id", h.Follow)
}

// Follow follows the user in the path, or unfollows them when already followed.
func (h *FollowHandler) Follow(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if f := h.validator.Identifier(id); f != nil {
		return reject(c, f)
	}
	return respond(c, h.service.Follow(c.Request().Context(), services.FollowInput{ID: id, UserID: identity.ID}))
}
