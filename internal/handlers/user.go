package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/anonto42/tweetline/backend/internal/models"
	"github.com/anonto42/tweetline/backend/internal/services"
	"github.com/anonto42/tweetline/backend/validators"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	service   UserService
	validator *validators.Validator
	update    validators.Chain[models.UpdateUserRequest]
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserService, v *validators.Validator) *UserHandler {
	return &UserHandler{service: service, validator: v, update: validators.UpdateUserChain()}
}

// RegisterUserRoutes registers user profile routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("", h.FindMany)
	g.GET("/:id", h.FindOne)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Remove)
}

// FindMany lists users, optionally filtered by name, username or email.
func (h *UserHandler) FindMany(c echo.Context) error {
	var filter models.UserFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &filter); err != nil {
		return reject(c, validators.Fail("Invalid query parameters"))
	}
	return respond(c, h.service.FindMany(c.Request().Context(), filter))
}

func (h *UserHandler) FindOne(c echo.Context) error {
	id := c.Param("id")
	if f := h.validator.Identifier(id); f != nil {
		return reject(c, f)
	}
	return respond(c, h.service.FindOne(c.Request().Context(), id))
}

// Update changes the authenticated user's own profile.
func (h *UserHandler) Update(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if f := h.validator.Identifier(id); f != nil {
		return reject(c, f)
	}

	var req models.UpdateUserRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return reject(c, validators.BindFailure(err, validators.SignupTypeMessages))
	}
	if f := h.update.Run(c.Request().Context(), &req); f != nil {
		return reject(c, f)
	}

	return respond(c, h.service.Update(c.Request().Context(), services.UpdateUserInput{
		ID:       id,
		ActorID:  identity.ID,
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
		Bio:      req.Bio,
	}))
}

func (h *UserHandler) Remove(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if f := h.validator.Identifier(id); f != nil {
		return reject(c, f)
	}
	return respond(c, h.service.Remove(c.Request().Context(), id, identity.ID))
}
