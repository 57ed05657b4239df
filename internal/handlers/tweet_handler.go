package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/anonto42/tweetline/backend/internal/models"
	"github.com/anonto42/tweetline/backend/internal/services"
	"github.com/anonto42/tweetline/backend/validators"
)

// TweetHandler handles HTTP requests related to tweets
type TweetHandler struct {
	service   TweetService
	validator *validators.Validator
	create    validators.Chain[models.CreateTweetRequest]
	update    validators.Chain[models.UpdateTweetRequest]
}

// NewTweetHandler creates a new TweetHandler
func NewTweetHandler(service TweetService, v *validators.Validator) *TweetHandler {
	return &TweetHandler{
		service:   service,
		validator: v,
		create:    validators.CreateTweetChain(v),
		update:    validators.UpdateTweetChain(),
	}
}

// RegisterTweetRoutes registers tweet-related routes
func (h *TweetHandler) RegisterTweetRoutes(g *echo.Group) {
	g.POST("", h.Create)
	g.GET("/:id", h.FindOne)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Remove)
}

// Create posts a tweet, reply or retweet as the authenticated user.
func (h *TweetHandler) Create(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	var req models.CreateTweetRequest
	if err := c.Bind(&req); err != nil {
		return reject(c, validators.BindFailure(err, validators.TweetTypeMessages))
	}
	if f := h.create.Run(c.Request().Context(), &req); f != nil {
		return reject(c, f)
	}

	in := services.CreateTweetInput{
		UserID:  identity.ID,
		Type:    models.TweetType(*req.Type),
		Content: req.Content,
	}
	if req.ParentID != nil && *req.ParentID != "" {
		in.ParentID = req.ParentID
	}
	return respond(c, h.service.Create(c.Request().Context(), in))
}

func (h *TweetHandler) FindOne(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if f := h.validator.Identifier(id); f != nil {
		return reject(c, f)
	}
	return respond(c, h.service.FindOne(c.Request().Context(), id, identity.ID))
}

// Update rewrites the content of one of the caller's tweets.
func (h *TweetHandler) Update(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if f := h.validator.Identifier(id); f != nil {
		return reject(c, f)
	}

	var req models.UpdateTweetRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return reject(c, validators.BindFailure(err, validators.TweetTypeMessages))
	}
	if f := h.update.Run(c.Request().Context(), &req); f != nil {
		return reject(c, f)
	}
	return respond(c, h.service.Update(c.Request().Context(), services.UpdateTweetInput{
		ID:      id,
		ActorID: identity.ID,
		Content: *req.Content,
	}))
}

func (h *TweetHandler) Remove(c echo.Context) error {
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
