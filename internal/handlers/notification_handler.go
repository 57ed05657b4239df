package handlers

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/tweetline/backend/internal/models"
	"github.com/anonto42/tweetline/backend/internal/services"
	"github.com/anonto42/tweetline/backend/validators"
)

type NotificationService interface {
	FindAll(ctx context.Context, recipientID string, page models.Pagination) services.Result
	UnreadCount(ctx context.Context, recipientID string) services.Result
	MarkAsRead(ctx context.Context, id, recipientID string) services.Result
	MarkAllAsRead(ctx context.Context, recipientID string) services.Result
}

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	service    NotificationService
	validator  *validators.Validator
	pagination validators.Chain[validators.PageQuery]
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service NotificationService, v *validators.Validator) *NotificationHandler {
	return &NotificationHandler{service: service, validator: v, pagination: validators.PaginationChain()}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("", h.FindAll)
	g.GET("/unread-count", h.UnreadCount)
	g.PATCH("/read-all", h.MarkAllAsRead)
	g.PATCH("/:id/read", h.MarkAsRead)
}

// FindAll returns paginated notifications
func (h *NotificationHandler) FindAll(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	query, f := bindPagination(c)
	if f == nil {
		f = h.pagination.Run(c.Request().Context(), &query)
	}
	if f != nil {
		return reject(c, f)
	}
	return respond(c, h.service.FindAll(c.Request().Context(), identity.ID, query.Pagination()))
}

// UnreadCount returns the unread notification count
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	return respond(c, h.service.UnreadCount(c.Request().Context(), identity.ID))
}

// MarkAsRead marks one of the caller's notifications as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if f := h.validator.Identifier(id); f != nil {
		return reject(c, f)
	}
	return respond(c, h.service.MarkAsRead(c.Request().Context(), id, identity.ID))
}

// MarkAllAsRead marks all of the caller's notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	return respond(c, h.service.MarkAllAsRead(c.Request().Context(), identity.ID))
}
