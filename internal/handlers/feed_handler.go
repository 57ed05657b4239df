package handlers

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/tweetline/backend/validators"
)

var paginationMessages = map[string]string{
	"page": "Page must be a positive integer",
	"take": "Take must be between 1 and 50",
}

// FeedHandler serves the authenticated user's timeline
type FeedHandler struct {
	service    TweetService
	pagination validators.Chain[validators.PageQuery]
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(service TweetService) *FeedHandler {
	return &FeedHandler{service: service, pagination: validators.PaginationChain()}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("", h.FindAll)
}

// FindAll returns the caller's own tweets and those of the users they follow.
func (h *FeedHandler) FindAll(c echo.Context) error {
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

// bindPagination reads page, take and search from the query string.
func bindPagination(c echo.Context) (validators.PageQuery, *validators.Failure) {
	var query validators.PageQuery
	var page, take int
	errs := echo.QueryParamsBinder(c).
		Int("page", &page).
		Int("take", &take).
		String("search", &query.Search).
		BindErrors()
	if len(errs) == 0 {
		params := c.QueryParams()
		if params.Has("page") {
			query.Page = &page
		}
		if params.Has("take") {
			query.Take = &take
		}
		return query, nil
	}

	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		var be *echo.BindingError
		if errors.As(err, &be) {
			if msg, ok := paginationMessages[be.Field]; ok {
				msgs = append(msgs, msg)
				continue
			}
		}
		msgs = append(msgs, "Invalid query parameters")
	}
	return query, validators.FailAll(msgs)
}
