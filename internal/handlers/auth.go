package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/tweetline/backend/internal/models"
	"github.com/anonto42/tweetline/backend/internal/services"
	"github.com/anonto42/tweetline/backend/validators"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service AuthService
	signup  validators.Chain[models.SignupRequest]
	login   validators.Chain[models.LoginRequest]
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthService, v *validators.Validator, users validators.UserLookup) *AuthHandler {
	return &AuthHandler{
		service: service,
		signup:  validators.SignupChain(v, users),
		login:   validators.LoginChain(v),
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/login", h.Login)
	g.POST("/firebase-login", h.FirebaseLogin)
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return reject(c, validators.BindFailure(err, validators.SignupTypeMessages))
	}
	if f := h.signup.Run(c.Request().Context(), &req); f != nil {
		return reject(c, f)
	}

	return respond(c, h.service.Signup(c.Request().Context(), services.SignupInput{
		Name:     *req.Name,
		Email:    *req.Email,
		Username: *req.Username,
		Password: *req.Password,
	}))
}

// Login handles local user authentication with email and password
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return reject(c, validators.BindFailure(err, nil))
	}
	if f := h.login.Run(c.Request().Context(), &req); f != nil {
		return reject(c, f)
	}
	return respond(c, h.service.Login(c.Request().Context(), req.Email, req.Password))
}

// FirebaseLogin verifies a Firebase ID token and issues a local JWT
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return reject(c, validators.BindFailure(err, nil))
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, services.Failure(http.StatusBadRequest, []string{"ID token is required"}))
	}
	return respond(c, h.service.FirebaseLogin(c.Request().Context(), req.IDToken))
}
