package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anonto42/tweetline/backend/internal/models"
)

type stubTokens map[string]*models.Identity

func (s stubTokens) Verify(token string) (*models.Identity, error) {
	if identity, ok := s[token]; ok {
		return identity, nil
	}
	return nil, errors.New("invalid")
}

func TestJWTAuthMiddleware(t *testing.T) {
	alice := &models.Identity{ID: "6f1c2a4e-1111-4a6b-9c1e-000000000001", Username: "alice"}
	mw := JWTAuthMiddleware(stubTokens{"good": alice})

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"missing header", "", "Unauthorized: Token is required"},
		{"not a bearer token", "Basic abc", "Unauthorized: Invalid or missing token"},
		{"empty bearer token", "Bearer ", "Unauthorized: Invalid or missing token"},
		{"unknown token", "Bearer bad", "Unauthorized: Invalid or expired token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/tweets", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			err := mw(func(echo.Context) error {
				t.Fatal("handler must not run")
				return nil
			})(c)

			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, http.StatusUnauthorized, he.Code)
			assert.Equal(t, tt.message, he.Message)
		})
	}

	t.Run("valid token stores the identity", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/tweets", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer good")
		c := e.NewContext(req, httptest.NewRecorder())

		var seen *models.Identity
		err := mw(func(c echo.Context) error {
			seen = IdentityFrom(c)
			return nil
		})(c)

		require.NoError(t, err)
		assert.Equal(t, alice, seen)
	})
}

func TestGuard(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/tweets/like/x", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := Guard(zap.NewNop())(func(echo.Context) error {
		panic(errors.New("Exception"))
	})(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "An unexpected error occurred: Exception", body["message"])
	assert.NotContains(t, body, "code")
	assert.NotContains(t, body, "data")
}

func TestGuard_PassesThrough(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	err := Guard(zap.NewNop())(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
