package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/cookbook/backend/internal/types"
)

type stubAuthenticator map[string]*types.Identity

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*types.Identity, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return nil, errors.New("invalid")
}

func newAuthRouter(a Authenticator) *gin.Engine {
	router := gin.New()
	whoami := func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"user": "anonymous"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": id.UserID.String()})
	}
	router.GET("/private", Auth(a), whoami)
	router.GET("/public", OptionalAuth(a), whoami)
	router.GET("/admin", Auth(a), RequireAdmin(), whoami)
	return router
}

func do(router http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestAuthMiddleware(t *testing.T) {
	user := &types.Identity{UserID: uuid.New()}
	admin := &types.Identity{UserID: uuid.New(), IsAdmin: true}
	router := newAuthRouter(stubAuthenticator{"user-token": user, "admin-token": admin})

	tests := []struct {
		name   string
		path   string
		auth   string
		status int
	}{
		{"private without header", "/private", "", http.StatusUnauthorized},
		{"private with malformed header", "/private", "Token user-token", http.StatusUnauthorized},
		{"private with bad token", "/private", "Bearer nope", http.StatusUnauthorized},
		{"private with token", "/private", "Bearer user-token", http.StatusOK},
		{"public anonymous", "/public", "", http.StatusOK},
		{"public with bad token", "/public", "Bearer nope", http.StatusUnauthorized},
		{"public with token", "/public", "bearer user-token", http.StatusOK},
		{"admin as user", "/admin", "Bearer user-token", http.StatusForbidden},
		{"admin as admin", "/admin", "Bearer admin-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(router, tt.path, tt.auth)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
		})
	}
}

func TestOptionalAuthSetsIdentity(t *testing.T) {
	user := &types.Identity{UserID: uuid.New()}
	router := newAuthRouter(stubAuthenticator{"t": user})

	assert.JSONEq(t, `{"user":"anonymous"}`, do(router, "/public", "").Body.String())
	assert.JSONEq(t, `{"user":"`+user.UserID.String()+`"}`, do(router, "/public", "Bearer t").Body.String())
}
