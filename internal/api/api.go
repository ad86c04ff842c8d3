package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/cookbook/backend/internal/middleware"
	"github.com/pageza/cookbook/backend/internal/service"
	"github.com/pageza/cookbook/backend/internal/types"
)

// Services are the domain operations the HTTP layer depends on.
type Services struct {
	Recipes        service.IRecipeService
	Comments       service.ICommentService
	Auth           service.IAuthService
	Users          service.IUserService
	PasswordResets service.IPasswordResetService
}

type Options struct {
	// PublicURL overrides the scheme and host of pagination links.
	PublicURL       string
	DefaultImageURL string
	DefaultPageSize int
	MaxPageSize     int
	// RecipeCreateLimiter and LoginLimiter are optional.
	RecipeCreateLimiter *middleware.RateLimiter
	LoginLimiter        *middleware.IPRateLimiter
}

// SetupAPI registers every route under /api/v1.
func SetupAPI(router *gin.Engine, svc Services, opts Options, logger *zap.Logger) {
	v1 := router.Group("/api/v1")
	{
		NewRecipeHandler(svc.Recipes, svc.Auth, opts, logger).RegisterRoutes(v1)
		NewCommentHandler(svc.Comments, svc.Auth, logger).RegisterRoutes(v1)
		NewAuthHandler(svc.Auth, svc.Users, svc.PasswordResets, opts.LoginLimiter, logger).RegisterRoutes(v1)
		NewUserHandler(svc.Users, svc.Auth, logger).RegisterRoutes(v1)
		NewFacetHandler().RegisterRoutes(v1)
	}
}

// respondError maps domain errors to status codes. Unexpected errors are
// logged and answered with a generic message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		verr   *service.ValidationError
		filter *service.InvalidFilterError
		perm   *service.PermissionError
		nf     *service.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		msg := "Invalid input."
		if paths := verr.Paths(); len(paths) > 0 {
			msg = verr.Fields[paths[0]][0]
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msg, "fields": verr.Fields})
	case errors.As(err, &filter):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Select a valid choice. " + filter.Value + " is not one of the available choices.",
			"fields": gin.H{filter.Param: []string{"Invalid value."}},
		})
	case errors.As(err, &perm):
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action."})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No active account found with the given credentials"})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid or expired"})
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": middleware.GenericErrorMessage})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// currentActor returns the authenticated identity. Routes using it must run Auth.
func currentActor(c *gin.Context) types.Identity {
	id, _ := middleware.CurrentIdentity(c)
	if id == nil {
		return types.Identity{}
	}
	return *id
}

// optionalActor returns nil for anonymous requests.
func optionalActor(c *gin.Context) *types.Identity {
	id, _ := middleware.CurrentIdentity(c)
	return id
}

// uuidParam parses a path parameter. An unparsable id cannot match any row,
// so it is answered with 404.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
		return uuid.Nil, false
	}
	return id, true
}

// pageURL returns the absolute URL of the current request with page replaced.
// Page 1 drops the parameter.
func pageURL(c *gin.Context, publicURL string, page int) *string {
	u := url.URL{Path: c.Request.URL.Path}
	if publicURL != "" {
		base, err := url.Parse(publicURL)
		if err == nil {
			u.Scheme, u.Host = base.Scheme, base.Host
			u.Path = strings.TrimRight(base.Path, "/") + u.Path
		}
	}
	if u.Host == "" {
		u.Scheme = "http"
		if c.Request.TLS != nil {
			u.Scheme = "https"
		}
		if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
			u.Scheme = proto
		}
		u.Host = c.Request.Host
	}

	q := c.Request.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
