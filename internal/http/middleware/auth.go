package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/contracts-billing/internal/auth"
	"github.com/nurpe/contracts-billing/internal/model"
	"github.com/nurpe/contracts-billing/internal/service"
)

const profileContextKey = "auth.profile"

// ProfileSource resolves caller ids to stored profiles.
type ProfileSource interface {
	ProfileByID(ctx context.Context, id int64) (*model.Profile, error)
}

// Auth resolves the caller identity from a bearer token or a bare profile_id
// header, looks the profile up, and rejects the request with access-denied
// when either step fails.
func Auth(parser *auth.Parser, profiles ProfileSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := resolveCallerID(c, parser)
		if !ok {
			deny(c)
			return
		}

		profile, err := profiles.ProfileByID(c.Request.Context(), id)
		if err != nil {
			deny(c)
			return
		}

		SetProfile(c, profile)
		c.Next()
	}
}

// SetProfile attaches the resolved profile to the request context.
func SetProfile(c *gin.Context, profile *model.Profile) {
	c.Set(profileContextKey, profile)
}

// MustProfile returns the profile resolved by Auth for this request.
func MustProfile(c *gin.Context) (*model.Profile, bool) {
	value, exists := c.Get(profileContextKey)
	if !exists {
		return nil, false
	}
	profile, ok := value.(*model.Profile)
	return profile, ok
}

func resolveCallerID(c *gin.Context, parser *auth.Parser) (int64, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			return 0, false
		}
		id, err := parser.Parse(token)
		if err != nil {
			return 0, false
		}
		return id, true
	}

	if raw := c.GetHeader("profile_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	}

	return 0, false
}

func deny(c *gin.Context) {
	e := service.ErrAccessDenied()
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": e.Code, "message": e.Message})
}
