package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/kassemshdy/aspire-library/internal/authz"
	userdomain "github.com/kassemshdy/aspire-library/internal/domain/user"
	"github.com/kassemshdy/aspire-library/internal/httperr"
	"github.com/kassemshdy/aspire-library/internal/models"
)

const (
	ContextPrincipal = "principal"
	ContextUser      = "user"
)

// AuthMiddleware verifies the bearer token and loads the user it names.
// The role always comes from the database, never from the token.
func AuthMiddleware(secret string, users userdomain.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Unauthorized(c, "missing_authorization_header", "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Unauthorized(c, "invalid_authorization_header", "Authorization header must be a bearer token")
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			httperr.Unauthorized(c, "invalid_token", "Token is invalid or expired")
			c.Abort()
			return
		}

		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			httperr.Unauthorized(c, "invalid_token_payload", "Token has no subject")
			c.Abort()
			return
		}

		user, err := users.GetByID(c.Request.Context(), sub)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "user_not_found", "The account for this token no longer exists")
			c.Abort()
			return
		}
		if err != nil {
			httperr.Respond(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextPrincipal, authz.Principal{UserID: user.ID, Role: user.Role})

		c.Next()
	}
}

// RequireRoles lets the request through only for the listed roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		httperr.ForbiddenJSON(c, "forbidden", "You do not have permission to perform this action")
		c.Abort()
	}
}

// PrincipalFrom returns the caller set by AuthMiddleware, or an empty
// principal with no capabilities.
func PrincipalFrom(c *gin.Context) authz.Principal {
	if v, ok := c.Get(ContextPrincipal); ok {
		if p, ok := v.(authz.Principal); ok {
			return p
		}
	}
	return authz.Principal{}
}

func UserFrom(c *gin.Context) *models.User {
	if v, ok := c.Get(ContextUser); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}
