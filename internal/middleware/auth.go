package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/gamehaqqs/gamehaqqs/internal/auth"
	"github.com/gamehaqqs/gamehaqqs/internal/models"
	"github.com/gamehaqqs/gamehaqqs/pkg/errors"
	"github.com/gamehaqqs/gamehaqqs/pkg/response"
)

const (
	CtxClaimsKey = "authClaims"
	CtxUserIDKey = "userID"
	CtxRoleKey   = "userRole"
)

// AccountResolver loads the stored state of an authenticated account.
type AccountResolver interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// Auth enforces JWT authentication using the supplied JWT service. Browsers cannot set headers on
// websocket upgrades, so an access_token query parameter is accepted for those requests only.
//
// When accounts is set, every request reloads the account: deactivated users are rejected and the
// stored role replaces the role claim, so admin changes apply before the token expires.
func Auth(jwt *iauth.JWTService, accounts AccountResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		role := claims.Role
		if accounts != nil {
			user, err := accounts.Get(c.Request.Context(), claims.UserID)
			switch {
			case stderrors.Is(err, errors.ErrNotFound):
				c.Header("WWW-Authenticate", "Bearer")
				response.Error(c, errors.ErrUnauthorized)
				c.Abort()
				return
			case err != nil:
				response.Error(c, err)
				c.Abort()
				return
			case !user.IsActive:
				response.Error(c, errors.New("ACCOUNT_DISABLED", "account is disabled", http.StatusForbidden))
				c.Abort()
				return
			}
			role = user.Role
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxRoleKey, role)

		c.Next()
	}
}

// RequireRole admits requests whose authenticated role is one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[strings.ToLower(role)] = struct{}{}
	}

	return func(c *gin.Context) {
		if c.GetString(CtxUserIDKey) == "" {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[strings.ToLower(c.GetString(CtxRoleKey))]; !ok {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authz := c.GetHeader("Authorization")
	if len(authz) >= 8 && strings.EqualFold(authz[:7], "Bearer ") {
		token := strings.TrimSpace(authz[7:])
		return token, token != ""
	}
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		token := strings.TrimSpace(c.Query("access_token"))
		return token, token != ""
	}
	return "", false
}
