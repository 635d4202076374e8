// ===============================
// internal/middleware/auth.go - Bearer token gate and policy checks
// ===============================

package middleware

import (
	"context"
	"net/http"
	"strings"

	"animax/internal/auth"
	"animax/internal/logging"
	"animax/internal/metrics"
	"animax/internal/models"
	"animax/internal/services"

	"github.com/gin-gonic/gin"
)

// Messages returned by the auth gate
const (
	MsgTokenMissing     = "Unauthorized Access, Token is missing"
	MsgTokenInvalid     = "Invalid or Expired Token"
	MsgTokenStructure   = "Invalid Token Structure or Role"
	MsgUserNotFound     = "User Not Found"
	MsgForbidden        = "Forbidden: Access Denied"
	MsgNotAuthenticated = "User not authenticated"
)

const identityContextKey = "identity"

type ctxKey struct{}

type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// AccountResolver re-fetches the account a token names.
type AccountResolver interface {
	Resolve(ctx context.Context, role, id string) (models.Identity, error)
}

type Authorizer interface {
	Enforce(role, resource, action string) (bool, error)
}

// Authenticate verifies the bearer token, confirms the account still exists
// and stores the caller identity in both the gin and request contexts.
func Authenticate(tokens TokenValidator, accounts AccountResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			reject(c, http.StatusUnauthorized, "missing_token", MsgTokenMissing)
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			reject(c, http.StatusUnauthorized, "invalid_token", MsgTokenInvalid)
			return
		}

		userID := claims.User.ID
		if userID == "" {
			userID = claims.Subject
		}
		if userID == "" || (claims.Role != models.RoleUser && claims.Role != models.RoleSuperAdmin) {
			reject(c, http.StatusUnauthorized, "bad_claims", MsgTokenStructure)
			return
		}

		ctx := c.Request.Context()
		identity, err := accounts.Resolve(ctx, claims.Role, userID)
		if err != nil {
			switch services.KindOf(err) {
			case services.KindNotFound:
				reject(c, http.StatusUnauthorized, "unknown_account", MsgUserNotFound)
			case services.KindUnauthorized:
				reject(c, http.StatusUnauthorized, "bad_claims", services.MessageOf(err))
			default:
				logging.Ctx(ctx).Error().Err(err).Msg("account lookup failed during authentication")
				abort(c, http.StatusInternalServerError, "Server Error")
			}
			return
		}

		reqLogger := logging.Ctx(ctx).With().
			Str("user_id", identity.ID).
			Str("role", identity.Role).
			Logger()
		ctx = logging.WithContext(WithIdentity(ctx, identity), reqLogger)
		c.Request = c.Request.WithContext(ctx)
		c.Set(identityContextKey, identity)

		c.Next()
	}
}

// RequirePermission aborts with 403 unless the caller's role may perform
// action on resource.
func RequirePermission(authz Authorizer, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			abort(c, http.StatusUnauthorized, MsgNotAuthenticated)
			return
		}

		allowed, err := authz.Enforce(identity.Role, resource, action)
		if err != nil {
			logging.Ctx(c.Request.Context()).Error().Err(err).Msg("policy enforcement failed")
			abort(c, http.StatusInternalServerError, "Server Error")
			return
		}
		if !allowed {
			metrics.RecordAuthFailure("forbidden")
			abort(c, http.StatusForbidden, MsgForbidden)
			return
		}

		c.Next()
	}
}

// CurrentIdentity returns the caller stored by Authenticate.
func CurrentIdentity(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(identityContextKey)
	if !ok {
		return models.Identity{}, false
	}
	identity, ok := v.(models.Identity)
	return identity, ok
}

func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, identity)
}

func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(ctxKey{}).(models.Identity)
	return identity, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func reject(c *gin.Context, status int, reason, message string) {
	metrics.RecordAuthFailure(reason)
	abort(c, status, message)
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
	})
}
