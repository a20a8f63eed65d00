package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// PermissionConfig holds configuration for permission middleware
type PermissionConfig struct {
	// Logger for middleware logging
	Logger *zap.Logger
	// OnDenied is called when permission is denied (optional)
	OnDenied func(c *gin.Context, requiredPermission string)
}

// RequirePermission creates middleware that consults the authorization engine
// for the given permission on every request. Nothing is read from the token
// beyond the caller's identity, so role and permission changes take effect
// immediately.
func RequirePermission(authz *identityapp.AuthorizationService, permission string) gin.HandlerFunc {
	return RequirePermissionWithConfig(authz, permission, PermissionConfig{})
}

// RequirePermissionWithConfig creates permission middleware with custom config
func RequirePermissionWithConfig(authz *identityapp.AuthorizationService, permission string, cfg PermissionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c)
		if !ok {
			abortUnauthenticated(c)
			return
		}

		decision, err := authz.Authorize(c.Request.Context(), userID, permission)
		if err != nil {
			abortAuthorizeError(c, err)
			return
		}

		if !decision.Allowed {
			if cfg.OnDenied != nil {
				cfg.OnDenied(c, permission)
				return
			}
			if cfg.Logger != nil {
				cfg.Logger.Warn("Permission denied",
					zap.String("user_id", userID.String()),
					zap.String("permission", permission),
					zap.String("reason", decision.Reason),
					zap.String("path", c.Request.URL.Path),
				)
			}
			abortForbidden(c)
			return
		}

		c.Next()
	}
}

// RequireRole creates middleware that requires the named role, carried either
// as the coarse account tag or as an enabled assigned role. Admins pass
// regardless of assignments.
func RequireRole(authz *identityapp.AuthorizationService, roleName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c)
		if !ok {
			abortUnauthenticated(c)
			return
		}

		if err := authz.RequireRole(c.Request.Context(), userID, roleName); err != nil {
			abortAuthorizeError(c, err)
			return
		}

		c.Next()
	}
}

// RequireAdmin creates middleware that requires admin access (coarse account
// tag or a role named "admin")
func RequireAdmin(authz *identityapp.AuthorizationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c)
		if !ok {
			abortUnauthenticated(c)
			return
		}

		isAdmin, err := authz.IsAdmin(c.Request.Context(), userID)
		if err != nil {
			abortAuthorizeError(c, err)
			return
		}
		if !isAdmin {
			abortForbidden(c)
			return
		}

		c.Next()
	}
}

func callerID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr := GetJWTUserID(c)
	if userIDStr == "" {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
		dto.ErrCodeUnauthenticated,
		"Authentication required",
	))
}

func abortForbidden(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(
		dto.ErrCodeForbidden,
		"Access denied: insufficient permissions",
	))
}

func abortAuthorizeError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		c.AbortWithStatusJSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, domainErr.Message))
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(
		dto.ErrCodeInternal,
		"An unexpected error occurred",
	))
}
