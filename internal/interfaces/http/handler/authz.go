package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/storefront/backend/internal/application/identity"
)

// AuthzHandler exposes the authorization engine for introspection: clients
// can probe a single permission or list their effective set.
type AuthzHandler struct {
	BaseHandler
	authz *identityapp.AuthorizationService
}

// NewAuthzHandler creates a new AuthzHandler
func NewAuthzHandler(authz *identityapp.AuthorizationService) *AuthzHandler {
	return &AuthzHandler{authz: authz}
}

// RegisterRoutes registers authorization endpoints on the given group
func (h *AuthzHandler) RegisterRoutes(rg *gin.RouterGroup) {
	authz := rg.Group("/authz")
	authz.GET("/check", h.Check)
	authz.GET("/permissions", h.Permissions)
}

// CheckResponse is the outcome of a permission probe
type CheckResponse struct {
	Permission string `json:"permission"`
	Allowed    bool   `json:"allowed"`
	Reason     string `json:"reason"`
}

// Check probes whether the caller holds the permission given in the
// "permission" query parameter
func (h *AuthzHandler) Check(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	permission := c.Query("permission")
	if permission == "" {
		h.BadRequest(c, "Query parameter 'permission' is required")
		return
	}

	decision, err := h.authz.Authorize(c.Request.Context(), userID, permission)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CheckResponse{
		Permission: permission,
		Allowed:    decision.Allowed,
		Reason:     decision.Reason,
	})
}

// Permissions returns the caller's effective permission codes
func (h *AuthzHandler) Permissions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	codes, err := h.authz.EffectivePermissions(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"permissions": codes})
}
