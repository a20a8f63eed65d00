package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	identityapp "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// RoleHandler handles role management API endpoints. All routes are
// admin-only.
type RoleHandler struct {
	BaseHandler
	roleService *identityapp.RoleService
	authz       *identityapp.AuthorizationService
}

// NewRoleHandler creates a new RoleHandler
func NewRoleHandler(roleService *identityapp.RoleService, authz *identityapp.AuthorizationService) *RoleHandler {
	return &RoleHandler{roleService: roleService, authz: authz}
}

// RegisterRoutes registers role endpoints on the given group
func (h *RoleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	roles := rg.Group("/roles")
	roles.Use(middleware.RequireAdmin(h.authz))
	roles.POST("", h.Create)
	roles.GET("", h.List)
	roles.GET("/:id", h.Get)
	roles.PUT("/:id/permissions", h.SetPermissions)
	roles.DELETE("/:id", h.Delete)
	roles.POST("/:id/users/:userId", h.AssignToUser)
	roles.DELETE("/:id/users/:userId", h.RemoveFromUser)
}

// CreateRoleRequest represents a request to create a role
type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required,min=2,max=50"`
	Description string   `json:"description" binding:"max=255"`
	Permissions []string `json:"permissions"`
}

// SetPermissionsRequest replaces a role's permission set
type SetPermissionsRequest struct {
	Permissions []string `json:"permissions" binding:"required"`
}

// RoleResponse represents a role in API responses
type RoleResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Enabled     bool      `json:"enabled"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Create creates a role with the given permission codes
func (h *RoleHandler) Create(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	role, err := h.roleService.Create(c.Request.Context(), identityapp.CreateRoleRequest{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toRoleResponse(role))
}

// Get returns a role by ID
func (h *RoleHandler) Get(c *gin.Context) {
	roleID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid role ID format")
		return
	}

	role, err := h.roleService.Get(c.Request.Context(), roleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toRoleResponse(role))
}

// List returns roles matching the filter
func (h *RoleHandler) List(c *gin.Context) {
	req, err := bindListRequest(c)
	if err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.roleService.List(c.Request.Context(), toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]RoleResponse, 0, len(page.Items))
	for i := range page.Items {
		responses = append(responses, toRoleResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, responses, page.Total, req.Page, req.PageSize)
}

// SetPermissions replaces a role's permission set
func (h *RoleHandler) SetPermissions(c *gin.Context) {
	roleID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid role ID format")
		return
	}

	var req SetPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	role, err := h.roleService.SetPermissions(c.Request.Context(), roleID, req.Permissions)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toRoleResponse(role))
}

// Delete removes a role. The reserved admin role cannot be deleted.
func (h *RoleHandler) Delete(c *gin.Context) {
	roleID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid role ID format")
		return
	}

	if err := h.roleService.Delete(c.Request.Context(), roleID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AssignToUser attaches a role to a user
func (h *RoleHandler) AssignToUser(c *gin.Context) {
	roleID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid role ID format")
		return
	}
	userID, err := parseIDParam(c, "userId")
	if err != nil {
		h.BadRequest(c, "Invalid user ID format")
		return
	}

	if err := h.roleService.AssignToUser(c.Request.Context(), userID, roleID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RemoveFromUser detaches a role from a user
func (h *RoleHandler) RemoveFromUser(c *gin.Context) {
	roleID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid role ID format")
		return
	}
	userID, err := parseIDParam(c, "userId")
	if err != nil {
		h.BadRequest(c, "Invalid user ID format")
		return
	}

	if err := h.roleService.RemoveFromUser(c.Request.Context(), userID, roleID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func toRoleResponse(role *identity.Role) RoleResponse {
	codes := make([]string, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		codes = append(codes, p.Code())
	}
	return RoleResponse{
		ID:          role.ID.String(),
		Name:        role.Name,
		Description: role.Description,
		Enabled:     role.Enabled,
		Permissions: codes,
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	}
}
