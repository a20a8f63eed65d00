package identity

import (
	"regexp"
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
)

// Resource and action names used to build permission codes.
const (
	ResourceUser    = "user"
	ResourceRole    = "role"
	ResourceOrder   = "order"
	ResourceProduct = "product"
	ResourceReview  = "review"

	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionList   = "list"
	ActionManage = "manage"
)

// AdminRoleName is the reserved role name that grants every permission.
const AdminRoleName = "admin"

var (
	roleNameRegex       = regexp.MustCompile(`^[a-z][a-z0-9_-]{1,49}$`)
	permissionCodeRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*:[a-z][a-z0-9_]*$`)
)

// Permission is a value object identified by its "resource:action" code.
type Permission struct {
	Resource string `gorm:"size:50;not null"`
	Action   string `gorm:"size:50;not null"`
}

// NewPermission creates a permission from resource and action parts
func NewPermission(resource, action string) (Permission, error) {
	p := Permission{
		Resource: strings.ToLower(strings.TrimSpace(resource)),
		Action:   strings.ToLower(strings.TrimSpace(action)),
	}
	if !permissionCodeRegex.MatchString(p.Code()) {
		return Permission{}, shared.NewDomainError("INVALID_INPUT", "Invalid permission code")
	}
	return p, nil
}

// NewPermissionFromCode parses a "resource:action" code
func NewPermissionFromCode(code string) (Permission, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if !permissionCodeRegex.MatchString(code) {
		return Permission{}, shared.NewDomainError("INVALID_INPUT", "Invalid permission code")
	}
	parts := strings.SplitN(code, ":", 2)
	return Permission{Resource: parts[0], Action: parts[1]}, nil
}

// Code returns the canonical "resource:action" form
func (p Permission) Code() string {
	return p.Resource + ":" + p.Action
}

// Equals compares two permissions by code
func (p Permission) Equals(other Permission) bool {
	return p.Resource == other.Resource && p.Action == other.Action
}

// IsEmpty reports whether the permission carries no code. Empty entries can
// appear in legacy role rows and must be skipped when building permission sets.
func (p Permission) IsEmpty() bool {
	return p.Resource == "" || p.Action == ""
}

// Role is an aggregate grouping a named set of permissions.
type Role struct {
	shared.BaseAggregateRoot
	Name        string       `gorm:"size:50;not null;uniqueIndex"`
	Description string       `gorm:"size:255"`
	Enabled     bool         `gorm:"not null;default:true"`
	Permissions []Permission `gorm:"-"`
}

// NewRole creates a new enabled role
func NewRole(name, description string) (*Role, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !roleNameRegex.MatchString(name) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Role name must be 2-50 lowercase characters")
	}
	return &Role{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       description,
		Enabled:           true,
	}, nil
}

// IsAdmin reports whether this role grants unconditional access
func (r *Role) IsAdmin() bool {
	return r.Name == AdminRoleName
}

// HasPermission checks whether the role contains the given permission code
func (r *Role) HasPermission(code string) bool {
	for _, p := range r.Permissions {
		if p.Code() == code {
			return true
		}
	}
	return false
}

// GrantPermission adds a permission, ignoring duplicates
func (r *Role) GrantPermission(p Permission) {
	if p.IsEmpty() || r.HasPermission(p.Code()) {
		return
	}
	r.Permissions = append(r.Permissions, p)
}

// RevokePermission removes a permission by code
func (r *Role) RevokePermission(code string) {
	kept := r.Permissions[:0]
	for _, p := range r.Permissions {
		if p.Code() != code {
			kept = append(kept, p)
		}
	}
	r.Permissions = kept
}

// SetPermissions replaces the permission set, dropping empty and duplicate entries
func (r *Role) SetPermissions(perms []Permission) {
	seen := make(map[string]struct{}, len(perms))
	result := make([]Permission, 0, len(perms))
	for _, p := range perms {
		if p.IsEmpty() {
			continue
		}
		if _, ok := seen[p.Code()]; ok {
			continue
		}
		seen[p.Code()] = struct{}{}
		result = append(result, p)
	}
	r.Permissions = result
}

// Disable marks the role as disabled; disabled roles contribute no permissions
func (r *Role) Disable() {
	r.Enabled = false
}

// Enable re-enables the role
func (r *Role) Enable() {
	r.Enabled = true
}
