package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CreateRoleRequest holds input for role creation
type CreateRoleRequest struct {
	Name        string
	Description string
	Permissions []string
}

// RoleService manages roles and their assignment to users
type RoleService struct {
	roleRepo identity.RoleRepository
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewRoleService creates a new RoleService
func NewRoleService(roleRepo identity.RoleRepository, userRepo identity.UserRepository, logger *zap.Logger) *RoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleService{
		roleRepo: roleRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

// Create creates a role with the given permission codes
func (s *RoleService) Create(ctx context.Context, req CreateRoleRequest) (*identity.Role, error) {
	existing, err := s.roleRepo.FindByName(ctx, req.Name)
	if err != nil && err != shared.ErrNotFound {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Role name is already in use")
	}

	role, err := identity.NewRole(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	perms, err := parsePermissionCodes(req.Permissions)
	if err != nil {
		return nil, err
	}
	role.SetPermissions(perms)

	if err := s.roleRepo.Save(ctx, role); err != nil {
		return nil, err
	}
	s.logger.Info("Role created", zap.String("role_id", role.ID.String()), zap.String("name", role.Name))
	return role, nil
}

// Get returns a role by ID
func (s *RoleService) Get(ctx context.Context, id uuid.UUID) (*identity.Role, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, shared.ErrNotFound
	}
	return role, nil
}

// List returns roles matching the filter
func (s *RoleService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[identity.Role], error) {
	roles, err := s.roleRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.roleRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(roles, total, filter.Page, filter.PageSize)
	return &result, nil
}

// SetPermissions replaces a role's permission set
func (s *RoleService) SetPermissions(ctx context.Context, roleID uuid.UUID, codes []string) (*identity.Role, error) {
	role, err := s.Get(ctx, roleID)
	if err != nil {
		return nil, err
	}
	perms, err := parsePermissionCodes(codes)
	if err != nil {
		return nil, err
	}
	role.SetPermissions(perms)
	if err := s.roleRepo.Save(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// Delete removes a role. The reserved admin role cannot be deleted.
func (s *RoleService) Delete(ctx context.Context, roleID uuid.UUID) error {
	role, err := s.Get(ctx, roleID)
	if err != nil {
		return err
	}
	if role.IsAdmin() {
		return shared.NewDomainError("FORBIDDEN", "The admin role cannot be deleted")
	}
	return s.roleRepo.Delete(ctx, roleID)
}

// AssignToUser attaches a role to a user
func (s *RoleService) AssignToUser(ctx context.Context, userID, roleID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return shared.ErrNotFound
	}
	if _, err := s.Get(ctx, roleID); err != nil {
		return err
	}
	user.AssignRole(roleID)
	return s.userRepo.Save(ctx, user)
}

// RemoveFromUser detaches a role from a user
func (s *RoleService) RemoveFromUser(ctx context.Context, userID, roleID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return shared.ErrNotFound
	}
	user.RemoveRole(roleID)
	return s.userRepo.Save(ctx, user)
}

func parsePermissionCodes(codes []string) ([]identity.Permission, error) {
	perms := make([]identity.Permission, 0, len(codes))
	for _, code := range codes {
		p, err := identity.NewPermissionFromCode(code)
		if err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, nil
}
