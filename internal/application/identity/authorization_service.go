package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Decision is the outcome of an authorization check for a known,
// authenticated user.
type Decision struct {
	Allowed bool
	Reason  string
}

// AuthorizationService decides whether a user may perform an action. Roles
// and permissions are resolved from the store on every call; nothing is
// cached between requests, so revoking a role takes effect immediately.
type AuthorizationService struct {
	userRepo identity.UserRepository
	roleRepo identity.RoleRepository
	logger   *zap.Logger
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo identity.UserRepository, roleRepo identity.RoleRepository, logger *zap.Logger) *AuthorizationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthorizationService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		logger:   logger,
	}
}

// Authorize checks whether the user holds the required permission.
//
// A zero userID fails with UNAUTHENTICATED and an unknown user with
// NOT_FOUND; both are distinct from a negative Decision, which means the
// user is known but lacks the permission. Admin access (coarse tag or an
// enabled role named "admin") short-circuits before the permission set is
// built.
func (s *AuthorizationService) Authorize(ctx context.Context, userID uuid.UUID, requiredPermission string) (Decision, error) {
	user, roles, err := s.loadUserWithRoles(ctx, userID)
	if err != nil {
		return Decision{}, err
	}

	if user.IsAdminTag() {
		return Decision{Allowed: true, Reason: "admin account"}, nil
	}
	for _, role := range roles {
		if role.Enabled && role.IsAdmin() {
			return Decision{Allowed: true, Reason: "admin role"}, nil
		}
	}

	permSet := collectPermissions(roles)
	if _, ok := permSet[requiredPermission]; ok {
		return Decision{Allowed: true, Reason: "permission granted"}, nil
	}

	s.logger.Debug("Permission denied",
		zap.String("user_id", userID.String()),
		zap.String("permission", requiredPermission),
	)
	return Decision{Allowed: false, Reason: "missing permission: " + requiredPermission}, nil
}

// IsAdmin reports whether the user has admin access via the coarse tag or an
// enabled assigned role named "admin". A disabled admin role grants nothing,
// matching how disabled roles are excluded from permission sets.
func (s *AuthorizationService) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, roles, err := s.loadUserWithRoles(ctx, userID)
	if err != nil {
		return false, err
	}
	if user.IsAdminTag() {
		return true, nil
	}
	for _, role := range roles {
		if role.Enabled && role.IsAdmin() {
			return true, nil
		}
	}
	return false, nil
}

// RequireRole fails with FORBIDDEN unless the user carries the named role,
// either as the coarse account tag or as an enabled assigned role. Admins
// pass regardless of assignments.
func (s *AuthorizationService) RequireRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	user, roles, err := s.loadUserWithRoles(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAdminTag() || string(user.Role) == roleName {
		return nil
	}
	for _, role := range roles {
		if !role.Enabled {
			continue
		}
		if role.IsAdmin() || role.Name == roleName {
			return nil
		}
	}
	return shared.ErrForbidden
}

// EffectivePermissions returns the union of permission codes across the
// user's enabled roles. Admins are not special-cased here; callers wanting
// the bypass must use Authorize or IsAdmin.
func (s *AuthorizationService) EffectivePermissions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	_, roles, err := s.loadUserWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	permSet := collectPermissions(roles)
	codes := make([]string, 0, len(permSet))
	for code := range permSet {
		codes = append(codes, code)
	}
	return codes, nil
}

func (s *AuthorizationService) loadUserWithRoles(ctx context.Context, userID uuid.UUID) (*identity.User, []identity.Role, error) {
	if userID == uuid.Nil {
		return nil, nil, shared.ErrUnauthenticated
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, shared.ErrNotFound
	}

	if len(user.RoleIDs) == 0 {
		return user, nil, nil
	}

	// Unknown role IDs are skipped by the repository rather than failing the
	// whole check.
	roles, err := s.roleRepo.FindByIDs(ctx, user.RoleIDs)
	if err != nil {
		s.logger.Warn("Failed to load roles for authorization",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return nil, nil, err
	}
	return user, roles, nil
}

// collectPermissions builds the effective permission set from enabled roles,
// skipping empty permission entries.
func collectPermissions(roles []identity.Role) map[string]struct{} {
	permSet := make(map[string]struct{})
	for _, role := range roles {
		if !role.Enabled {
			continue
		}
		for _, p := range role.Permissions {
			if p.IsEmpty() {
				continue
			}
			permSet[p.Code()] = struct{}{}
		}
	}
	return permSet
}
