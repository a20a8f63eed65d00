package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRoleRepository is a mock implementation of identity.RoleRepository
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Role), args.Error(1)
}

func (m *MockRoleRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]identity.Role, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Role), args.Error(1)
}

func (m *MockRoleRepository) FindByName(ctx context.Context, name string) (*identity.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Role), args.Error(1)
}

func (m *MockRoleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Role, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Role), args.Error(1)
}

func (m *MockRoleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRoleRepository) Save(ctx context.Context, role *identity.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Test helpers

func newTestUser(t *testing.T, roleIDs ...uuid.UUID) *identity.User {
	t.Helper()
	user, err := identity.NewUser("alice", "alice@example.com", "secret123")
	require.NoError(t, err)
	user.RoleIDs = roleIDs
	return user
}

func newTestRole(t *testing.T, name string, codes ...string) identity.Role {
	t.Helper()
	role, err := identity.NewRole(name, "")
	require.NoError(t, err)
	for _, code := range codes {
		p, err := identity.NewPermissionFromCode(code)
		require.NoError(t, err)
		role.GrantPermission(p)
	}
	return *role
}

func TestAuthorizationService_Authorize(t *testing.T) {
	ctx := context.Background()

	t.Run("nil user ID fails with UNAUTHENTICATED", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewAuthorizationService(userRepo, roleRepo, nil)

		_, err := service.Authorize(ctx, uuid.Nil, "order:read")
		assert.ErrorIs(t, err, shared.ErrUnauthenticated)
		userRepo.AssertNotCalled(t, "FindByID")
	})

	t.Run("unknown user fails with NOT_FOUND", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewAuthorizationService(userRepo, roleRepo, nil)

		userID := uuid.New()
		userRepo.On("FindByID", ctx, userID).Return(nil, shared.ErrNotFound)

		_, err := service.Authorize(ctx, userID, "order:read")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("admin tag bypasses permission resolution", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewAuthorizationService(userRepo, roleRepo, nil)

		user := newTestUser(t)
		require.NoError(t, user.SetRoleTag(identity.AccountRoleAdmin))
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		decision, err := service.Authorize(ctx, user.ID, "anything:at_all")
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		roleRepo.AssertNotCalled(t, "FindByIDs")
	})

	t.Run("admin role bypasses permission resolution", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewAuthorizationService(userRepo, roleRepo, nil)

		adminRole := newTestRole(t, identity.AdminRoleName)
		user := newTestUser(t, adminRole.ID)
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		roleRepo.On("FindByIDs", ctx, user.RoleIDs).Return([]identity.Role{adminRole}, nil)

		decision, err := service.Authorize(ctx, user.ID, "anything:at_all")
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	})

	t.Run("disabled admin role does not bypass", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewAuthorizationService(userRepo, roleRepo, nil)

		adminRole := newTestRole(t, identity.AdminRoleName)
		adminRole.Disable()
		user := newTestUser(t, adminRole.ID)
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		roleRepo.On("FindByIDs", ctx, user.RoleIDs).Return([]identity.Role{adminRole}, nil)

		decision, err := service.Authorize(ctx, user.ID, "order:read")
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
	})

	t.Run("user with no roles is denied, not errored", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewAuthorizationService(userRepo, roleRepo, nil)

		user := newTestUser(t)
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		decision, err := service.Authorize(ctx, user.ID, "order:read")
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		roleRepo.AssertNotCalled(t, "FindByIDs")
	})

	t.Run("permission granted through a role", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewAuthorizationService(userRepo, roleRepo, nil)

		role := newTestRole(t, "support", "order:read", "order:list")
		user := newTestUser(t, role.ID)
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		roleRepo.On("FindByIDs", ctx, user.RoleIDs).Return([]identity.Role{role}, nil)

		decision, err := service.Authorize(ctx, user.ID, "order:read")
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	})

	t.Run("missing permission is denied", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewAuthorizationService(userRepo, roleRepo, nil)

		role := newTestRole(t, "support", "order:read")
		user := newTestUser(t, role.ID)
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		roleRepo.On("FindByIDs", ctx, user.RoleIDs).Return([]identity.Role{role}, nil)

		decision, err := service.Authorize(ctx, user.ID, "order:delete")
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Contains(t, decision.Reason, "order:delete")
	})

	t.Run("disabled roles contribute no permissions", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewAuthorizationService(userRepo, roleRepo, nil)

		role := newTestRole(t, "support", "order:read")
		role.Disable()
		user := newTestUser(t, role.ID)
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		roleRepo.On("FindByIDs", ctx, user.RoleIDs).Return([]identity.Role{role}, nil)

		decision, err := service.Authorize(ctx, user.ID, "order:read")
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
	})

	t.Run("empty permission entries are skipped", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewAuthorizationService(userRepo, roleRepo, nil)

		role := newTestRole(t, "support", "order:read")
		role.Permissions = append(role.Permissions, identity.Permission{})
		user := newTestUser(t, role.ID)
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		roleRepo.On("FindByIDs", ctx, user.RoleIDs).Return([]identity.Role{role}, nil)

		decision, err := service.Authorize(ctx, user.ID, ":")
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
	})
}

func TestAuthorizationService_IsAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("true via coarse tag", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewAuthorizationService(userRepo, roleRepo, nil)

		user := newTestUser(t)
		require.NoError(t, user.SetRoleTag(identity.AccountRoleAdmin))
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		isAdmin, err := service.IsAdmin(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, isAdmin)
	})

	t.Run("true via admin role assignment", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewAuthorizationService(userRepo, roleRepo, nil)

		adminRole := newTestRole(t, identity.AdminRoleName)
		user := newTestUser(t, adminRole.ID)
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		roleRepo.On("FindByIDs", ctx, user.RoleIDs).Return([]identity.Role{adminRole}, nil)

		isAdmin, err := service.IsAdmin(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, isAdmin)
	})

	t.Run("false when the admin role is disabled", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewAuthorizationService(userRepo, roleRepo, nil)

		adminRole := newTestRole(t, identity.AdminRoleName)
		adminRole.Disable()
		user := newTestUser(t, adminRole.ID)
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		roleRepo.On("FindByIDs", ctx, user.RoleIDs).Return([]identity.Role{adminRole}, nil)

		isAdmin, err := service.IsAdmin(ctx, user.ID)
		require.NoError(t, err)
		assert.False(t, isAdmin)
	})

	t.Run("false for regular user", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewAuthorizationService(userRepo, roleRepo, nil)

		role := newTestRole(t, "support", "order:read")
		user := newTestUser(t, role.ID)
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		roleRepo.On("FindByIDs", ctx, user.RoleIDs).Return([]identity.Role{role}, nil)

		isAdmin, err := service.IsAdmin(ctx, user.ID)
		require.NoError(t, err)
		assert.False(t, isAdmin)
	})
}

func TestAuthorizationService_RequireRole(t *testing.T) {
	ctx := context.Background()

	t.Run("passes when role is assigned", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewAuthorizationService(userRepo, roleRepo, nil)

		role := newTestRole(t, "support")
		user := newTestUser(t, role.ID)
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		roleRepo.On("FindByIDs", ctx, user.RoleIDs).Return([]identity.Role{role}, nil)

		assert.NoError(t, service.RequireRole(ctx, user.ID, "support"))
	})

	t.Run("coarse manager tag satisfies its role check", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewAuthorizationService(userRepo, roleRepo, nil)

		user := newTestUser(t)
		require.NoError(t, user.SetRoleTag(identity.AccountRoleManager))
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		assert.NoError(t, service.RequireRole(ctx, user.ID, "manager"))
		roleRepo.AssertNotCalled(t, "FindByIDs")
	})

	t.Run("disabled assigned role does not satisfy the check", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewAuthorizationService(userRepo, roleRepo, nil)

		role := newTestRole(t, "support")
		role.Disable()
		user := newTestUser(t, role.ID)
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		roleRepo.On("FindByIDs", ctx, user.RoleIDs).Return([]identity.Role{role}, nil)

		err := service.RequireRole(ctx, user.ID, "support")
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("admin passes any role check", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewAuthorizationService(userRepo, roleRepo, nil)

		user := newTestUser(t)
		require.NoError(t, user.SetRoleTag(identity.AccountRoleAdmin))
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		assert.NoError(t, service.RequireRole(ctx, user.ID, "support"))
	})

	t.Run("fails with FORBIDDEN otherwise", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewAuthorizationService(userRepo, roleRepo, nil)

		user := newTestUser(t)
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		err := service.RequireRole(ctx, user.ID, "support")
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestAuthorizationService_EffectivePermissions(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	roleRepo := new(MockRoleRepository)
	service := NewAuthorizationService(userRepo, roleRepo, nil)

	support := newTestRole(t, "support", "order:read", "order:list")
	moderator := newTestRole(t, "moderator", "order:read", "review:delete")
	disabled := newTestRole(t, "legacy", "product:delete")
	disabled.Disable()

	user := newTestUser(t, support.ID, moderator.ID, disabled.ID)
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	roleRepo.On("FindByIDs", ctx, user.RoleIDs).Return([]identity.Role{support, moderator, disabled}, nil)

	codes, err := service.EffectivePermissions(ctx, user.ID)
	require.NoError(t, err)

	// Union across enabled roles, no duplicates, disabled role excluded
	assert.ElementsMatch(t, []string{"order:read", "order:list", "review:delete"}, codes)
}
