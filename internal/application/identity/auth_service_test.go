package identity

import (
	"context"
	"testing"
	"time"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-access-secret",
		RefreshSecret:          "test-refresh-secret",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "test",
		MaxRefreshCount:        5,
	})
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates active user with default tag", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, newTestJWTService(), nil, nil)

		userRepo.On("ExistsByUsername", ctx, "alice").Return(false, nil)
		userRepo.On("ExistsByEmail", ctx, "alice@example.com").Return(false, nil)
		userRepo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		info, err := service.Register(ctx, RegisterRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "secret123",
		})
		require.NoError(t, err)
		assert.Equal(t, "alice", info.Username)
		assert.Equal(t, string(identity.AccountRoleUser), info.Role)
		userRepo.AssertExpectations(t)
	})

	t.Run("rejects taken username", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, newTestJWTService(), nil, nil)

		userRepo.On("ExistsByUsername", ctx, "alice").Return(true, nil)

		_, err := service.Register(ctx, RegisterRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "secret123",
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
		userRepo.AssertNotCalled(t, "Save")
	})

	t.Run("rejects registered email", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, newTestJWTService(), nil, nil)

		userRepo.On("ExistsByUsername", ctx, "alice").Return(false, nil)
		userRepo.On("ExistsByEmail", ctx, "alice@example.com").Return(true, nil)

		_, err := service.Register(ctx, RegisterRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "secret123",
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	})

	t.Run("rejects invalid password", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, newTestJWTService(), nil, nil)

		userRepo.On("ExistsByUsername", ctx, "alice").Return(false, nil)
		userRepo.On("ExistsByEmail", ctx, "alice@example.com").Return(false, nil)

		_, err := service.Register(ctx, RegisterRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "short",
		})
		assert.Error(t, err)
		userRepo.AssertNotCalled(t, "Save")
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("login by username issues token pair", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, newTestJWTService(), nil, nil)

		user := newTestUser(t)
		userRepo.On("FindByUsername", ctx, "alice").Return(user, nil)

		result, err := service.Login(ctx, LoginRequest{Identifier: "alice", Password: "secret123"})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Tokens.AccessToken)
		assert.NotEmpty(t, result.Tokens.RefreshToken)
		assert.Equal(t, "Bearer", result.Tokens.TokenType)
		assert.Equal(t, user.ID, result.User.ID)
	})

	t.Run("falls back to email lookup", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, newTestJWTService(), nil, nil)

		user := newTestUser(t)
		userRepo.On("FindByUsername", ctx, "alice@example.com").Return(nil, shared.ErrNotFound)
		userRepo.On("FindByEmail", ctx, "alice@example.com").Return(user, nil)

		result, err := service.Login(ctx, LoginRequest{Identifier: "alice@example.com", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, user.Username, result.User.Username)
	})

	t.Run("wrong password fails with the generic error", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, newTestJWTService(), nil, nil)

		user := newTestUser(t)
		userRepo.On("FindByUsername", ctx, "alice").Return(user, nil)

		_, err := service.Login(ctx, LoginRequest{Identifier: "alice", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown identifier fails with the same generic error", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, newTestJWTService(), nil, nil)

		userRepo.On("FindByUsername", ctx, "ghost").Return(nil, shared.ErrNotFound)
		userRepo.On("FindByEmail", ctx, "ghost").Return(nil, shared.ErrNotFound)

		_, err := service.Login(ctx, LoginRequest{Identifier: "ghost", Password: "secret123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("disabled account cannot log in", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, newTestJWTService(), nil, nil)

		user := newTestUser(t)
		user.Disable()
		userRepo.On("FindByUsername", ctx, "alice").Return(user, nil)

		_, err := service.Login(ctx, LoginRequest{Identifier: "alice", Password: "secret123"})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FORBIDDEN", domainErr.Code)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("exchanges a valid refresh token", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		jwtService := newTestJWTService()
		service := NewAuthService(userRepo, jwtService, nil, nil)

		user := newTestUser(t)
		tokens, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
			UserID:   user.ID,
			Username: user.Username,
			Role:     string(user.Role),
		})
		require.NoError(t, err)

		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		newPair, err := service.Refresh(ctx, tokens.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, newPair.AccessToken)
	})

	t.Run("rejects garbage tokens", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, newTestJWTService(), nil, nil)

		_, err := service.Refresh(ctx, "not-a-token")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "UNAUTHENTICATED", domainErr.Code)
	})

	t.Run("token for a deleted account looks like a bad token", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		jwtService := newTestJWTService()
		service := NewAuthService(userRepo, jwtService, nil, nil)

		user := newTestUser(t)
		tokens, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
			UserID:   user.ID,
			Username: user.Username,
		})
		require.NoError(t, err)

		userRepo.On("FindByID", ctx, user.ID).Return(nil, shared.ErrNotFound)

		_, err = service.Refresh(ctx, tokens.RefreshToken)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "UNAUTHENTICATED", domainErr.Code)
		assert.Equal(t, "Invalid refresh token", domainErr.Message)
	})

	t.Run("disabled account cannot refresh", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		jwtService := newTestJWTService()
		service := NewAuthService(userRepo, jwtService, nil, nil)

		user := newTestUser(t)
		tokens, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
			UserID:   user.ID,
			Username: user.Username,
		})
		require.NoError(t, err)

		user.Disable()
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		_, err = service.Refresh(ctx, tokens.RefreshToken)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FORBIDDEN", domainErr.Code)
	})
}

func TestAuthService_GetProfile(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	service := NewAuthService(userRepo, newTestJWTService(), nil, nil)

	user := newTestUser(t)
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

	info, err := service.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, info.Username)
	assert.Equal(t, user.Email, info.Email)
}
