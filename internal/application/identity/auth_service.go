package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned for any login failure so callers cannot
// probe which usernames exist.
var ErrInvalidCredentials = shared.NewDomainError("UNAUTHENTICATED", "Invalid username or password")

// RegisterRequest holds input for account registration
type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

// LoginRequest holds login credentials. Identifier may be a username or email.
type LoginRequest struct {
	Identifier string
	Password   string
}

// UserInfo is the safe, serializable view of a user
type UserInfo struct {
	ID          uuid.UUID        `json:"id"`
	Username    string           `json:"username"`
	Email       string           `json:"email"`
	DisplayName string           `json:"display_name"`
	Phone       string           `json:"phone,omitempty"`
	Address     identity.Address `json:"address"`
	Role        string           `json:"role"`
	RoleIDs     []uuid.UUID      `json:"role_ids,omitempty"`
}

// LoginResult bundles the issued tokens with the authenticated user
type LoginResult struct {
	Tokens *auth.TokenPair `json:"tokens"`
	User   UserInfo        `json:"user"`
}

// AuthService handles registration, login and token lifecycle
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService. blacklist may be nil, in which
// case logout is a no-op beyond token expiry.
func NewAuthService(userRepo identity.UserRepository, jwtService *auth.JWTService, blacklist auth.TokenBlacklist, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// Register creates a new active account with the default role tag
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Username is already taken")
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Email is already registered")
	}

	user, err := identity.NewUser(req.Username, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)
	info := toUserInfo(user)
	return &info, nil
}

// Login authenticates by username or email and issues a token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Identifier)
	if err != nil && err != shared.ErrNotFound {
		return nil, err
	}
	if user == nil {
		user, err = s.userRepo.FindByEmail(ctx, req.Identifier)
		if err != nil && err != shared.ErrNotFound {
			return nil, err
		}
	}
	if user == nil || !user.VerifyPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, shared.NewDomainError("FORBIDDEN", "Account is disabled")
	}

	tokens, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	return &LoginResult{Tokens: tokens, User: toUserInfo(user)}, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The user is
// re-read so a disabled account cannot keep refreshing.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, shared.NewDomainError("UNAUTHENTICATED", "Invalid refresh token")
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("UNAUTHENTICATED", "Invalid refresh token")
	}

	// A token for a deleted account looks the same as a bad token from the
	// outside.
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("UNAUTHENTICATED", "Invalid refresh token")
		}
		return nil, err
	}
	if user == nil || !user.IsActive() {
		return nil, shared.NewDomainError("FORBIDDEN", "Account is disabled")
	}

	tokens, err := s.jwtService.RefreshTokenPair(refreshToken, user.Username, string(user.Role))
	if err != nil {
		if err == auth.ErrMaxRefreshExceeded {
			return nil, shared.NewDomainError("UNAUTHENTICATED", "Session expired, please log in again")
		}
		return nil, shared.NewDomainError("UNAUTHENTICATED", "Invalid refresh token")
	}
	return tokens, nil
}

// Logout revokes the presented access token until it would have expired
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil || claims == nil || claims.ID == "" {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Error("Failed to blacklist token on logout",
			zap.String("user_id", claims.UserID),
			zap.Error(err),
		)
		return shared.ErrUnavailable
	}
	return nil
}

// GetProfile returns the user's own profile
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, shared.ErrNotFound
	}
	info := toUserInfo(user)
	return &info, nil
}

func toUserInfo(user *identity.User) UserInfo {
	return UserInfo{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Phone:       user.Phone,
		Address:     user.Address,
		Role:        string(user.Role),
		RoleIDs:     user.RoleIDs,
	}
}
