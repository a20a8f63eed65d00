package identity

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// AccountRole is the coarse role tag carried on the user record itself.
// It is checked before any fine-grained role resolution happens.
type AccountRole string

const (
	AccountRoleUser    AccountRole = "user"
	AccountRoleAdmin   AccountRole = "admin"
	AccountRoleManager AccountRole = "manager"
)

// IsValid checks whether the tag is a known value
func (r AccountRole) IsValid() bool {
	switch r {
	case AccountRoleUser, AccountRoleAdmin, AccountRoleManager:
		return true
	}
	return false
}

// UserStatus represents the lifecycle state of a user account
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,30}$`)
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Address holds the structured shipping address on a user profile
type Address struct {
	Street  string `gorm:"size:255" json:"street"`
	City    string `gorm:"size:100" json:"city"`
	State   string `gorm:"size:100" json:"state"`
	Country string `gorm:"size:100" json:"country"`
	Zip     string `gorm:"size:20" json:"zip"`
}

// User is the identity aggregate. PasswordHash is never serialized.
type User struct {
	shared.BaseAggregateRoot
	Username     string      `gorm:"size:30;not null;uniqueIndex"`
	Email        string      `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string      `gorm:"size:255;not null" json:"-"`
	DisplayName  string      `gorm:"size:100"`
	Phone        string      `gorm:"size:30"`
	Address      Address     `gorm:"embedded;embeddedPrefix:address_"`
	Role         AccountRole `gorm:"size:20;not null;default:'user'"`
	Status       UserStatus  `gorm:"size:20;not null;default:'active'"`
	RoleIDs      []uuid.UUID `gorm:"-"`
}

// NewUser creates an active user with a hashed password and the default tag
func NewUser(username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		Email:             email,
		PasswordHash:      string(hash),
		DisplayName:       username,
		Role:              AccountRoleUser,
		Status:            UserStatusActive,
	}, nil
}

// VerifyPassword compares a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword verifies the old password before setting a new one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_INPUT", "Current password is incorrect")
	}
	return u.SetPassword(newPassword)
}

// SetPassword hashes and stores a new password without verification
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// SetEmail updates the email, normalized to lowercase
func (u *User) SetEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return err
	}
	u.Email = email
	return nil
}

// SetRoleTag updates the coarse account role tag
func (u *User) SetRoleTag(role AccountRole) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Unknown account role")
	}
	u.Role = role
	return nil
}

// IsAdminTag reports whether the coarse tag alone grants admin access
func (u *User) IsAdminTag() bool {
	return u.Role == AccountRoleAdmin
}

// IsActive reports whether the account may authenticate
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Disable blocks the account from authenticating
func (u *User) Disable() {
	u.Status = UserStatusDisabled
}

// Activate re-enables the account
func (u *User) Activate() {
	u.Status = UserStatusActive
}

// AssignRole adds a fine-grained role, ignoring duplicates
func (u *User) AssignRole(roleID uuid.UUID) {
	for _, id := range u.RoleIDs {
		if id == roleID {
			return
		}
	}
	u.RoleIDs = append(u.RoleIDs, roleID)
}

// RemoveRole detaches a fine-grained role
func (u *User) RemoveRole(roleID uuid.UUID) {
	kept := u.RoleIDs[:0]
	for _, id := range u.RoleIDs {
		if id != roleID {
			kept = append(kept, id)
		}
	}
	u.RoleIDs = kept
}

// SetRoles replaces the role assignments, dropping duplicates
func (u *User) SetRoles(roleIDs []uuid.UUID) {
	seen := make(map[uuid.UUID]struct{}, len(roleIDs))
	result := make([]uuid.UUID, 0, len(roleIDs))
	for _, id := range roleIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	u.RoleIDs = result
}

// UpdateProfile sets the mutable profile fields
func (u *User) UpdateProfile(displayName, phone string, address Address) {
	if displayName != "" {
		u.DisplayName = displayName
	}
	u.Phone = phone
	u.Address = address
}

func validateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_INPUT", "Username must be 3-30 characters (letters, digits, '_', '.', '-')")
	}
	return nil
}

func validateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_INPUT", "Invalid email address")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return shared.NewDomainError("INVALID_INPUT", "Password must be at least 6 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_INPUT", "Password must be at most 72 characters")
	}
	return nil
}
