package models

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
)

// UserModel is the database row for identity.User
type UserModel struct {
	BaseModel
	Username       string `gorm:"size:30;not null;uniqueIndex"`
	Email          string `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash   string `gorm:"size:255;not null"`
	DisplayName    string `gorm:"size:100"`
	Phone          string `gorm:"size:30"`
	AddressStreet  string `gorm:"size:255"`
	AddressCity    string `gorm:"size:100"`
	AddressState   string `gorm:"size:100"`
	AddressCountry string `gorm:"size:100"`
	AddressZip     string `gorm:"size:20"`
	Role           string `gorm:"size:20;not null;default:'user'"`
	Status         string `gorm:"size:20;not null;default:'active'"`
}

// TableName sets the table name for UserModel
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the row to a domain User. Role assignments are attached
// separately by the repository.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		DisplayName:  m.DisplayName,
		Phone:        m.Phone,
		Address: identity.Address{
			Street:  m.AddressStreet,
			City:    m.AddressCity,
			State:   m.AddressState,
			Country: m.AddressCountry,
			Zip:     m.AddressZip,
		},
		Role:   identity.AccountRole(m.Role),
		Status: identity.UserStatus(m.Status),
	}
}

// UserModelFromDomain converts a domain User to its database row
func UserModelFromDomain(u *identity.User) *UserModel {
	return &UserModel{
		BaseModel: BaseModel{
			ID:        u.ID,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
			Version:   u.Version,
		},
		Username:       u.Username,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		DisplayName:    u.DisplayName,
		Phone:          u.Phone,
		AddressStreet:  u.Address.Street,
		AddressCity:    u.Address.City,
		AddressState:   u.Address.State,
		AddressCountry: u.Address.Country,
		AddressZip:     u.Address.Zip,
		Role:           string(u.Role),
		Status:         string(u.Status),
	}
}

// UserRoleModel joins users to their fine-grained roles
type UserRoleModel struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// TableName sets the table name for UserRoleModel
func (UserRoleModel) TableName() string {
	return "user_roles"
}

// RoleModel is the database row for identity.Role
type RoleModel struct {
	BaseModel
	Name        string `gorm:"size:50;not null;uniqueIndex"`
	Description string `gorm:"size:255"`
	Enabled     bool   `gorm:"not null;default:true"`
}

// TableName sets the table name for RoleModel
func (RoleModel) TableName() string {
	return "roles"
}

// ToDomain converts the row to a domain Role. Permissions are attached
// separately by the repository.
func (m *RoleModel) ToDomain() *identity.Role {
	return &identity.Role{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Name:        m.Name,
		Description: m.Description,
		Enabled:     m.Enabled,
	}
}

// RoleModelFromDomain converts a domain Role to its database row
func RoleModelFromDomain(r *identity.Role) *RoleModel {
	return &RoleModel{
		BaseModel: BaseModel{
			ID:        r.ID,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			Version:   r.Version,
		},
		Name:        r.Name,
		Description: r.Description,
		Enabled:     r.Enabled,
	}
}

// RolePermissionModel stores one permission grant of a role
type RolePermissionModel struct {
	RoleID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Resource string    `gorm:"size:50;primaryKey"`
	Action   string    `gorm:"size:50;primaryKey"`
}

// TableName sets the table name for RolePermissionModel
func (RolePermissionModel) TableName() string {
	return "role_permissions"
}
