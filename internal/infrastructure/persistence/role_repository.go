package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRoleRepository implements identity.RoleRepository using gorm
type GormRoleRepository struct {
	db *gorm.DB
}

// NewGormRoleRepository creates a new GormRoleRepository
func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

var _ identity.RoleRepository = (*GormRoleRepository)(nil)

// FindByID finds a role by ID with its permission set attached
func (r *GormRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Role, error) {
	var model models.RoleModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	role := model.ToDomain()
	if err := r.loadPermissions(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// FindByIDs returns the roles whose IDs exist; unknown IDs are skipped
func (r *GormRoleRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]identity.Role, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []models.RoleModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}

	roleIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		roleIDs = append(roleIDs, row.ID)
	}

	var permRows []models.RolePermissionModel
	if len(roleIDs) > 0 {
		if err := r.db.WithContext(ctx).Where("role_id IN ?", roleIDs).Find(&permRows).Error; err != nil {
			return nil, err
		}
	}
	permsByRole := make(map[uuid.UUID][]identity.Permission, len(roleIDs))
	for _, row := range permRows {
		permsByRole[row.RoleID] = append(permsByRole[row.RoleID], identity.Permission{
			Resource: row.Resource,
			Action:   row.Action,
		})
	}

	roles := make([]identity.Role, 0, len(rows))
	for i := range rows {
		role := rows[i].ToDomain()
		role.Permissions = permsByRole[role.ID]
		roles = append(roles, *role)
	}
	return roles, nil
}

// FindByName finds a role by its unique name
func (r *GormRoleRepository) FindByName(ctx context.Context, name string) (*identity.Role, error) {
	var model models.RoleModel
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(name)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	role := model.ToDomain()
	if err := r.loadPermissions(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// FindAll returns roles matching the filter
func (r *GormRoleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Role, error) {
	var rows []models.RoleModel
	query := r.db.WithContext(ctx).Model(&models.RoleModel{})
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	query = applyOrderAndPagination(query, filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	roles := make([]identity.Role, 0, len(rows))
	for i := range rows {
		role := rows[i].ToDomain()
		if err := r.loadPermissions(ctx, role); err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}
	return roles, nil
}

// Count returns the number of roles matching the filter
func (r *GormRoleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.RoleModel{})
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	err := query.Count(&count).Error
	return count, err
}

// Save persists the role and synchronizes its permission rows in one
// transaction.
func (r *GormRoleRepository) Save(ctx context.Context, role *identity.Role) error {
	model := models.RoleModelFromDomain(role)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", role.ID).Delete(&models.RolePermissionModel{}).Error; err != nil {
			return err
		}
		for _, p := range role.Permissions {
			if p.IsEmpty() {
				continue
			}
			row := models.RolePermissionModel{
				RoleID:   role.ID,
				Resource: p.Resource,
				Action:   p.Action,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a role, its permission rows and its user assignments
func (r *GormRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermissionModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&models.UserRoleModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.RoleModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormRoleRepository) loadPermissions(ctx context.Context, role *identity.Role) error {
	var rows []models.RolePermissionModel
	if err := r.db.WithContext(ctx).Where("role_id = ?", role.ID).Find(&rows).Error; err != nil {
		return err
	}
	perms := make([]identity.Permission, 0, len(rows))
	for _, row := range rows {
		perms = append(perms, identity.Permission{Resource: row.Resource, Action: row.Action})
	}
	role.Permissions = perms
	return nil
}

// applyOrderAndPagination applies ordering and pagination from a filter,
// whitelisting the order column to avoid SQL injection through OrderBy.
func applyOrderAndPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := filter.OrderBy
	switch orderBy {
	case "created_at", "updated_at", "name", "username", "email", "status", "total_amount":
	default:
		orderBy = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		dir = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", orderBy, dir))

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}
