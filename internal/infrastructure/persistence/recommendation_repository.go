package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/recommendation"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormRecommendationRepository implements recommendation.Repository using gorm
type GormRecommendationRepository struct {
	db *gorm.DB
}

// NewGormRecommendationRepository creates a new GormRecommendationRepository
func NewGormRecommendationRepository(db *gorm.DB) *GormRecommendationRepository {
	return &GormRecommendationRepository{db: db}
}

var _ recommendation.Repository = (*GormRecommendationRepository)(nil)

// FindByID finds a recommendation by ID
func (r *GormRecommendationRepository) FindByID(ctx context.Context, id uuid.UUID) (*recommendation.Recommendation, error) {
	var rec recommendation.Recommendation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// FindAll returns recommendations matching the filter, newest first by default
func (r *GormRecommendationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]recommendation.Recommendation, error) {
	var recs []recommendation.Recommendation
	query := r.applyFilter(r.db.WithContext(ctx).Model(&recommendation.Recommendation{}), filter)
	query = applyOrderAndPagination(query, filter)
	if err := query.Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// Count returns the number of recommendations matching the filter
func (r *GormRecommendationRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&recommendation.Recommendation{}), filter)
	err := query.Count(&count).Error
	return count, err
}

// Save persists a recommendation
func (r *GormRecommendationRepository) Save(ctx context.Context, rec *recommendation.Recommendation) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

// Delete removes a recommendation
func (r *GormRecommendationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&recommendation.Recommendation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormRecommendationRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "user_id":
			query = query.Where("user_id = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		}
	}
	return query
}
