package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/review"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormReviewRepository implements review.Repository using gorm
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

var _ review.Repository = (*GormReviewRepository)(nil)

// FindByID finds a review by ID
func (r *GormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	var rev review.Review
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rev).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rev, nil
}

// FindByUserAndProduct finds the single review a user wrote for a product
func (r *GormReviewRepository) FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*review.Review, error) {
	var rev review.Review
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&rev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rev, nil
}

// FindByProduct returns a product's reviews, newest first by default
func (r *GormReviewRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]review.Review, error) {
	var reviews []review.Review
	query := r.db.WithContext(ctx).Where("product_id = ?", productID)
	query = applyOrderAndPagination(query, filter)
	if err := query.Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// CountByProduct returns the number of reviews for a product
func (r *GormReviewRepository) CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&review.Review{}).
		Where("product_id = ?", productID).
		Count(&count).Error
	return count, err
}

// Save persists a review
func (r *GormReviewRepository) Save(ctx context.Context, rev *review.Review) error {
	return r.db.WithContext(ctx).Save(rev).Error
}

// Delete removes a review
func (r *GormReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&review.Review{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AverageRatingByProduct computes the mean rating in one aggregate query,
// returning 0 when the product has no reviews
func (r *GormReviewRepository) AverageRatingByProduct(ctx context.Context, productID uuid.UUID) (float64, error) {
	var average float64
	err := r.db.WithContext(ctx).Model(&review.Review{}).
		Select("COALESCE(AVG(rating), 0)").
		Where("product_id = ?", productID).
		Scan(&average).Error
	if err != nil {
		return 0, err
	}
	return average, nil
}
