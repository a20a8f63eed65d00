package review

import (
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is one user's rating of one product. The (UserID, ProductID) pair is
// unique; a second submission updates the existing row.
type Review struct {
	shared.BaseAggregateRoot
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_product"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_product;index"`
	Rating    int       `gorm:"not null"`
	Comment   string    `gorm:"size:2000"`
}

// NewReview creates a validated review
func NewReview(userID, productID uuid.UUID, rating int, comment string) (*Review, error) {
	if userID == uuid.Nil || productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "User ID and product ID are required")
	}
	if err := validateRating(rating); err != nil {
		return nil, err
	}
	return &Review{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		ProductID:         productID,
		Rating:            rating,
		Comment:           strings.TrimSpace(comment),
	}, nil
}

// SetRating updates the rating after range validation
func (r *Review) SetRating(rating int) error {
	if err := validateRating(rating); err != nil {
		return err
	}
	r.Rating = rating
	return nil
}

// SetComment replaces the comment text
func (r *Review) SetComment(comment string) {
	r.Comment = strings.TrimSpace(comment)
}

// IsAuthor reports whether the given user wrote this review
func (r *Review) IsAuthor(userID uuid.UUID) bool {
	return r.UserID == userID
}

func validateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return shared.NewDomainError("INVALID_INPUT", "Rating must be between 1 and 5")
	}
	return nil
}
