package recommendation

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

const (
	MinScore = 0.0
	MaxScore = 1.0
)

// Recommendation scores how strongly a product should be surfaced to a user.
// Rows are produced by offline scoring and curated by staff; nothing in the
// request path writes them.
type Recommendation struct {
	shared.BaseAggregateRoot
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Score     float64   `gorm:"not null"`
}

// NewRecommendation creates a validated recommendation
func NewRecommendation(userID, productID uuid.UUID, score float64) (*Recommendation, error) {
	if userID == uuid.Nil || productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "User ID and product ID are required")
	}
	if err := validateScore(score); err != nil {
		return nil, err
	}
	return &Recommendation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		ProductID:         productID,
		Score:             score,
	}, nil
}

// SetScore updates the score after range validation
func (r *Recommendation) SetScore(score float64) error {
	if err := validateScore(score); err != nil {
		return err
	}
	r.Score = score
	return nil
}

// Reassign points the recommendation at a different user/product pair
func (r *Recommendation) Reassign(userID, productID uuid.UUID) error {
	if userID == uuid.Nil || productID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "User ID and product ID are required")
	}
	r.UserID = userID
	r.ProductID = productID
	return nil
}

func validateScore(score float64) error {
	if score < MinScore || score > MaxScore {
		return shared.NewDomainError("INVALID_INPUT", "Score must be between 0 and 1")
	}
	return nil
}
