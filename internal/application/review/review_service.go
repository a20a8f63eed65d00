package review

import (
	"context"

	"github.com/google/uuid"
	identityapp "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/ordering"
	"github.com/storefront/backend/internal/domain/review"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Eligibility reasons surfaced to clients. The two ineligible cases are
// deliberately distinct.
const (
	ReasonEligible          = "eligible"
	ReasonNoCompletedOrders = "you have no completed orders"
	ReasonProductNotBought  = "none of your completed orders contains this product"
)

// Eligibility is the outcome of a review eligibility check
type Eligibility struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason"`
}

// UpsertReviewRequest holds input for submitting a review. A nil Comment
// leaves any existing comment unchanged.
type UpsertReviewRequest struct {
	Rating  int
	Comment *string
}

// UpdateReviewRequest is a partial update to an existing review
type UpdateReviewRequest struct {
	Rating  *int
	Comment *string
}

// Service implements review submission and rating aggregation. It is the
// sole writer of product average ratings.
type Service struct {
	reviewRepo  review.Repository
	orderRepo   ordering.OrderRepository
	productRepo catalog.ProductRepository
	authz       *identityapp.AuthorizationService
	logger      *zap.Logger
}

// NewService creates a new review Service
func NewService(
	reviewRepo review.Repository,
	orderRepo ordering.OrderRepository,
	productRepo catalog.ProductRepository,
	authz *identityapp.AuthorizationService,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		reviewRepo:  reviewRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		authz:       authz,
		logger:      logger,
	}
}

// CanReview reports whether the user may review the product: they need at
// least one completed order containing it. The two failure reasons are
// distinct so clients can explain what is missing.
func (s *Service) CanReview(ctx context.Context, userID, productID uuid.UUID) (Eligibility, error) {
	if userID == uuid.Nil {
		return Eligibility{}, shared.ErrUnauthenticated
	}
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return Eligibility{}, err
	}

	hasCompleted, err := s.orderRepo.HasCompletedOrder(ctx, userID)
	if err != nil {
		return Eligibility{}, err
	}
	if !hasCompleted {
		return Eligibility{Eligible: false, Reason: ReasonNoCompletedOrders}, nil
	}

	hasProduct, err := s.orderRepo.HasCompletedOrderWithProduct(ctx, userID, productID)
	if err != nil {
		return Eligibility{}, err
	}
	if !hasProduct {
		return Eligibility{Eligible: false, Reason: ReasonProductNotBought}, nil
	}

	return Eligibility{Eligible: true, Reason: ReasonEligible}, nil
}

// Upsert creates or updates the user's review of a product. At most one
// review per (user, product) pair exists; a second submission overwrites the
// rating and, when provided, the comment. The product average is recomputed
// synchronously afterwards.
func (s *Service) Upsert(ctx context.Context, userID, productID uuid.UUID, req UpsertReviewRequest) (*review.Review, error) {
	eligibility, err := s.CanReview(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !eligibility.Eligible {
		return nil, shared.NewDomainError("FORBIDDEN", "You can only review products from your completed orders: "+eligibility.Reason)
	}

	existing, err := s.reviewRepo.FindByUserAndProduct(ctx, userID, productID)
	if err != nil && err != shared.ErrNotFound {
		return nil, err
	}

	var r *review.Review
	if existing != nil {
		if err := existing.SetRating(req.Rating); err != nil {
			return nil, err
		}
		if req.Comment != nil {
			existing.SetComment(*req.Comment)
		}
		r = existing
	} else {
		comment := ""
		if req.Comment != nil {
			comment = *req.Comment
		}
		r, err = review.NewReview(userID, productID, req.Rating, comment)
		if err != nil {
			return nil, err
		}
	}

	if err := s.reviewRepo.Save(ctx, r); err != nil {
		return nil, err
	}

	s.recomputeAfterWrite(ctx, productID)
	return r, nil
}

// Update edits a review, restricted to its author or an admin
func (s *Service) Update(ctx context.Context, actorID, reviewID uuid.UUID, req UpdateReviewRequest) (*review.Review, error) {
	r, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeActor(ctx, actorID, r); err != nil {
		return nil, err
	}

	if req.Rating != nil {
		if err := r.SetRating(*req.Rating); err != nil {
			return nil, err
		}
	}
	if req.Comment != nil {
		r.SetComment(*req.Comment)
	}

	if err := s.reviewRepo.Save(ctx, r); err != nil {
		return nil, err
	}

	s.recomputeAfterWrite(ctx, r.ProductID)
	return r, nil
}

// Delete removes a review, restricted to its author or an admin
func (s *Service) Delete(ctx context.Context, actorID, reviewID uuid.UUID) error {
	r, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if err := s.authorizeActor(ctx, actorID, r); err != nil {
		return err
	}
	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return err
	}

	s.recomputeAfterWrite(ctx, r.ProductID)
	return nil
}

// ListForProduct returns a product's reviews
func (s *Service) ListForProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) (*shared.Paginated[review.Review], error) {
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return nil, err
	}
	reviews, err := s.reviewRepo.FindByProduct(ctx, productID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.reviewRepo.CountByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(reviews, total, filter.Page, filter.PageSize)
	return &result, nil
}

// RecomputeAverageRating recalculates the product's average from current
// reviews and writes it back. With no reviews the average is 0.
func (s *Service) RecomputeAverageRating(ctx context.Context, productID uuid.UUID) error {
	avg, err := s.reviewRepo.AverageRatingByProduct(ctx, productID)
	if err != nil {
		return err
	}
	return s.productRepo.UpdateAverageRating(ctx, productID, avg)
}

// recomputeAfterWrite runs the recompute after a successful review write.
// A failure here degrades the average until the next write but never rolls
// back the review itself.
func (s *Service) recomputeAfterWrite(ctx context.Context, productID uuid.UUID) {
	if err := s.RecomputeAverageRating(ctx, productID); err != nil {
		s.logger.Warn("Average rating recompute failed; review was saved",
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) loadReview(ctx context.Context, reviewID uuid.UUID) (*review.Review, error) {
	r, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, shared.ErrNotFound
	}
	return r, nil
}

func (s *Service) loadProduct(ctx context.Context, productID uuid.UUID) (*catalog.Product, error) {
	p, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (s *Service) authorizeActor(ctx context.Context, actorID uuid.UUID, r *review.Review) error {
	if actorID == uuid.Nil {
		return shared.ErrUnauthenticated
	}
	if r.IsAuthor(actorID) {
		return nil
	}
	isAdmin, err := s.authz.IsAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return shared.ErrForbidden
	}
	return nil
}
