package recommendation

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/recommendation"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Input holds the full target state of a recommendation. Updates replace the
// whole row, mirroring how the curation tooling submits them.
type Input struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Score     float64
}

// Service manages curated product recommendations
type Service struct {
	repo   recommendation.Repository
	logger *zap.Logger
}

// NewService creates a new recommendation Service
func NewService(repo recommendation.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Create stores a new recommendation
func (s *Service) Create(ctx context.Context, in Input) (*recommendation.Recommendation, error) {
	rec, err := recommendation.NewRecommendation(in.UserID, in.ProductID, in.Score)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.Info("Recommendation created",
		zap.String("recommendation_id", rec.ID.String()),
		zap.String("user_id", rec.UserID.String()),
		zap.String("product_id", rec.ProductID.String()),
	)
	return rec, nil
}

// Get returns a recommendation by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*recommendation.Recommendation, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, shared.ErrNotFound
	}
	return rec, nil
}

// List returns recommendations matching the filter, newest first by default
func (s *Service) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[recommendation.Recommendation], error) {
	recs, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(recs, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Update replaces the recommendation's target pair and score
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*recommendation.Recommendation, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rec.Reassign(in.UserID, in.ProductID); err != nil {
		return nil, err
	}
	if err := rec.SetScore(in.Score); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes a recommendation
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Recommendation deleted", zap.String("recommendation_id", id.String()))
	return nil
}
