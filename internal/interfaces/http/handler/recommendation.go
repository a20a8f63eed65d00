package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/storefront/backend/internal/application/identity"
	recommendationapp "github.com/storefront/backend/internal/application/recommendation"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/recommendation"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// RecommendationHandler handles curated product recommendation endpoints
type RecommendationHandler struct {
	BaseHandler
	recommendationService *recommendationapp.Service
	authz                 *identityapp.AuthorizationService
}

// NewRecommendationHandler creates a new RecommendationHandler
func NewRecommendationHandler(recommendationService *recommendationapp.Service, authz *identityapp.AuthorizationService) *RecommendationHandler {
	return &RecommendationHandler{recommendationService: recommendationService, authz: authz}
}

// RegisterRoutes registers recommendation endpoints on the given group.
// Reads are open to any authenticated user; curation is a manager task.
func (h *RecommendationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	recs := rg.Group("/recommendations")
	recs.GET("", h.List)
	recs.GET("/:id", h.Get)

	manage := recs.Group("", middleware.RequireRole(h.authz, string(identity.AccountRoleManager)))
	manage.POST("", h.Create)
	manage.PUT("/:id", h.Update)
	manage.DELETE("/:id", h.Delete)
}

// RecommendationRequest carries the full target state of a recommendation
type RecommendationRequest struct {
	UserID    string  `json:"user_id" binding:"required,uuid"`
	ProductID string  `json:"product_id" binding:"required,uuid"`
	Score     float64 `json:"score" binding:"gte=0,lte=1"`
}

// RecommendationResponse represents a recommendation in API responses
type RecommendationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// List returns recommendations, newest first
func (h *RecommendationHandler) List(c *gin.Context) {
	req, err := bindListRequest(c)
	if err != nil {
		h.BindError(c, err)
		return
	}

	filter := toFilter(req)
	filters := map[string]any{}
	if userID := c.Query("user_id"); userID != "" {
		filters["user_id"] = userID
	}
	if productID := c.Query("product_id"); productID != "" {
		filters["product_id"] = productID
	}
	if len(filters) > 0 {
		filter.Filters = filters
	}

	page, err := h.recommendationService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]RecommendationResponse, 0, len(page.Items))
	for i := range page.Items {
		responses = append(responses, toRecommendationResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, responses, page.Total, req.Page, req.PageSize)
}

// Get returns a recommendation by ID
func (h *RecommendationHandler) Get(c *gin.Context) {
	recID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid recommendation ID format")
		return
	}

	rec, err := h.recommendationService.Get(c.Request.Context(), recID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toRecommendationResponse(rec))
}

// Create stores a new recommendation
func (h *RecommendationHandler) Create(c *gin.Context) {
	var req RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	in, err := toRecommendationInput(req)
	if err != nil {
		h.BadRequest(c, "Invalid user or product ID format")
		return
	}

	rec, err := h.recommendationService.Create(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toRecommendationResponse(rec))
}

// Update replaces a recommendation's target pair and score
func (h *RecommendationHandler) Update(c *gin.Context) {
	recID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid recommendation ID format")
		return
	}

	var req RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	in, err := toRecommendationInput(req)
	if err != nil {
		h.BadRequest(c, "Invalid user or product ID format")
		return
	}

	rec, err := h.recommendationService.Update(c.Request.Context(), recID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toRecommendationResponse(rec))
}

// Delete removes a recommendation
func (h *RecommendationHandler) Delete(c *gin.Context) {
	recID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid recommendation ID format")
		return
	}

	if err := h.recommendationService.Delete(c.Request.Context(), recID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func toRecommendationInput(req RecommendationRequest) (recommendationapp.Input, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return recommendationapp.Input{}, err
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return recommendationapp.Input{}, err
	}
	return recommendationapp.Input{UserID: userID, ProductID: productID, Score: req.Score}, nil
}

func toRecommendationResponse(r *recommendation.Recommendation) RecommendationResponse {
	return RecommendationResponse{
		ID:        r.ID.String(),
		UserID:    r.UserID.String(),
		ProductID: r.ProductID.String(),
		Score:     r.Score,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
