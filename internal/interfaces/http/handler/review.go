package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	reviewapp "github.com/storefront/backend/internal/application/review"
	"github.com/storefront/backend/internal/domain/review"
)

// ReviewHandler handles review and rating API endpoints
type ReviewHandler struct {
	BaseHandler
	reviewService *reviewapp.Service
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService *reviewapp.Service) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// RegisterRoutes registers review endpoints on the given group
func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products/:id/reviews")
	products.GET("", h.ListForProduct)
	products.POST("", h.Upsert)
	products.GET("/eligibility", h.Eligibility)

	reviews := rg.Group("/reviews")
	reviews.PUT("/:id", h.Update)
	reviews.DELETE("/:id", h.Delete)
}

// UpsertReviewRequest represents a review submission. Submitting again for
// the same product updates the existing review.
type UpsertReviewRequest struct {
	Rating  int     `json:"rating" binding:"required,min=1,max=5"`
	Comment *string `json:"comment" binding:"omitempty,max=2000"`
}

// UpdateReviewRequest represents a partial review update
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" binding:"omitempty,max=2000"`
}

// ReviewResponse represents a review in API responses
type ReviewResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Eligibility reports whether the caller may review the product, with a
// reason when they may not
func (h *ReviewHandler) Eligibility(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	productID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	eligibility, err := h.reviewService.CanReview(c.Request.Context(), userID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, eligibility)
}

// Upsert creates or updates the caller's review of a product
func (h *ReviewHandler) Upsert(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	productID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var req UpsertReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	r, err := h.reviewService.Upsert(c.Request.Context(), userID, productID, reviewapp.UpsertReviewRequest{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toReviewResponse(r))
}

// ListForProduct returns a product's reviews
func (h *ReviewHandler) ListForProduct(c *gin.Context) {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}
	req, err := bindListRequest(c)
	if err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.reviewService.ListForProduct(c.Request.Context(), productID, toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]ReviewResponse, 0, len(page.Items))
	for i := range page.Items {
		responses = append(responses, toReviewResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, responses, page.Total, req.Page, req.PageSize)
}

// Update edits a review, restricted to its author or an admin
func (h *ReviewHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	reviewID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid review ID format")
		return
	}

	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	r, err := h.reviewService.Update(c.Request.Context(), userID, reviewID, reviewapp.UpdateReviewRequest{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toReviewResponse(r))
}

// Delete removes a review, restricted to its author or an admin
func (h *ReviewHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	reviewID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid review ID format")
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), userID, reviewID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func toReviewResponse(r *review.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID.String(),
		UserID:    r.UserID.String(),
		ProductID: r.ProductID.String(),
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
