package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	identityapp "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// ProductHandler handles catalog API endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	authz          *identityapp.AuthorizationService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService, authz *identityapp.AuthorizationService) *ProductHandler {
	return &ProductHandler{productService: productService, authz: authz}
}

// RegisterRoutes registers product endpoints on the given group
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	products.GET("", h.List)
	products.GET("/:id", h.Get)
	products.POST("",
		middleware.RequirePermission(h.authz, identity.ResourceProduct+":"+identity.ActionCreate),
		h.Create)
	products.DELETE("/:id",
		middleware.RequirePermission(h.authz, identity.ResourceProduct+":"+identity.ActionDelete),
		h.Delete)
}

// CreateProductRequest represents a request to add a product
type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=200"`
	Description string  `json:"description" binding:"max=2000"`
	Price       float64 `json:"price" binding:"gte=0"`
	Stock       int     `json:"stock" binding:"gte=0"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Price         float64   `json:"price"`
	Stock         int       `json:"stock"`
	Status        string    `json:"status"`
	AverageRating float64   `json:"average_rating"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Create adds a product to the catalog
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.productService.Create(c.Request.Context(), catalogapp.CreateProductRequest{
		Name:        req.Name,
		Description: req.Description,
		Price:       decimal.NewFromFloat(req.Price),
		Stock:       req.Stock,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toProductResponse(product))
}

// Get returns a product by ID
func (h *ProductHandler) Get(c *gin.Context) {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	product, err := h.productService.Get(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(product))
}

// List returns products matching the filter
func (h *ProductHandler) List(c *gin.Context) {
	req, err := bindListRequest(c)
	if err != nil {
		h.BindError(c, err)
		return
	}

	filter := toFilter(req)
	if status := c.Query("status"); status != "" {
		filter.Filters = map[string]any{"status": status}
	}

	page, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]ProductResponse, 0, len(page.Items))
	for i := range page.Items {
		responses = append(responses, toProductResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, responses, page.Total, req.Page, req.PageSize)
}

// Delete removes a product
func (h *ProductHandler) Delete(c *gin.Context) {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	if err := h.productService.Delete(c.Request.Context(), productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func toProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price.InexactFloat64(),
		Stock:         p.Stock,
		Status:        string(p.Status),
		AverageRating: p.AverageRating,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
