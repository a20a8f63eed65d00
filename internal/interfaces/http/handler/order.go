package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	identityapp "github.com/storefront/backend/internal/application/identity"
	orderapp "github.com/storefront/backend/internal/application/ordering"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/ordering"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// OrderHandler handles order ledger API endpoints
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.OrderService
	authz        *identityapp.AuthorizationService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.OrderService, authz *identityapp.AuthorizationService) *OrderHandler {
	return &OrderHandler{orderService: orderService, authz: authz}
}

// RegisterRoutes registers order endpoints on the given group
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	orders.POST("", h.Create)
	orders.GET("", h.ListMine)
	orders.GET("/all",
		middleware.RequirePermission(h.authz, identity.ResourceOrder+":"+identity.ActionList),
		h.ListAll)
	orders.GET("/best-sellers", h.BestSellers)
	orders.GET("/:id", h.Get)
	orders.PUT("/:id", h.Update)
	orders.DELETE("/:id", h.Delete)
	orders.POST("/:id/payments", h.RecordPayment)
	orders.GET("/:id/payments", h.ListPayments)
}

// ContactInfoInput represents the buyer-facing fields of an order
type ContactInfoInput struct {
	Email           string `json:"email" binding:"omitempty,email"`
	Phone           string `json:"phone" binding:"max=30"`
	ShippingAddress string `json:"shipping_address" binding:"max=500"`
	PaymentMethod   string `json:"payment_method" binding:"max=50"`
}

// OrderItemInput represents one requested line item
type OrderItemInput struct {
	ProductID   string  `json:"product_id" binding:"required,uuid"`
	ProductName string  `json:"product_name" binding:"required,min=1,max=200"`
	Quantity    int     `json:"quantity" binding:"required,min=1"`
	UnitPrice   float64 `json:"unit_price" binding:"required,gte=0"`
}

// CreateOrderRequest represents a request to create a new order
type CreateOrderRequest struct {
	Items   []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	Contact ContactInfoInput `json:"contact"`
}

// UpdateOrderRequest represents a partial order update. A non-nil items list
// replaces the line items wholesale.
type UpdateOrderRequest struct {
	Status  *string           `json:"status"`
	Contact *ContactInfoInput `json:"contact"`
	Items   []OrderItemInput  `json:"items" binding:"omitempty,min=1,dive"`
}

// RecordPaymentRequest represents a request to record a payment
type RecordPaymentRequest struct {
	Method string `json:"method" binding:"required,min=1,max=50"`
}

// OrderItemResponse represents a line item in API responses
type OrderItemResponse struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID          string              `json:"id"`
	OwnerID     string              `json:"owner_id"`
	Status      string              `json:"status"`
	Contact     ContactInfoInput    `json:"contact"`
	Items       []OrderItemResponse `json:"items"`
	ItemCount   int                 `json:"item_count"`
	TotalAmount float64             `json:"total_amount"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Version     int                 `json:"version"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductSalesResponse represents a best-seller entry
type ProductSalesResponse struct {
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	TotalQuantity int64  `json:"total_quantity"`
}

// Create creates a new order owned by the caller
func (h *OrderHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	items, err := toItemInputs(req.Items)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), userID, orderapp.CreateOrderRequest{
		Items:   items,
		Contact: toContactInfo(req.Contact),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toOrderResponse(order))
}

// Get returns a single order, restricted to its owner or an admin
func (h *OrderHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), userID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(order))
}

// ListMine returns the caller's orders, newest first
func (h *OrderHandler) ListMine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	req, err := bindListRequest(c)
	if err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.orderService.ListForOwner(c.Request.Context(), userID, toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]OrderResponse, 0, len(page.Items))
	for i := range page.Items {
		responses = append(responses, toOrderResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, responses, page.Total, req.Page, req.PageSize)
}

// ListAll returns all orders; gated behind the order:list permission
func (h *OrderHandler) ListAll(c *gin.Context) {
	req, err := bindListRequest(c)
	if err != nil {
		h.BindError(c, err)
		return
	}

	filter := toFilter(req)
	if status := c.Query("status"); status != "" {
		filter.Filters = map[string]any{"status": status}
	}

	page, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]OrderResponse, 0, len(page.Items))
	for i := range page.Items {
		responses = append(responses, toOrderResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, responses, page.Total, req.Page, req.PageSize)
}

// Update applies a partial update to an order
func (h *OrderHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	update := orderapp.UpdateOrderRequest{}
	if req.Status != nil {
		status := ordering.OrderStatus(*req.Status)
		update.Status = &status
	}
	if req.Contact != nil {
		contact := toContactInfo(*req.Contact)
		update.Contact = &contact
	}
	if req.Items != nil {
		items, err := toItemInputs(req.Items)
		if err != nil {
			h.BadRequest(c, "Invalid product ID format")
			return
		}
		update.Items = items
	}

	order, err := h.orderService.Update(c.Request.Context(), userID, orderID, update)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(order))
}

// Delete removes an order along with its items and payments
func (h *OrderHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), userID, orderID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RecordPayment records a pending payment covering the order total
func (h *OrderHandler) RecordPayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	payment, err := h.orderService.RecordPayment(c.Request.Context(), userID, orderID, req.Method)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toPaymentResponse(payment))
}

// ListPayments returns an order's payments
func (h *OrderHandler) ListPayments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	// Ownership check rides on Get
	if _, err := h.orderService.Get(c.Request.Context(), userID, orderID); err != nil {
		h.HandleError(c, err)
		return
	}

	payments, err := h.orderService.ListPayments(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, toPaymentResponse(&payments[i]))
	}
	h.Success(c, responses)
}

// BestSellers returns top products by quantity sold in completed orders
func (h *OrderHandler) BestSellers(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	sales, err := h.orderService.BestSellers(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]ProductSalesResponse, 0, len(sales))
	for _, s := range sales {
		responses = append(responses, ProductSalesResponse{
			ProductID:     s.ProductID.String(),
			ProductName:   s.ProductName,
			TotalQuantity: s.TotalQuantity,
		})
	}
	h.Success(c, responses)
}

func toItemInputs(inputs []OrderItemInput) ([]orderapp.OrderItemInput, error) {
	items := make([]orderapp.OrderItemInput, 0, len(inputs))
	for _, in := range inputs {
		productID, err := uuid.Parse(in.ProductID)
		if err != nil {
			return nil, err
		}
		items = append(items, orderapp.OrderItemInput{
			ProductID:   productID,
			ProductName: in.ProductName,
			Quantity:    in.Quantity,
			UnitPrice:   decimal.NewFromFloat(in.UnitPrice),
		})
	}
	return items, nil
}

func toContactInfo(in ContactInfoInput) ordering.ContactInfo {
	return ordering.ContactInfo{
		Email:           in.Email,
		Phone:           in.Phone,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
	}
}

func toOrderResponse(order *ordering.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:          item.ID.String(),
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.InexactFloat64(),
			Amount:      item.Amount().InexactFloat64(),
		})
	}
	return OrderResponse{
		ID:      order.ID.String(),
		OwnerID: order.OwnerID.String(),
		Status:  string(order.Status),
		Contact: ContactInfoInput{
			Email:           order.Contact.Email,
			Phone:           order.Contact.Phone,
			ShippingAddress: order.Contact.ShippingAddress,
			PaymentMethod:   order.Contact.PaymentMethod,
		},
		Items:       items,
		ItemCount:   order.ItemCount(),
		TotalAmount: order.TotalAmount.InexactFloat64(),
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
		Version:     order.Version,
	}
}

func toPaymentResponse(p *ordering.Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID.String(),
		OrderID:   p.OrderID.String(),
		Amount:    p.Amount.InexactFloat64(),
		Method:    p.Method,
		Status:    string(p.Status),
		Reference: p.Reference,
		CreatedAt: p.CreatedAt,
	}
}
