package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"restaurant-orders-api/config"
	"restaurant-orders-api/middleware"
	"restaurant-orders-api/models"
	"restaurant-orders-api/pix"
	"restaurant-orders-api/progress"
	"restaurant-orders-api/service"
)

// OrderHandler is the customer-facing surface over the order service.
type OrderHandler struct {
	orders *service.Orders
	cfg    config.Config
}

func NewOrderHandler(orders *service.Orders, cfg config.Config) *OrderHandler {
	return &OrderHandler{orders: orders, cfg: cfg}
}

type PlaceOrderRequest struct {
	Items []struct {
		Name         string  `json:"name" binding:"required"`
		UnitPrice    float64 `json:"unit_price" binding:"gte=0"`
		Quantity     int     `json:"quantity" binding:"required,min=1"`
		Observations string  `json:"observations"`
	} `json:"items" binding:"dive"`
	Total        float64             `json:"total" binding:"gte=0"`
	DeliveryType models.DeliveryType `json:"delivery_type" binding:"required,oneof=delivery pickup"`
	DeliveryInfo struct {
		Name       string `json:"name" binding:"required"`
		Phone      string `json:"phone" binding:"required"`
		Address    string `json:"address"`
		Complement string `json:"complement"`
		Time       string `json:"time" binding:"required"`
	} `json:"delivery_info" binding:"required"`
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"required,oneof=cash card pix"`
}

// PlaceOrder submits a finalized cart snapshot as a new order. For pix
// payments the response also carries the generated payment code.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]models.OrderLineItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, models.OrderLineItem{
			Name:         it.Name,
			UnitPrice:    it.UnitPrice,
			Quantity:     it.Quantity,
			Observations: it.Observations,
		})
	}

	id, err := h.orders.CreateOrder(service.CreateOrderInput{
		UserID:       middleware.GetUserID(c),
		Items:        items,
		Total:        req.Total,
		DeliveryType: req.DeliveryType,
		DeliveryInfo: models.DeliveryInfo{
			Name:       req.DeliveryInfo.Name,
			Phone:      req.DeliveryInfo.Phone,
			Address:    req.DeliveryInfo.Address,
			Complement: req.DeliveryInfo.Complement,
			Time:       req.DeliveryInfo.Time,
		},
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		switch {
		case isValidationErr(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
		}
		return
	}

	resp := gin.H{
		"message":  "Order placed successfully",
		"order_id": id,
	}
	if req.PaymentMethod == models.PaymentPix {
		resp["pix_code"] = pix.Payload(req.Total, h.cfg.MerchantName, h.cfg.MerchantCity)
	}
	c.JSON(http.StatusCreated, resp)
}

// GetMyOrders returns the logged-in customer's order history, newest first,
// each entry decorated with its projected progress.
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	userID := middleware.GetUserID(c)
	orders, err := h.orders.ListOrdersForUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}

	entries := make([]gin.H, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		entries = append(entries, gin.H{
			"order":          o,
			"display_number": o.DisplayNumber(),
			"progress":       progress.Project(o.Status, o.DeliveryType),
			"cancellable":    h.orders.Cancellable(o.Status),
		})
	}
	c.JSON(http.StatusOK, gin.H{"count": len(entries), "orders": entries})
}

// GetOrderDetail returns a single order with everything a tracking view
// needs: projection, display number, cancellability and the poll interval.
func (h *OrderHandler) GetOrderDetail(c *gin.Context) {
	order, ok := h.loadOwned(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":          order,
		"display_number": order.DisplayNumber(),
		"progress":       progress.Project(order.Status, order.DeliveryType),
		"cancellable":    h.orders.Cancellable(order.Status),
		"poll":           gin.H{"interval_ms": h.cfg.PollInterval.Milliseconds()},
	})
}

// CancelOrder handles customer-initiated cancellation. A refusal is reported
// as 422, not an error: the order is simply past the cancellable window.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	order, ok := h.loadOwned(c)
	if !ok {
		return
	}

	cancelled, err := h.orders.CancelOrder(order.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel order"})
		return
	}
	if !cancelled {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          "Cannot cancel order",
			"reason":         "the order may already be out for delivery",
			"current_status": order.Status,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "order_id": order.ID})
}

// loadOwned fetches the order from the path id and enforces ownership.
// Guest orders are claimable by whoever holds the id, matching the original
// behavior of guest checkout.
func (h *OrderHandler) loadOwned(c *gin.Context) (*models.Order, bool) {
	order, found, err := h.orders.GetOrder(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
		return nil, false
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return nil, false
	}
	if order.UserID != models.GuestUserID && order.UserID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return nil, false
	}
	return order, true
}

func isValidationErr(err error) bool {
	return errors.Is(err, service.ErrEmptyCart) ||
		errors.Is(err, service.ErrTotalMismatch) ||
		errors.Is(err, service.ErrMissingAddress)
}
