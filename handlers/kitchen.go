package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"restaurant-orders-api/models"
	"restaurant-orders-api/service"
	"restaurant-orders-api/statemachine"
)

// KitchenHandler is the operations-side surface: the kitchen and dispatch
// systems advance order status through it. Customers never hit these routes.
type KitchenHandler struct {
	orders  *service.Orders
	machine statemachine.Machine
}

func NewKitchenHandler(orders *service.Orders, machine statemachine.Machine) *KitchenHandler {
	return &KitchenHandler{orders: orders, machine: machine}
}

// GetOrders returns all orders for the kitchen dashboard, optionally
// filtered by status, with a per-status summary.
func (h *KitchenHandler) GetOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(models.OrderStatus(c.Query("status")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}

	summary := map[string]int{}
	for _, o := range orders {
		summary[string(o.Status)]++
	}

	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"count":         len(orders),
		"orders":        orders,
	})
}

type UpdateOrderStatusRequest struct {
	Status            models.OrderStatus `json:"status" binding:"required,oneof=pending preparing delivering completed cancelled"`
	EstimatedDelivery *time.Time         `json:"estimated_delivery"`
	CurrentLocation   string             `json:"current_location"`
}

// UpdateOrderStatus applies an operations-originated transition, optionally
// setting the delivery estimate and the courier's current location.
func (h *KitchenHandler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	order, found, err := h.orders.GetOrder(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	applied, err := h.orders.AdvanceStatus(id, req.Status, &service.StatusExtra{
		EstimatedDelivery: req.EstimatedDelivery,
		CurrentLocation:   req.CurrentLocation,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}
	if !applied {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":             "Invalid state transition",
			"current_status":    order.Status,
			"requested":         req.Status,
			"valid_next_states": h.machine.ValidTransitionsFrom(order.Status, order.DeliveryType),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Order status updated",
		"order_id":        id,
		"previous_status": order.Status,
		"current_status":  req.Status,
	})
}

// GetStateMachineInfo returns the full transition table for informational
// purposes.
func (h *KitchenHandler) GetStateMachineInfo(c *gin.Context) {
	info := make([]gin.H, 0)
	for _, t := range statemachine.AllTransitions() {
		entry := gin.H{"from": t.From, "to": t.To}
		if t.Only != "" {
			entry["only"] = t.Only
		}
		info = append(info, entry)
	}
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   info,
		"terminal_states": []models.OrderStatus{models.StatusCompleted, models.StatusCancelled},
		"description":     "Order Lifecycle State Machine",
	})
}
