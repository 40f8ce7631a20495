package routes

import (
	"github.com/gin-gonic/gin"

	"restaurant-orders-api/handlers"
	"restaurant-orders-api/middleware"
)

// Deps bundles everything route registration needs.
type Deps struct {
	Auth     *middleware.Auth
	OpsToken string
	Accounts *handlers.AuthHandler
	Orders   *handlers.OrderHandler
	Kitchen  *handlers.KitchenHandler
}

func Setup(r *gin.Engine, d Deps) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/register", d.Accounts.Register)
		public.POST("/auth/login", d.Accounts.Login)

		// State machine info (great for docs/Postman)
		public.GET("/state-machine", d.Kitchen.GetStateMachineInfo)
	}

	// ── Customer routes ────────────────────────────────────────────
	// Checkout, tracking and cancellation accept guests, so auth is
	// optional; the order history needs an account.
	customer := r.Group("/api")
	customer.Use(d.Auth.Optional())
	{
		customer.POST("/orders", d.Orders.PlaceOrder)
		customer.GET("/orders/:id", d.Orders.GetOrderDetail)
		customer.PUT("/orders/:id/cancel", d.Orders.CancelOrder)
	}

	account := r.Group("/api")
	account.Use(d.Auth.Required())
	{
		account.GET("/profile", d.Accounts.GetProfile)
		account.GET("/orders", d.Orders.GetMyOrders)
	}

	// ── Operations routes (kitchen/dispatch) ───────────────────────
	ops := r.Group("/api/ops")
	ops.Use(middleware.OpsTokenRequired(d.OpsToken))
	{
		ops.GET("/orders", d.Kitchen.GetOrders)
		ops.PUT("/orders/:id/status", d.Kitchen.UpdateOrderStatus)
	}
}
