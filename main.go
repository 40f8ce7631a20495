package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"restaurant-orders-api/config"
	"restaurant-orders-api/handlers"
	"restaurant-orders-api/middleware"
	"restaurant-orders-api/routes"
	"restaurant-orders-api/service"
	"restaurant-orders-api/statemachine"
	"restaurant-orders-api/store"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	gin.SetMode(cfg.GinMode)

	db, err := config.OpenDB(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}

	orderStore := store.NewGormStore(db)
	orders := service.NewOrders(orderStore, statemachine.Default, log)
	auth := middleware.NewAuth([]byte(cfg.JWTSecret), cfg.JWTTTL)

	r := gin.Default()

	// CORS middleware for frontend integration
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Ops-Token")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Restaurant Orders API",
			"version": "1.0.0",
		})
	})

	routes.Setup(r, routes.Deps{
		Auth:     auth,
		OpsToken: cfg.OpsToken,
		Accounts: handlers.NewAuthHandler(db, auth),
		Orders:   handlers.NewOrderHandler(orders, cfg),
		Kitchen:  handlers.NewKitchenHandler(orders, statemachine.Default),
	})

	log.WithField("port", cfg.Port).Info("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
