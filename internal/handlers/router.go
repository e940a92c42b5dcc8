package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/metrics"
)

// NewRouter registers every route of the order service. m may be nil.
func NewRouter(service string, products *ProductHandler, orders *OrderHandler, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	if m != nil {
		router.Use(m.Middleware())
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": service})
	})

	router.GET("/products", products.ListProducts)
	router.GET("/products/low-stock", products.LowStock)
	router.GET("/products/stats", products.Stats)
	router.GET("/products/:id", products.GetProduct)
	router.POST("/products", products.CreateProduct)
	router.PATCH("/products/:id", products.UpdateProduct)
	router.DELETE("/products/:id", products.DeleteProduct)

	router.GET("/orders", orders.ListOrders)
	router.POST("/orders", orders.CreateOrder)
	router.GET("/orders/stats", orders.Stats)
	router.GET("/orders/audit-log", orders.AuditLog)
	router.GET("/orders/realtime-stats", orders.RealtimeStats)
	router.GET("/orders/:id", orders.GetOrder)
	router.PATCH("/orders/:id/status", orders.UpdateOrderStatus)
	router.POST("/orders/:id/cancel", orders.CancelOrder)

	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
