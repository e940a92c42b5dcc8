package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/apperr"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/idempotency"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/models"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/notify"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/service"
)

// ReplayHeader is set on responses served from a previously seen Idempotency-Key.
const ReplayHeader = "Idempotent-Replay"

type OrderHandler struct {
	orders *service.OrderService
	audit  *notify.AuditLogger
	stats  *notify.StatsCollector
	idem   idempotency.Store
	logger *zap.Logger
}

// NewOrderHandler wires the order endpoints. idem may be nil to disable
// Idempotency-Key handling.
func NewOrderHandler(orders *service.OrderService, audit *notify.AuditLogger, stats *notify.StatsCollector,
	idem idempotency.Store, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		audit:  audit,
		stats:  stats,
		idem:   idem,
		logger: logger,
	}
}

// ListOrders returns all orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	c.JSON(http.StatusOK, h.orders.ListOrders())
}

// GetOrder returns an order together with the active discount policy
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "order")
	if !ok {
		return
	}

	details, err := h.orders.GetOrderDetails(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// CreateOrder creates a new order. A repeated Idempotency-Key returns the
// order the first request created; a retry that arrives while the first is
// still running gets 409 and creates nothing.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	key := ""
	if h.idem != nil {
		key = idempotency.Key(c.Request)
	}

	if key != "" {
		id, claimed, err := h.idem.Claim(ctx, key)
		if err != nil {
			respondError(c, err)
			return
		}
		if !claimed {
			if id == idempotency.Pending {
				respondError(c, fmt.Errorf("order for %s %q is still being created: %w",
					idempotency.Header, key, apperr.ErrInvalidState))
				return
			}
			h.replay(c, id)
			return
		}
	}

	order, err := h.orders.CreateOrder(ctx, req)
	if key != "" {
		// the client may have gone away; the key must still settle
		settleCtx := context.WithoutCancel(ctx)
		if err != nil {
			if rerr := h.idem.Release(settleCtx, key); rerr != nil {
				h.logger.Warn("⚠️ Failed to release idempotency key", zap.String("key", key), zap.Error(rerr))
			}
		} else if cerr := h.idem.Complete(settleCtx, key, order.ID); cerr != nil {
			h.logger.Warn("⚠️ Failed to record idempotency key", zap.String("key", key), zap.Error(cerr))
		}
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) replay(c *gin.Context, id int64) {
	order, err := h.orders.GetOrder(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header(ReplayHeader, "true")
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus updates the order status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "order")
	if !ok {
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.UpdateOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CancelOrder cancels a pending or processing order and restocks its items
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, ok := parseID(c, "order")
	if !ok {
		return
	}

	order, err := h.orders.CancelOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.orders.Stats())
}

// AuditLog returns the audit trail, optionally filtered by ?type
func (h *OrderHandler) AuditLog(c *gin.Context) {
	entries := h.audit.Entries()
	if typ := c.Query("type"); typ != "" {
		entries = h.audit.EntriesByType(models.EventType(typ))
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (h *OrderHandler) RealtimeStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.stats.Snapshot())
}
