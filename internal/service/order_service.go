package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/apperr"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/db"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/discount"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/models"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/notify"
)

const tracerName = "minisys-orders/service"

// OrderService coordinates inventory, pricing, persistence and notifications
// for the order lifecycle.
type OrderService struct {
	products *db.ProductRepository
	orders   *db.OrderRepository
	bus      *notify.Bus

	mu     sync.RWMutex
	policy discount.Policy

	// transitions serialises read-modify-write of an existing order so two
	// concurrent cancellations cannot both restore stock.
	transitions sync.Mutex

	lowStockThreshold int
	logger            *zap.Logger
	tracer            trace.Tracer
}

type Option func(*OrderService)

func WithDiscountPolicy(p discount.Policy) Option {
	return func(s *OrderService) { s.policy = p }
}

func WithLowStockThreshold(n int) Option {
	return func(s *OrderService) {
		if n > 0 {
			s.lowStockThreshold = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *OrderService) { s.logger = l }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *OrderService) { s.tracer = t }
}

func NewOrderService(products *db.ProductRepository, orders *db.OrderRepository, bus *notify.Bus, opts ...Option) *OrderService {
	s := &OrderService{
		products:          products,
		orders:            orders,
		bus:               bus,
		policy:            discount.None(),
		lowStockThreshold: models.DefaultLowStockThreshold,
		logger:            zap.NewNop(),
		tracer:            otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetDiscountPolicy replaces the policy applied to subsequent orders.
func (s *OrderService) SetDiscountPolicy(p discount.Policy) {
	if p == nil {
		p = discount.None()
	}
	s.mu.Lock()
	s.policy = p
	s.mu.Unlock()
}

func (s *OrderService) DiscountPolicy() discount.Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy
}

// CreateOrder validates req, reserves stock for every line at once, prices the
// order and stores it. The request's discount selector, when present, prices
// this order only; otherwise the active policy applies.
//
// A low-stock event is published for each product left below the threshold,
// followed by one order.created event.
func (s *OrderService) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.create")
	defer span.End()
	span.SetAttributes(
		attribute.String("customer.id", req.CustomerID),
		attribute.Int("order.item_count", len(req.Items)),
	)

	policy, err := s.validateCreate(req)
	if err != nil {
		return nil, s.fail(span, "create order", err)
	}
	// a selector prices this order only; the active policy is left alone
	if policy == nil {
		policy = s.DiscountPolicy()
	}

	lines := make([]db.StockLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, db.StockLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	reserved, err := s.products.ReserveStock(lines)
	if err != nil {
		return nil, s.fail(span, "create order", err)
	}

	order := models.NewOrder(strings.TrimSpace(req.CustomerID), strings.TrimSpace(req.CustomerName))
	final := make(map[int64]models.Product, len(reserved))
	var touched []int64
	for i, p := range reserved {
		order.AddItem(p, lines[i].Quantity)
		if _, seen := final[p.ID]; !seen {
			touched = append(touched, p.ID)
		}
		final[p.ID] = p
	}

	for _, id := range touched {
		p := final[id]
		if p.Stock < s.lowStockThreshold {
			s.logger.Warn("⚠️ Low stock",
				zap.Int64("product_id", p.ID),
				zap.String("product", p.Name),
				zap.Int("stock", p.Stock),
			)
			s.bus.Publish(ctx, notify.NewEvent(models.EventProductLowStock, models.LowStockEvent{
				ProductID:   p.ID,
				ProductName: p.Name,
				Stock:       p.Stock,
				Threshold:   s.lowStockThreshold,
			}))
		}
	}

	order.ApplyDiscount(policy.Compute(order.Subtotal))
	created := s.orders.Create(*order)

	s.bus.Publish(ctx, notify.NewEvent(models.EventOrderCreated, models.OrderCreatedEvent{Order: *created}))

	span.SetAttributes(
		attribute.Int64("order.id", created.ID),
		attribute.String("order.total", created.Total.StringFixed(2)),
		attribute.String("discount.policy", policy.Describe()),
	)
	span.SetStatus(codes.Ok, "order created")
	s.logger.Info(fmt.Sprintf("✅ Order #%d created", created.ID),
		zap.String("customer_id", created.CustomerID),
		zap.String("subtotal", created.Subtotal.StringFixed(2)),
		zap.String("discount", created.Discount.StringFixed(2)),
		zap.String("total", created.Total.StringFixed(2)),
	)

	return created, nil
}

// validateCreate collects every problem with req. It returns the policy the
// request selected, or nil when it selected none.
func (s *OrderService) validateCreate(req models.CreateOrderRequest) (discount.Policy, error) {
	verr := &apperr.ValidationError{}

	if strings.TrimSpace(req.CustomerID) == "" {
		verr.Add("customer_id is required")
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		verr.Add("customer_name is required")
	}
	if len(req.Items) == 0 {
		verr.Add("items must not be empty")
	}
	for i, item := range req.Items {
		if item.ProductID <= 0 {
			verr.Add(fmt.Sprintf("items[%d]: product_id must be positive", i))
		}
		if item.Quantity <= 0 {
			verr.Add(fmt.Sprintf("items[%d]: quantity must be positive", i))
		}
	}

	var policy discount.Policy
	if req.Discount != nil {
		p, err := discount.FromSelector(*req.Discount)
		if err != nil {
			verr.Add(fmt.Sprintf("discount: %v", err))
		}
		policy = p
	}

	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}
	return policy, nil
}

// UpdateOrderStatus moves an order to status. Any of the known statuses is
// accepted regardless of the current one; only cancellation is gated.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.update_status")
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", id), attribute.String("order.requested_status", status))

	s.transitions.Lock()
	defer s.transitions.Unlock()

	order, ok := s.orders.GetByID(id)
	if !ok {
		return nil, s.fail(span, "update order status", orderNotFound(id))
	}
	newStatus, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, s.fail(span, "update order status", fmt.Errorf("%w: %w", err, apperr.ErrInvalidArgument))
	}

	oldStatus := order.Status
	order.Status = newStatus
	updated, err := s.orders.Update(id, *order)
	if err != nil {
		return nil, s.fail(span, "update order status", err)
	}

	s.bus.Publish(ctx, notify.NewEvent(models.EventOrderStatusChanged, models.OrderStatusChangedEvent{
		OrderID:   id,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Order:     *updated,
	}))

	span.SetStatus(codes.Ok, "status updated")
	s.logger.Info(fmt.Sprintf("🔄 Order #%d: %s → %s", id, oldStatus, newStatus))
	return updated, nil
}

// CancelOrder puts every item back on the shelf and marks the order CANCELLED.
// Items whose product has since been deleted are skipped.
func (s *OrderService) CancelOrder(ctx context.Context, id int64) (*models.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.cancel")
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", id))

	s.transitions.Lock()
	defer s.transitions.Unlock()

	order, ok := s.orders.GetByID(id)
	if !ok {
		return nil, s.fail(span, "cancel order", orderNotFound(id))
	}
	if !order.Status.CanCancel() {
		return nil, s.fail(span, "cancel order",
			fmt.Errorf("order %d is %s: %w", id, order.Status, apperr.ErrInvalidState))
	}

	for _, item := range order.Items {
		if _, ok := s.products.RestoreStock(item.ProductID, item.Quantity); !ok {
			s.logger.Warn("Product vanished, stock not restored",
				zap.Int64("order_id", id),
				zap.Int64("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
			)
		}
	}

	order.Status = models.OrderStatusCancelled
	updated, err := s.orders.Update(id, *order)
	if err != nil {
		return nil, s.fail(span, "cancel order", err)
	}

	s.bus.Publish(ctx, notify.NewEvent(models.EventOrderCancelled, models.OrderCancelledEvent{Order: *updated}))

	span.SetStatus(codes.Ok, "order cancelled")
	s.logger.Info(fmt.Sprintf("🚫 Order #%d cancelled", id), zap.Int("items_restored", len(order.Items)))
	return updated, nil
}

// GetOrderDetails returns the order together with a description of the
// currently active discount policy.
func (s *OrderService) GetOrderDetails(ctx context.Context, id int64) (*models.OrderDetails, error) {
	_, span := s.tracer.Start(ctx, "order.details")
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", id))

	order, ok := s.orders.GetByID(id)
	if !ok {
		return nil, s.fail(span, "get order details", orderNotFound(id))
	}
	return &models.OrderDetails{
		Order:          *order,
		DiscountPolicy: s.DiscountPolicy().Describe(),
	}, nil
}

func (s *OrderService) GetOrder(id int64) (*models.Order, error) {
	order, ok := s.orders.GetByID(id)
	if !ok {
		return nil, orderNotFound(id)
	}
	return order, nil
}

func (s *OrderService) ListOrders() []models.Order {
	return s.orders.GetAll()
}

// Stats counts orders per status and sums the totals of completed ones.
func (s *OrderService) Stats() models.OrderStats {
	stats := models.OrderStats{
		ByStatus:         make(map[models.OrderStatus]int, len(models.OrderStatuses)),
		CompletedRevenue: decimal.Zero,
	}
	for _, status := range models.OrderStatuses {
		stats.ByStatus[status] = 0
	}

	for _, o := range s.orders.GetAll() {
		stats.Total++
		stats.ByStatus[o.Status]++
		if o.Status == models.OrderStatusCompleted {
			stats.CompletedRevenue = stats.CompletedRevenue.Add(o.Total)
		}
	}
	return stats
}

func (s *OrderService) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.Info("Order operation rejected", zap.String("op", op), zap.Error(err))
	return err
}

func orderNotFound(id int64) error {
	return fmt.Errorf("order %d: %w", id, apperr.ErrNotFound)
}
