package notify

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/models"
)

type RealtimeStats struct {
	OrdersCreated   int             `json:"orders_created"`
	OrdersCompleted int             `json:"orders_completed"`
	OrdersCancelled int             `json:"orders_cancelled"`
	LowStockAlerts  int             `json:"low_stock_alerts"`
	Revenue         decimal.Decimal `json:"revenue"`
}

// StatsCollector keeps running counters. Revenue only grows when an order
// reaches COMPLETED, by that order's total at the time.
type StatsCollector struct {
	mu    sync.RWMutex
	stats RealtimeStats
}

func NewStatsCollector() *StatsCollector {
	return &StatsCollector{stats: RealtimeStats{Revenue: decimal.Zero}}
}

func (s *StatsCollector) Name() string { return "stats" }

func (s *StatsCollector) Handle(_ context.Context, ev models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case models.EventOrderCreated:
		s.stats.OrdersCreated++
	case models.EventOrderCancelled:
		s.stats.OrdersCancelled++
	case models.EventProductLowStock:
		s.stats.LowStockAlerts++
	case models.EventOrderStatusChanged:
		p, ok := ev.Payload.(models.OrderStatusChangedEvent)
		if !ok {
			return payloadError(ev)
		}
		if p.NewStatus == models.OrderStatusCompleted {
			s.stats.OrdersCompleted++
			s.stats.Revenue = s.stats.Revenue.Add(p.Order.Total)
		}
	}
	return nil
}

func (s *StatsCollector) Snapshot() RealtimeStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.stats
}
