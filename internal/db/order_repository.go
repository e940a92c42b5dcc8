package db

import (
	"time"

	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/models"
)

type OrderRepository struct {
	orders *table[models.Order]
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: newTable[models.Order]("order")}
}

// Create inserts a new order with items and assigns its id
func (r *OrderRepository) Create(order models.Order) *models.Order {
	r.orders.mu.Lock()
	defer r.orders.mu.Unlock()

	now := time.Now().UTC()
	created := r.orders.insert(func(id int64) models.Order {
		stored := order.Clone()
		stored.ID = id
		stored.CreatedAt = now
		stored.UpdatedAt = now
		return stored
	})

	out := created.Clone()
	return &out
}

// GetAll returns all orders in insertion order
func (r *OrderRepository) GetAll() []models.Order {
	r.orders.mu.RLock()
	defer r.orders.mu.RUnlock()

	rows := r.orders.scan()
	for i := range rows {
		rows[i] = rows[i].Clone()
	}
	return rows
}

// GetByID returns a single order with items
func (r *OrderRepository) GetByID(id int64) (*models.Order, bool) {
	r.orders.mu.RLock()
	defer r.orders.mu.RUnlock()

	o, ok := r.orders.get(id)
	if !ok {
		return nil, false
	}
	out := o.Clone()
	return &out, true
}

// Update replaces the stored order
func (r *OrderRepository) Update(id int64, order models.Order) (*models.Order, error) {
	r.orders.mu.Lock()
	defer r.orders.mu.Unlock()

	existing, ok := r.orders.get(id)
	if !ok {
		return nil, r.orders.notFound(id)
	}

	stored := order.Clone()
	stored.ID = id
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now().UTC()
	if err := r.orders.put(id, stored); err != nil {
		return nil, err
	}

	out := stored.Clone()
	return &out, nil
}

// Delete removes an order
func (r *OrderRepository) Delete(id int64) error {
	r.orders.mu.Lock()
	defer r.orders.mu.Unlock()

	return r.orders.remove(id)
}
