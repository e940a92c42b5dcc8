package db

import (
	"fmt"
	"time"

	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/apperr"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/models"
)

// StockLine asks for Quantity units of ProductID.
type StockLine struct {
	ProductID int64
	Quantity  int
}

type ProductRepository struct {
	products *table[models.Product]
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: newTable[models.Product]("product")}
}

// GetAll returns all products in insertion order
func (r *ProductRepository) GetAll() []models.Product {
	r.products.mu.RLock()
	defer r.products.mu.RUnlock()

	return r.products.scan()
}

// GetByID returns a copy of a single product
func (r *ProductRepository) GetByID(id int64) (*models.Product, bool) {
	r.products.mu.RLock()
	defer r.products.mu.RUnlock()

	p, ok := r.products.get(id)
	if !ok {
		return nil, false
	}
	return &p, true
}

// Create inserts a new product and assigns its id
func (r *ProductRepository) Create(p models.Product) *models.Product {
	r.products.mu.Lock()
	defer r.products.mu.Unlock()

	now := time.Now().UTC()
	created := r.products.insert(func(id int64) models.Product {
		p.ID = id
		p.CreatedAt = now
		p.UpdatedAt = now
		return p
	})

	return &created
}

// Update replaces the stored product with p
func (r *ProductRepository) Update(id int64, p models.Product) (*models.Product, error) {
	r.products.mu.Lock()
	defer r.products.mu.Unlock()

	existing, ok := r.products.get(id)
	if !ok {
		return nil, r.products.notFound(id)
	}

	p.ID = id
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	if err := r.products.put(id, p); err != nil {
		return nil, err
	}

	return &p, nil
}

// Modify applies fn to the stored product under the write lock, so fields fn
// leaves alone (stock in particular) cannot be overwritten by a stale copy.
// Nothing is stored if fn returns an error.
func (r *ProductRepository) Modify(id int64, fn func(*models.Product) error) (*models.Product, error) {
	r.products.mu.Lock()
	defer r.products.mu.Unlock()

	p, ok := r.products.get(id)
	if !ok {
		return nil, r.products.notFound(id)
	}

	if err := fn(&p); err != nil {
		return nil, err
	}
	p.ID = id
	p.UpdatedAt = time.Now().UTC()
	if err := r.products.put(id, p); err != nil {
		return nil, err
	}

	return &p, nil
}

// Delete removes a product
func (r *ProductRepository) Delete(id int64) error {
	r.products.mu.Lock()
	defer r.products.mu.Unlock()

	return r.products.remove(id)
}

// ReserveStock decrements stock for every line, or for none of them.
// All lines are checked against current stock (cumulatively, when a product
// appears more than once) before anything is mutated. The returned products
// are post-decrement snapshots, one per line.
func (r *ProductRepository) ReserveStock(lines []StockLine) ([]models.Product, error) {
	r.products.mu.Lock()
	defer r.products.mu.Unlock()

	requested := make(map[int64]int, len(lines))
	for _, line := range lines {
		p, ok := r.products.get(line.ProductID)
		if !ok {
			return nil, r.products.notFound(line.ProductID)
		}

		if line.Quantity <= 0 {
			return nil, fmt.Errorf("product %d: quantity %d: %w", p.ID, line.Quantity, apperr.ErrInvalidArgument)
		}
		// compare against what is left rather than summing, so huge quantities cannot wrap
		if line.Quantity > p.Stock-requested[line.ProductID] {
			return nil, fmt.Errorf("product %d (%s): requested %d more, available %d: %w",
				p.ID, p.Name, line.Quantity, p.Stock-requested[line.ProductID], apperr.ErrInsufficientStock)
		}
		requested[line.ProductID] += line.Quantity
	}

	now := time.Now().UTC()
	reserved := make([]models.Product, 0, len(lines))
	for _, line := range lines {
		p, _ := r.products.get(line.ProductID)
		p.Stock -= line.Quantity
		p.UpdatedAt = now
		r.products.rows[line.ProductID] = p
		reserved = append(reserved, p)
	}

	return reserved, nil
}

// RestoreStock puts quantity units back. It reports false if the product no
// longer exists.
func (r *ProductRepository) RestoreStock(id int64, quantity int) (*models.Product, bool) {
	r.products.mu.Lock()
	defer r.products.mu.Unlock()

	p, ok := r.products.get(id)
	if !ok {
		return nil, false
	}

	p.Stock += quantity
	p.UpdatedAt = time.Now().UTC()
	r.products.rows[id] = p

	return &p, true
}
