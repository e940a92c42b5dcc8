package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/apperr"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/db"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/models"
)

type ProductService struct {
	repo              *db.ProductRepository
	lowStockThreshold int
	logger            *zap.Logger
}

// NewProductService wraps repo. threshold <= 0 falls back to the default.
func NewProductService(repo *db.ProductRepository, threshold int, logger *zap.Logger) *ProductService {
	if threshold <= 0 {
		threshold = models.DefaultLowStockThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{repo: repo, lowStockThreshold: threshold, logger: logger}
}

func (s *ProductService) Create(req models.CreateProductRequest) (*models.Product, error) {
	verr := &apperr.ValidationError{}
	checkName(verr, req.Name)
	checkPrice(verr, req.Price)
	checkStock(verr, req.Stock)
	checkCategory(verr, req.Category)
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	p := s.repo.Create(models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    strings.TrimSpace(req.Category),
	})
	s.logger.Info(fmt.Sprintf("📦 Product #%d created", p.ID), zap.String("name", p.Name))
	return p, nil
}

func (s *ProductService) Get(id int64) (*models.Product, error) {
	p, ok := s.repo.GetByID(id)
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, apperr.ErrNotFound)
	}
	return p, nil
}

func (s *ProductService) List() []models.Product {
	return s.repo.GetAll()
}

// ListByCategory matches the category case-insensitively.
func (s *ProductService) ListByCategory(category string) []models.Product {
	return s.filter(func(p models.Product) bool {
		return strings.EqualFold(p.Category, strings.TrimSpace(category))
	})
}

// SearchByName returns products whose name contains q, ignoring case.
func (s *ProductService) SearchByName(q string) []models.Product {
	needle := strings.ToLower(strings.TrimSpace(q))
	return s.filter(func(p models.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), needle)
	})
}

// Update applies the non-nil fields of req. The change happens under the
// store lock, so a concurrent stock reservation is never lost.
func (s *ProductService) Update(id int64, req models.UpdateProductRequest) (*models.Product, error) {
	verr := &apperr.ValidationError{}
	if req.Name != nil {
		checkName(verr, *req.Name)
	}
	if req.Price != nil {
		checkPrice(verr, *req.Price)
	}
	if req.Stock != nil {
		checkStock(verr, *req.Stock)
	}
	if req.Category != nil {
		checkCategory(verr, *req.Category)
	}

	p, err := s.repo.Modify(id, func(p *models.Product) error {
		if err := verr.ErrOrNil(); err != nil {
			return err
		}
		if req.Name != nil {
			p.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.Price != nil {
			p.Price = *req.Price
		}
		if req.Stock != nil {
			p.Stock = *req.Stock
		}
		if req.Category != nil {
			p.Category = strings.TrimSpace(*req.Category)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Delete(id int64) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.logger.Info(fmt.Sprintf("🗑️ Product #%d deleted", id))
	return nil
}

// LowStock lists products with stock strictly below threshold. threshold <= 0
// uses the service default.
func (s *ProductService) LowStock(threshold int) []models.Product {
	if threshold <= 0 {
		threshold = s.lowStockThreshold
	}
	return s.filter(func(p models.Product) bool { return p.Stock < threshold })
}

func (s *ProductService) Stats() models.ProductStats {
	stats := models.ProductStats{
		TotalInventoryValue: decimal.Zero,
		ByCategory:          make(map[string]int),
	}
	for _, p := range s.repo.GetAll() {
		stats.Count++
		stats.TotalInventoryValue = stats.TotalInventoryValue.Add(p.InventoryValue())
		if p.Stock == 0 {
			stats.OutOfStock++
		}
		if p.Stock < s.lowStockThreshold {
			stats.LowStock++
		}
		stats.ByCategory[p.Category]++
	}
	return stats
}

func (s *ProductService) filter(keep func(models.Product) bool) []models.Product {
	out := []models.Product{}
	for _, p := range s.repo.GetAll() {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func checkName(verr *apperr.ValidationError, name string) {
	if strings.TrimSpace(name) == "" {
		verr.Add("name is required")
	}
}

func checkPrice(verr *apperr.ValidationError, price decimal.Decimal) {
	if !price.IsPositive() {
		verr.Add("price must be greater than zero")
	}
}

func checkStock(verr *apperr.ValidationError, stock int) {
	if stock < 0 {
		verr.Add("stock must not be negative")
	}
}

func checkCategory(verr *apperr.ValidationError, category string) {
	if strings.TrimSpace(category) == "" {
		verr.Add("category is required")
	}
}
