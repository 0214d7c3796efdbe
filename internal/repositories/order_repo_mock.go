package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gerai/internal/models"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders  map[string]models.Order
	details map[string][]models.OrderDetail
	mu      sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders:  make(map[string]models.Order),
		details: make(map[string][]models.OrderDetail),
	}
}

// SetDetails seeds line items for an order.
func (r *MockOrderRepository) SetDetails(orderID string, details []models.OrderDetail) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.details[orderID] = details
}

// Create adds a new order.
func (r *MockOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, gorm.ErrRecordNotFound)
	}
	return &order, nil
}

// GetWithDetails returns an order with its seeded line items attached.
func (r *MockOrderRepository) GetWithDetails(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, gorm.ErrRecordNotFound)
	}
	order.Details = append([]models.OrderDetail(nil), r.details[id]...)
	return &order, nil
}

// UpdateStatus updates the status of an order.
func (r *MockOrderRepository) UpdateStatus(_ context.Context, id string, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s: %w", id, gorm.ErrRecordNotFound)
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// UpdateAddress updates the shipping address reference of an order.
func (r *MockOrderRepository) UpdateAddress(_ context.Context, id string, addressID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s: %w", id, gorm.ErrRecordNotFound)
	}
	order.ShippingAddressID = addressID
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// UpdateTotal updates the derived total amount of an order.
func (r *MockOrderRepository) UpdateTotal(_ context.Context, id string, total decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s: %w", id, gorm.ErrRecordNotFound)
	}
	order.TotalAmount = total
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// Delete removes an order and its line items.
func (r *MockOrderRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return fmt.Errorf("order with ID %s: %w", id, gorm.ErrRecordNotFound)
	}
	delete(r.orders, id)
	delete(r.details, id)
	return nil
}

// List returns orders matching the query, newest first, with the same
// pagination defaults as the GORM implementation. A seller filter matches
// against the Product snapshots of the seeded details.
func (r *MockOrderRepository) List(_ context.Context, q OrderQuery) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Order
	for _, order := range r.orders {
		if q.UserID != "" && order.UserID != q.UserID {
			continue
		}
		if q.Status != "" && order.Status != q.Status {
			continue
		}
		if !q.StartDate.IsZero() && order.CreatedAt.Before(q.StartDate) {
			continue
		}
		if !q.EndDate.IsZero() && order.CreatedAt.After(q.EndDate) {
			continue
		}
		if q.SellerID != "" && !r.soldBy(order.ID, q.SellerID) {
			continue
		}
		out = append(out, order)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= len(out) {
		return []models.Order{}, nil
	}
	end := start + pageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

// soldBy reports whether any seeded line item of the order carries a product
// owned by the seller. Callers hold r.mu.
func (r *MockOrderRepository) soldBy(orderID, sellerID string) bool {
	for _, detail := range r.details[orderID] {
		if detail.Product != nil && detail.Product.SellerID == sellerID {
			return true
		}
	}
	return false
}

// TotalSales sums the total amount over all paid orders.
func (r *MockOrderRepository) TotalSales(_ context.Context) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := decimal.Zero
	for _, order := range r.orders {
		if order.Status == models.StatusPaid {
			total = total.Add(order.TotalAmount)
		}
	}
	return total, nil
}
