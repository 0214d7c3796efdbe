package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gerai/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// Create creates a new order in the database.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves a single order by its ID from the database.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("order with ID %s: %w", id, err)
	}
	return &order, nil
}

// GetWithDetails retrieves an order with its line items and their product
// snapshots eagerly loaded.
func (r *GORMOrderRepository) GetWithDetails(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Details").
		Preload("Details.Product").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("order with ID %s: %w", id, err)
	}
	return &order, nil
}

// UpdateStatus updates the status of an order.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update status for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// UpdateAddress updates the shipping address reference of an order.
func (r *GORMOrderRepository) UpdateAddress(ctx context.Context, id string, addressID string) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Update("shipping_address_id", addressID)
	if res.Error != nil {
		return fmt.Errorf("failed to update address for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// UpdateTotal updates the derived total amount of an order.
func (r *GORMOrderRepository) UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Update("total_amount", total)
	if res.Error != nil {
		return fmt.Errorf("failed to update total for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// Delete hard-deletes an order and its line items, returning any stock the
// details had reserved. Restock, detail removal and order removal share one
// transaction so the order never loses them partially.
func (r *GORMOrderRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var details []models.OrderDetail
		if err := tx.Where("order_id = ?", id).Find(&details).Error; err != nil {
			return fmt.Errorf("failed to load details for order %s: %w", id, err)
		}
		for _, detail := range details {
			err := tx.Model(&models.Product{}).
				Where("id = ?", detail.ProductID).
				Update("stock", gorm.Expr("stock + ?", detail.Quantity)).Error
			if err != nil {
				return fmt.Errorf("failed to restock product %s for order %s: %w", detail.ProductID, id, err)
			}
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderDetail{}).Error; err != nil {
			return fmt.Errorf("failed to delete details for order %s: %w", id, err)
		}
		res := tx.Delete(&models.Order{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete order %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order with ID %s: %w", id, gorm.ErrRecordNotFound)
		}
		return nil
	})
}

// List retrieves orders matching the query, newest first. A seller filter
// joins through the order details so a seller sees every order containing
// at least one of their products.
func (r *GORMOrderRepository) List(ctx context.Context, q OrderQuery) ([]models.Order, error) {
	db := r.db.WithContext(ctx).Model(&models.Order{})

	if q.UserID != "" {
		db = db.Where("orders.user_id = ?", q.UserID)
	}
	if q.Status != "" {
		db = db.Where("orders.status = ?", q.Status)
	}
	if !q.StartDate.IsZero() {
		db = db.Where("orders.created_at >= ?", q.StartDate)
	}
	if !q.EndDate.IsZero() {
		db = db.Where("orders.created_at <= ?", q.EndDate)
	}
	if q.SellerID != "" {
		db = db.
			Joins("JOIN order_details ON order_details.order_id = orders.id").
			Joins("JOIN products ON products.id = order_details.product_id").
			Where("products.seller_id = ?", q.SellerID).
			Distinct("orders.*")
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var orders []models.Order
	err := db.Order("orders.created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// TotalSales sums the total amount over all paid orders.
func (r *GORMOrderRepository) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("status = ?", models.StatusPaid).
		Select("COALESCE(SUM(total_amount), 0)").
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum sales: %w", err)
	}
	return total, nil
}
