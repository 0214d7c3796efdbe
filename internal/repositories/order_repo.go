package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"gerai/internal/models"
)

// OrderQuery describes filters and pagination for order listings.
type OrderQuery struct {
	UserID    string
	SellerID  string
	Status    models.OrderStatus
	StartDate time.Time
	EndDate   time.Time
	Page      int
	PageSize  int
}

// Signature is a deterministic serialization of the query, used as part of
// the cache key for the corresponding listing.
func (q OrderQuery) Signature() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%d|%d",
		q.UserID, q.SellerID, q.Status,
		q.StartDate.Format(time.RFC3339), q.EndDate.Format(time.RFC3339),
		q.Page, q.PageSize)
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetWithDetails(ctx context.Context, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error
	UpdateAddress(ctx context.Context, id string, addressID string) error
	UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q OrderQuery) ([]models.Order, error)
	TotalSales(ctx context.Context) (decimal.Decimal, error)
}
