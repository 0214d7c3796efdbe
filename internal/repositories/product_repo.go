package repositories

import (
	"context"

	"gerai/internal/models"
)

// ProductRepository defines the interface for product data access. Stock is
// intentionally absent from Update: sales decrements go through the stock
// ledger only.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}
