package repositories

import (
	"context"

	"gerai/internal/models"
)

// AddressRepository defines the interface for address data access. The
// order flow only needs the default address to seed a new draft order and
// an existence check when the address is changed.
type AddressRepository interface {
	Create(ctx context.Context, address *models.Address) error
	GetByID(ctx context.Context, id string) (*models.Address, error)
	GetDefaultForUser(ctx context.Context, userID string) (*models.Address, error)
}
