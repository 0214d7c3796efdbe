package repositories

import (
	"context"

	"gerai/internal/models"
)

// PaymentRepository defines the interface for payment data access. Payment
// rows are immutable once committed except for their status.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	UpdateStatus(ctx context.Context, id string, status models.PaymentStatus, transactionID string) error
	ListByOrder(ctx context.Context, orderID string) ([]models.Payment, error)
}
