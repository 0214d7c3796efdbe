package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gerai/internal/cache"
	"gerai/internal/models"
	"gerai/internal/repositories"
	"gerai/pkg/rabbitmq"
)

// PaymentRequest carries the details of a payment attempt.
type PaymentRequest struct {
	Amount   decimal.Decimal `json:"amount" validate:"required"`
	Currency string          `json:"currency" validate:"required,len=3"`
	Method   string          `json:"method" validate:"required,oneof=card bank_transfer wallet"`
}

// PaymentService processes payments against draft orders. It is the single
// path that moves an order from draft to paid.
type PaymentService struct {
	orderRepo   repositories.OrderRepository
	paymentRepo repositories.PaymentRepository
	cache       cache.Cache
	mqClient    *rabbitmq.Client
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	orderRepo repositories.OrderRepository,
	paymentRepo repositories.PaymentRepository,
	c cache.Cache,
	mqClient *rabbitmq.Client,
) *PaymentService {
	return &PaymentService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		cache:       c,
		mqClient:    mqClient,
	}
}

// ProcessPayment validates ownership and order status, executes the payment
// against the (simulated) gateway, persists the attempt and transitions the
// order to paid. The amount must match the order total exactly.
func (s *PaymentService) ProcessPayment(ctx context.Context, userID, orderID string, req PaymentRequest) (*models.Payment, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrInvalidOperation)
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order %s does not belong to user %s", ErrUnauthorized, orderID, userID)
	}
	if order.Status == models.StatusPaid || order.Status == models.StatusCancelled {
		return nil, fmt.Errorf("%w: order %s is already %s", ErrInvalidOperation, orderID, order.Status)
	}
	if !models.CanTransition(order.Status, models.StatusPaid) {
		return nil, fmt.Errorf("%w: cannot pay order %s in status %s", ErrInvalidOperation, orderID, order.Status)
	}
	if !req.Amount.Equal(order.TotalAmount) {
		return nil, fmt.Errorf("%w: payment amount %s does not match order total %s", ErrInvalidOperation, req.Amount, order.TotalAmount)
	}

	// The order status alone is not enough to reject a retry: if the order
	// transition failed after a payment cleared, the order is still draft
	// but a completed payment already exists. At most one payment may ever
	// reach paid, so that attempt is refused here.
	previous, err := s.paymentRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for _, p := range previous {
		if p.Status == models.PaymentPaid {
			return nil, fmt.Errorf("%w: order %s already has a completed payment %s", ErrInvalidOperation, orderID, p.ID)
		}
	}

	payment := &models.Payment{
		OrderID:  orderID,
		Amount:   req.Amount,
		Currency: req.Currency,
		Method:   req.Method,
		Status:   models.PaymentProcessing,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	// Simulated gateway: the transaction always clears. A failing charge
	// would set PaymentFailed here and leave the order draft.
	transactionID := uuid.New().String()
	if err := s.paymentRepo.UpdateStatus(ctx, payment.ID, models.PaymentPaid, transactionID); err != nil {
		return nil, err
	}
	payment.Status = models.PaymentPaid
	payment.TransactionID = transactionID

	if err := s.orderRepo.UpdateStatus(ctx, orderID, models.StatusPaid); err != nil {
		return nil, mapNotFound(err)
	}

	if err := cache.InvalidateOrder(ctx, s.cache, orderID); err != nil {
		log.Printf("Warning: failed to invalidate cache for order %s: %v", orderID, err)
	}

	if s.mqClient != nil {
		err := s.mqClient.PublishOrderEvent("order.paid", map[string]interface{}{
			"order_id":       orderID,
			"user_id":        userID,
			"payment_id":     payment.ID,
			"transaction_id": transactionID,
			"amount":         payment.Amount,
		})
		if err != nil {
			log.Printf("Warning: failed to publish order.paid event for order %s: %v", orderID, err)
		}
	}

	return payment, nil
}

// GetPaymentsForOrder lists the payment attempts of an order owned by the
// caller.
func (s *PaymentService) GetPaymentsForOrder(ctx context.Context, userID, orderID string) ([]models.Payment, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order %s does not belong to user %s", ErrUnauthorized, orderID, userID)
	}
	return s.paymentRepo.ListByOrder(ctx, orderID)
}
