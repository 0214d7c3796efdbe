package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gerai/internal/cache"
	"gerai/internal/models"
	"gerai/internal/repositories"
	"gerai/pkg/rabbitmq"
)

// Actor identifies the authenticated caller of an order operation.
type Actor struct {
	UserID string
	Role   models.Role
}

// OrderService orchestrates order creation, line-item commits, status
// transitions and deletion, enforcing ownership and the status state
// machine before delegating to the repositories. Reads go through the
// cache; every mutation invalidates the order's keys plus the aggregate
// sales total.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	addressRepo repositories.AddressRepository
	committer   repositories.OrderDetailCommitter
	cache       cache.Cache
	mqClient    *rabbitmq.Client
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	addressRepo repositories.AddressRepository,
	committer repositories.OrderDetailCommitter,
	c cache.Cache,
	mqClient *rabbitmq.Client,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		addressRepo: addressRepo,
		committer:   committer,
		cache:       c,
		mqClient:    mqClient,
	}
}

func validateItems(items []repositories.RequestedItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", ErrInvalidOperation)
	}
	for _, item := range items {
		if item.ProductID == "" {
			return fmt.Errorf("%w: item is missing a product id", ErrInvalidOperation)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: quantity for product %s must be positive", ErrInvalidOperation, item.ProductID)
		}
	}
	return nil
}

// mapNotFound converts a repository record-not-found into the service
// taxonomy; other errors pass through.
func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

// CreateOrderWithDetails creates a draft order seeded with the user's
// default shipping address, then commits the requested line items
// atomically. If the commit fails on stock, the empty draft order is left
// behind and returned together with the shortage list; the caller may retry
// the add or delete the draft.
func (s *OrderService) CreateOrderWithDetails(ctx context.Context, userID string, items []repositories.RequestedItem) (*models.Order, *repositories.CommitResult, error) {
	if err := validateItems(items); err != nil {
		return nil, nil, err
	}

	address, err := s.addressRepo.GetDefaultForUser(ctx, userID)
	if err != nil {
		return nil, nil, mapNotFound(err)
	}

	order := &models.Order{
		UserID:            userID,
		ShippingAddressID: address.ID,
		Status:            models.StatusDraft,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, nil, err
	}

	result, err := s.committer.AddOrderDetails(ctx, order.ID, items)
	if err != nil {
		return nil, nil, mapNotFound(err)
	}
	if !result.Success {
		return order, result, nil
	}

	s.invalidate(ctx, order.ID)

	created, err := s.orderRepo.GetWithDetails(ctx, order.ID)
	if err != nil {
		return nil, nil, mapNotFound(err)
	}

	s.publish("order.created", map[string]interface{}{
		"order_id": created.ID,
		"user_id":  created.UserID,
		"status":   created.Status,
		"total":    created.TotalAmount,
	})

	return created, result, nil
}

// AddOrderDetailToOrder commits additional line items to an existing draft
// order owned by the caller.
func (s *OrderService) AddOrderDetailToOrder(ctx context.Context, userID, orderID string, items []repositories.RequestedItem) (*repositories.CommitResult, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order %s does not belong to user %s", ErrUnauthorized, orderID, userID)
	}
	if order.Status != models.StatusDraft {
		return nil, fmt.Errorf("%w: order %s is %s, details can only be added while draft", ErrInvalidOperation, orderID, order.Status)
	}

	result, err := s.committer.AddOrderDetails(ctx, orderID, items)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if result.Success {
		s.invalidate(ctx, orderID)
	}
	return result, nil
}

// UpdateOrderAddress changes the shipping address of a draft order owned by
// the caller.
func (s *OrderService) UpdateOrderAddress(ctx context.Context, userID, orderID, addressID string) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return mapNotFound(err)
	}
	if order.UserID != userID {
		return fmt.Errorf("%w: order %s does not belong to user %s", ErrUnauthorized, orderID, userID)
	}
	if order.Status != models.StatusDraft {
		return fmt.Errorf("%w: order %s is %s, address can only change while draft", ErrInvalidOperation, orderID, order.Status)
	}

	address, err := s.addressRepo.GetByID(ctx, addressID)
	if err != nil {
		return mapNotFound(err)
	}
	if address.UserID != userID {
		return fmt.Errorf("%w: address %s does not belong to user %s", ErrUnauthorized, addressID, userID)
	}

	if err := s.orderRepo.UpdateAddress(ctx, orderID, addressID); err != nil {
		return mapNotFound(err)
	}
	s.invalidate(ctx, orderID)
	return nil
}

// UpdateOrderStatus moves an order to a new status if the state machine
// allows the transition. Role gates are applied by the caller layer; the
// draft-to-paid transition in particular is reserved for the payment flow.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID string, newStatus models.OrderStatus) error {
	if !models.ValidStatus(newStatus) {
		return fmt.Errorf("%w: unknown order status %q", ErrArgument, newStatus)
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return mapNotFound(err)
	}
	if !models.CanTransition(order.Status, newStatus) {
		return fmt.Errorf("%w: cannot transition order %s from %s to %s", ErrInvalidOperation, orderID, order.Status, newStatus)
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, newStatus); err != nil {
		return mapNotFound(err)
	}
	s.invalidate(ctx, orderID)

	if newStatus == models.StatusCancelled {
		s.publish("order.cancelled", map[string]interface{}{
			"order_id": orderID,
			"user_id":  order.UserID,
		})
	}
	return nil
}

// DeleteOrder hard-deletes a draft order owned by the caller, cascading to
// its line items.
func (s *OrderService) DeleteOrder(ctx context.Context, userID, orderID string) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return mapNotFound(err)
	}
	if order.UserID != userID {
		return fmt.Errorf("%w: order %s does not belong to user %s", ErrUnauthorized, orderID, userID)
	}
	if order.Status != models.StatusDraft {
		return fmt.Errorf("%w: order %s is %s, only draft orders can be deleted", ErrInvalidOperation, orderID, order.Status)
	}

	if err := s.orderRepo.Delete(ctx, orderID); err != nil {
		return mapNotFound(err)
	}
	s.invalidate(ctx, orderID)
	return nil
}

// GetOrderByID retrieves a single order, read-through cached.
func (s *OrderService) GetOrderByID(ctx context.Context, orderID string) (*models.Order, error) {
	key := cache.OrderKey(orderID)
	var cached models.Order
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	_ = s.cache.Set(ctx, key, order, cache.TTLEntity)
	return order, nil
}

// GetOrderWithDetails retrieves an order with its line items, read-through
// cached under a separate key.
func (s *OrderService) GetOrderWithDetails(ctx context.Context, orderID string) (*models.Order, error) {
	key := cache.OrderDetailsKey(orderID)
	var cached models.Order
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	order, err := s.orderRepo.GetWithDetails(ctx, orderID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	_ = s.cache.Set(ctx, key, order, cache.TTLEntity)
	return order, nil
}

// scopeQuery applies role-based restrictions to a listing query. Customers
// may only see their own orders, sellers only orders containing their own
// products, admins everything.
func scopeQuery(actor Actor, q repositories.OrderQuery) (repositories.OrderQuery, error) {
	switch actor.Role {
	case models.RoleAdmin:
		return q, nil
	case models.RoleSeller:
		if q.SellerID != "" && q.SellerID != actor.UserID {
			return q, fmt.Errorf("%w: seller %s cannot query seller %s", ErrUnauthorized, actor.UserID, q.SellerID)
		}
		q.SellerID = actor.UserID
		return q, nil
	default:
		if q.UserID != "" && q.UserID != actor.UserID {
			return q, fmt.Errorf("%w: user %s cannot query orders of user %s", ErrUnauthorized, actor.UserID, q.UserID)
		}
		if q.SellerID != "" {
			return q, fmt.Errorf("%w: customers cannot query by seller", ErrUnauthorized)
		}
		q.UserID = actor.UserID
		return q, nil
	}
}

// GetOrders lists orders for the actor, role-scoped and cached per filter
// signature. Listing caches are not invalidated on mutation; their
// staleness is bounded by the TTL.
func (s *OrderService) GetOrders(ctx context.Context, actor Actor, q repositories.OrderQuery) ([]models.Order, error) {
	if !q.StartDate.IsZero() && !q.EndDate.IsZero() && q.StartDate.After(q.EndDate) {
		return nil, fmt.Errorf("%w: start date is after end date", ErrArgument)
	}
	if q.Page < 0 || q.PageSize < 0 {
		return nil, fmt.Errorf("%w: pagination values must not be negative", ErrArgument)
	}

	q, err := scopeQuery(actor, q)
	if err != nil {
		return nil, err
	}

	key := cache.OrderListKey(q.Signature())
	var cached []models.Order
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	orders, err := s.orderRepo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, orders, cache.TTLList)
	return orders, nil
}

// GetSellerOrders lists orders containing the seller's products. Sellers
// may only query themselves; admins may query any seller.
func (s *OrderService) GetSellerOrders(ctx context.Context, actor Actor, sellerID string, q repositories.OrderQuery) ([]models.Order, error) {
	if actor.Role == models.RoleCustomer {
		return nil, fmt.Errorf("%w: customers cannot query seller orders", ErrUnauthorized)
	}
	q.SellerID = sellerID
	return s.GetOrders(ctx, actor, q)
}

// GetTotalSales returns the cached sum over all paid orders.
func (s *OrderService) GetTotalSales(ctx context.Context) (decimal.Decimal, error) {
	var cached decimal.Decimal
	if hit, _ := s.cache.Get(ctx, cache.TotalSalesKey, &cached); hit {
		return cached, nil
	}

	total, err := s.orderRepo.TotalSales(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	_ = s.cache.Set(ctx, cache.TotalSalesKey, total, cache.TTLAggregate)
	return total, nil
}

// invalidate evicts the order's cache keys and the sales aggregate.
func (s *OrderService) invalidate(ctx context.Context, orderID string) {
	if err := cache.InvalidateOrder(ctx, s.cache, orderID); err != nil {
		log.Printf("Warning: failed to invalidate cache for order %s: %v", orderID, err)
	}
}

// publish sends a best-effort order event; a missing or failing broker is
// logged, never surfaced.
func (s *OrderService) publish(event string, payload map[string]interface{}) {
	if s.mqClient == nil {
		return
	}
	if err := s.mqClient.PublishOrderEvent(event, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", event, err)
	}
}
