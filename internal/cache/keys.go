package cache

import (
	"context"
	"fmt"
	"time"
)

// Key layout:
//
//	order:{order_id}          -> single order
//	order:{order_id}:details  -> order with line items
//	orders:{signature}        -> paginated listing per filter signature
//	sales:total               -> aggregate sales over paid orders
const (
	keyOrder        = "order:%s"
	keyOrderDetails = "order:%s:details"
	keyOrderList    = "orders:%s"

	// TotalSalesKey caches the derived sum over paid orders. Any order
	// mutation may change it, so it is evicted on every invalidation.
	TotalSalesKey = "sales:total"
)

var (
	TTLEntity    = 5 * time.Minute
	TTLList      = 5 * time.Minute
	TTLAggregate = 5 * time.Minute
)

// OrderKey derives the cache key for a single order.
func OrderKey(orderID string) string {
	return fmt.Sprintf(keyOrder, orderID)
}

// OrderDetailsKey derives the cache key for an order with its line items.
func OrderDetailsKey(orderID string) string {
	return fmt.Sprintf(keyOrderDetails, orderID)
}

// OrderListKey derives the cache key for a listing from its filter signature.
func OrderListKey(signature string) string {
	return fmt.Sprintf(keyOrderList, signature)
}

// InvalidateOrder evicts every key derived from an order plus the aggregate
// sales total, which may now be stale. Listing keys are deliberately left
// alone: their staleness window is bounded by the TTL.
func InvalidateOrder(ctx context.Context, c Cache, orderID string) error {
	return c.Remove(ctx, OrderKey(orderID), OrderDetailsKey(orderID), TotalSalesKey)
}
