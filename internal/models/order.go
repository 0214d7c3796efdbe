package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusDraft     OrderStatus = "draft"
	StatusPaid      OrderStatus = "paid"
	StatusShipped   OrderStatus = "shipped"
	StatusCancelled OrderStatus = "cancelled"
)

// validNext encodes the legal status transitions. Draft is the only state
// in which an order may still be edited or deleted; there is no way back
// into draft.
var validNext = map[OrderStatus]map[OrderStatus]bool{
	StatusDraft:     {StatusPaid: true, StatusCancelled: true},
	StatusPaid:      {StatusShipped: true},
	StatusShipped:   {},
	StatusCancelled: {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s OrderStatus) bool {
	_, ok := validNext[s]
	return ok
}

// OrderDetail is a single line item within an order. The unit price is a
// snapshot taken when the line was committed; it never changes afterwards,
// so historical order values are decoupled from later price updates.
type OrderDetail struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string          `json:"order_id" gorm:"type:varchar(36);index"`
	ProductID string          `json:"product_id" gorm:"type:varchar(36);index"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2)"`
	Product   *Product        `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	CreatedAt time.Time       `json:"created_at"`
}

// Order represents a customer order. TotalAmount is derived from the
// details and recomputed in the same transaction that mutates them.
// Orders are hard-deleted (draft only), so there is no DeletedAt column.
type Order struct {
	ID                string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID            string          `json:"user_id" gorm:"type:varchar(36);index"`
	ShippingAddressID string          `json:"shipping_address_id" gorm:"type:varchar(36)"`
	TotalAmount       decimal.Decimal `json:"total_amount" gorm:"type:numeric(12,2)"`
	Status            OrderStatus     `json:"status" gorm:"type:varchar(20);index"`
	Details           []OrderDetail   `json:"details,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
