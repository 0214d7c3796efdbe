package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the state of a single payment attempt.
type PaymentStatus string

const (
	PaymentProcessing PaymentStatus = "processing"
	PaymentPaid       PaymentStatus = "paid"
	PaymentFailed     PaymentStatus = "failed"
)

// Payment is one payment attempt against an order. An order may accumulate
// several attempts, but only the one that reaches "paid" moves the order
// out of draft. Rows are immutable once committed except for Status.
type Payment struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID       string          `json:"order_id" gorm:"type:varchar(36);index"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(12,2)"`
	Currency      string          `json:"currency" gorm:"type:varchar(3)"`
	Method        string          `json:"method" gorm:"type:varchar(30)"`
	Status        PaymentStatus   `json:"status" gorm:"type:varchar(20)"`
	TransactionID string          `json:"transaction_id" gorm:"type:varchar(64)"`
	CreatedAt     time.Time       `json:"created_at"`
}
