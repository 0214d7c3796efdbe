package repositories

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gerai/internal/models"
)

// Reservation is the outcome of a single TryReserve call. When OK is false
// the remaining fields describe the shortage: how much stock was actually
// available and which product it concerns. UnitPrice is the price snapshot
// taken while the product row was locked.
type Reservation struct {
	OK          bool
	Available   int
	ProductName string
	UnitPrice   decimal.Decimal
}

// StockLedger is the exclusive owner of product stock mutations for sales.
// TryReserve must be called inside the same transaction as the order detail
// insert it supports; the tx argument carries that transaction. A failed
// reservation is a terminal business-rule rejection, never retried.
type StockLedger interface {
	TryReserve(tx *gorm.DB, productID string, quantity int) (Reservation, error)
}

// GORMStockLedger reserves stock against the relational store. It locks the
// product row (SELECT ... FOR UPDATE) so that concurrent check-then-decrement
// sequences for the same product are serialized and stock can never go
// negative.
type GORMStockLedger struct{}

// NewGORMStockLedger creates a new GORMStockLedger.
func NewGORMStockLedger() *GORMStockLedger {
	return &GORMStockLedger{}
}

// TryReserve locks the product row, checks availability and decrements stock
// in place. A missing product is reported as a failed reservation with
// Available=0 and ProductName="Unknown", not as an error.
func (l *GORMStockLedger) TryReserve(tx *gorm.DB, productID string, quantity int) (Reservation, error) {
	query := tx
	// SQLite has no SELECT ... FOR UPDATE; its single-writer transaction
	// model already serializes the check-then-decrement.
	if tx.Dialector.Name() != "sqlite" {
		query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var product models.Product
	err := query.First(&product, "id = ?", productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Reservation{OK: false, Available: 0, ProductName: "Unknown"}, nil
		}
		return Reservation{}, err
	}

	if product.Stock < quantity {
		return Reservation{
			OK:          false,
			Available:   product.Stock,
			ProductName: product.Name,
			UnitPrice:   product.Price,
		}, nil
	}

	res := tx.Model(&product).Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return Reservation{}, res.Error
	}

	return Reservation{
		OK:          true,
		Available:   product.Stock - quantity,
		ProductName: product.Name,
		UnitPrice:   product.Price,
	}, nil
}
