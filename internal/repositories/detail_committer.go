package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gerai/internal/models"
)

// RequestedItem is one line of an add-details request.
type RequestedItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// StockShortage describes one line item that could not be reserved.
// Shortages are data, not errors: the caller gets the full list so it can
// render a precise per-item message.
type StockShortage struct {
	ProductID         string `json:"product_id"`
	ProductName       string `json:"product_name"`
	AvailableStock    int    `json:"available_stock"`
	RequestedQuantity int    `json:"requested_quantity"`
}

// CommitResult is the outcome of an AddOrderDetails call.
type CommitResult struct {
	Success     bool            `json:"success"`
	StockErrors []StockShortage `json:"stock_errors,omitempty"`
}

// OrderDetailCommitter atomically validates a batch of requested line items
// against the stock ledger and either commits every stock decrement together
// with the detail rows, or commits nothing.
type OrderDetailCommitter interface {
	AddOrderDetails(ctx context.Context, orderID string, items []RequestedItem) (*CommitResult, error)
}

// errStockShortage forces the surrounding transaction to roll back when any
// item in the batch cannot be reserved.
var errStockShortage = errors.New("stock shortage in batch")

// GORMOrderDetailCommitter is the GORM implementation of OrderDetailCommitter.
// This is the only path by which stock is decremented for a sale.
type GORMOrderDetailCommitter struct {
	db     *gorm.DB
	ledger StockLedger
}

// NewGORMOrderDetailCommitter creates a new GORMOrderDetailCommitter.
func NewGORMOrderDetailCommitter(db *gorm.DB, ledger StockLedger) *GORMOrderDetailCommitter {
	return &GORMOrderDetailCommitter{
		db:     db,
		ledger: ledger,
	}
}

// AddOrderDetails runs one transaction that reserves stock for every
// requested item, inserts the detail rows and recomputes the order total.
// All shortages are collected before rolling back, so a caller with three
// failing lines hears about all three at once. An unexpected failure rolls
// back and is reported as a single synthetic shortage entry (empty product
// id); the real cause is logged.
func (c *GORMOrderDetailCommitter) AddOrderDetails(ctx context.Context, orderID string, items []RequestedItem) (*CommitResult, error) {
	result := &CommitResult{}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			return err
		}

		details := make([]models.OrderDetail, 0, len(items))
		for _, item := range items {
			reservation, err := c.ledger.TryReserve(tx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if !reservation.OK {
				// Keep going: collect every shortage in the batch.
				result.StockErrors = append(result.StockErrors, StockShortage{
					ProductID:         item.ProductID,
					ProductName:       reservation.ProductName,
					AvailableStock:    reservation.Available,
					RequestedQuantity: item.Quantity,
				})
				continue
			}
			details = append(details, models.OrderDetail{
				ID:        uuid.New().String(),
				OrderID:   orderID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: reservation.UnitPrice,
			})
		}

		if len(result.StockErrors) > 0 {
			return errStockShortage
		}

		if err := tx.Create(&details).Error; err != nil {
			return err
		}

		// Recompute the derived total over all of the order's details, in
		// the same transaction as the rows it summarizes.
		var total decimal.Decimal
		row := tx.Model(&models.OrderDetail{}).
			Where("order_id = ?", orderID).
			Select("COALESCE(SUM(quantity * unit_price), 0)").
			Row()
		if err := row.Scan(&total); err != nil {
			return err
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).
			Update("total_amount", total).Error; err != nil {
			return err
		}

		result.Success = true
		return nil
	})

	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, errStockShortage):
		result.Success = false
		return result, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("order with ID %s not found: %w", orderID, gorm.ErrRecordNotFound)
	default:
		// Fail closed: the caller sees a stock failure, the log keeps the
		// real cause for diagnostics. Shortages collected before the abort
		// are discarded; the rolled-back run reports exactly one entry.
		log.Printf("Unexpected error committing details for order %s: %v", orderID, err)
		result.Success = false
		result.StockErrors = []StockShortage{{
			ProductID:   "",
			ProductName: "Unknown",
		}}
		return result, nil
	}
}
