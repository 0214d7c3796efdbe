package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a product in the store.
//
// Stock is only ever decremented through the stock ledger inside a
// reservation transaction; everything else treats it as read-only.
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string          `json:"name" validate:"required,min=3,max=100"`
	Description string          `json:"description" validate:"omitempty,max=500"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(12,2)" validate:"required"`
	Currency    string          `json:"currency" gorm:"type:varchar(3);default:USD" validate:"omitempty,len=3"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Active      bool            `json:"active" gorm:"default:true"`
	SellerID    string          `json:"seller_id" gorm:"type:varchar(36);index" validate:"required,uuid"`
	gorm.Model                  // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
