package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem freezes one book line inside an order. Price, seller and
// commission are owned copies taken at order time so later catalog or
// profile edits never touch historical settlement.
type OrderItem struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	BookID           uuid.UUID       `gorm:"column:book_id;type:uuid;not null"`
	SellerID         uuid.UUID       `gorm:"column:seller_id;type:uuid;not null;index"`
	Title            string          `gorm:"column:title;not null"`
	Quantity         int             `gorm:"column:quantity;not null"`
	UnitPrice        decimal.Decimal `gorm:"column:unit_price;type:numeric(14,0);not null"`
	CommissionAmount decimal.Decimal `gorm:"column:commission_amount;type:numeric(14,0);not null"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
