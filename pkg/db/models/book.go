package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jualbuku/bookmart-backend/pkg/enums"
)

// Book represents a seller's catalog listing. Stock applies to physical and
// hybrid listings only; digital listings ignore it.
type Book struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID       uuid.UUID            `gorm:"column:seller_id;type:uuid;not null;index"`
	Title          string               `gorm:"column:title;not null"`
	Author         string               `gorm:"column:author;not null"`
	Description    *string              `gorm:"column:description"`
	Price          decimal.Decimal      `gorm:"column:price;type:numeric(14,0);not null"`
	OriginalPrice  *decimal.Decimal     `gorm:"column:original_price;type:numeric(14,0)"`
	BookType       enums.BookType       `gorm:"column:book_type;type:text;not null;default:'physical'"`
	Stock          int                  `gorm:"column:stock;not null;default:0"`
	CategoryID     *uuid.UUID           `gorm:"column:category_id;type:uuid"`
	IsActive       bool                 `gorm:"column:is_active;not null;default:true"`
	ApprovalStatus enums.ApprovalStatus `gorm:"column:approval_status;type:text;not null;default:'pending'"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
