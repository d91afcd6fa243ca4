package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jualbuku/bookmart-backend/pkg/enums"
)

// Order is the immutable financial record produced by checkout. After
// creation only status, payment_proof and updated_at ever change.
type Order struct {
	ID                 uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber        string            `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerID         uuid.UUID         `gorm:"column:customer_id;type:uuid;not null;index"`
	Status             enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentMethod      string            `gorm:"column:payment_method;not null"`
	Subtotal           decimal.Decimal   `gorm:"column:subtotal;type:numeric(14,0);not null"`
	PlatformCommission decimal.Decimal   `gorm:"column:platform_commission;type:numeric(14,0);not null"`
	Total              decimal.Decimal   `gorm:"column:total;type:numeric(14,0);not null"`
	ShippingAddress    *string           `gorm:"column:shipping_address"`
	PaymentProof       *string           `gorm:"column:payment_proof"`
	Notes              *string           `gorm:"column:notes"`
	Items              []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
