package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jualbuku/bookmart-backend/pkg/enums"
)

// SellerProfile gates who may sell. Rows are never deleted; status changes
// are the audit trail of onboarding and suspension.
type SellerProfile struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID          `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	StoreName      string             `gorm:"column:store_name;not null"`
	Status         enums.SellerStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	CommissionRate *decimal.Decimal   `gorm:"column:commission_rate;type:numeric(5,2)"`
	ApprovedAt     *time.Time         `gorm:"column:approved_at"`
	ApprovedBy     *uuid.UUID         `gorm:"column:approved_by;type:uuid"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
