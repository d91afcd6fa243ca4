package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentSetting is one payment rail offered at checkout. Only active rails
// may be selected on new orders.
type PaymentSetting struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code         string    `gorm:"column:code;not null;uniqueIndex"`
	DisplayName  string    `gorm:"column:display_name;not null"`
	Instructions *string   `gorm:"column:instructions"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
