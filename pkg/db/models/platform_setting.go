package models

import "time"

// PlatformSetting is admin-owned key/value configuration read by the order
// engine (e.g. the default commission rate).
type PlatformSetting struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Well-known platform setting keys.
const (
	SettingDefaultCommissionRate = "default_commission_rate"
)
