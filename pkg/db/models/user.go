package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jualbuku/bookmart-backend/pkg/enums"
)

// User is the thin identity row the platform keys orders and profiles to.
// Credential and session mechanics live with the identity provider.
type User struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string     `gorm:"column:email;not null;uniqueIndex"`
	Name      string     `gorm:"column:name;not null"`
	Role      enums.Role `gorm:"column:role;type:text;not null;default:'client'"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
