package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one desired (user, book) pair. The pair is unique; quantity is
// summed on repeated adds. Rows are ephemeral and cleared at checkout.
type CartItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_cart_user_book"`
	BookID    uuid.UUID `gorm:"column:book_id;type:uuid;not null;uniqueIndex:idx_cart_user_book"`
	Quantity  int       `gorm:"column:quantity;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Book *Book `gorm:"foreignKey:BookID"`
}
