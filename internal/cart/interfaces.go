package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/jualbuku/bookmart-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository defines persistence operations for cart rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindItem(ctx context.Context, userID, bookID uuid.UUID) (*models.CartItem, error)
	ListItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, userID, bookID uuid.UUID) (int64, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}
