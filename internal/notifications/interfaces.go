package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jualbuku/bookmart-backend/pkg/db/models"
	"github.com/jualbuku/bookmart-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the notifications feed.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) (*models.Notification, error)
	Find(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params, unreadOnly bool) (*NotificationList, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) (int64, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationList wraps a page of notifications plus the next page cursor.
type NotificationList struct {
	Notifications []models.Notification `json:"notifications"`
	NextCursor    string                `json:"next_cursor,omitempty"`
}
