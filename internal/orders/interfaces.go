package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jualbuku/bookmart-backend/pkg/db/models"
	"github.com/jualbuku/bookmart-backend/pkg/enums"
	"github.com/jualbuku/bookmart-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository defines persistence operations for orders and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters OrderFilters) (*OrderList, error)
	ListSellerOrders(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus, updates map[string]any) (bool, error)
	FindUnpaidBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
	SellerRevenue(ctx context.Context, sellerID uuid.UUID) (*RevenueSummary, error)
	CountByStatuses(ctx context.Context, statuses []enums.OrderStatus) (int64, error)
}
