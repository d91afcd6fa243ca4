package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jualbuku/bookmart-backend/pkg/db/models"
	"github.com/jualbuku/bookmart-backend/pkg/enums"
	"github.com/jualbuku/bookmart-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Omit("Items").Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Items").
		Where("orders.customer_id = ?", customerID)
	if filters.Status != nil {
		query = query.Where("orders.status = ?", *filters.Status)
	}
	return r.paginateOrders(query, params)
}

// ListSellerOrders returns orders containing at least one of the seller's
// lines. The join is deduplicated with DISTINCT since an order may carry
// several lines from the same seller.
func (r *repository) ListSellerOrders(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*OrderList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Items").
		Distinct("orders.*").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("order_items.seller_id = ?", sellerID)
	return r.paginateOrders(query, params)
}

func (r *repository) ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Items")
	if filters.Status != nil {
		query = query.Where("orders.status = ?", *filters.Status)
	}
	return r.paginateOrders(query, params)
}

func (r *repository) paginateOrders(query *gorm.DB, params pagination.Params) (*OrderList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(orders.created_at, orders.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var rows []models.Order
	err = query.
		Order("orders.created_at DESC, orders.id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &OrderList{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	list.Orders = rows
	return list, nil
}

// UpdateOrderStatus applies a transition as a conditional single-row update
// so a concurrent transition loses cleanly instead of overwriting.
func (r *repository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus, updates map[string]any) (bool, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = to

	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindUnpaidBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("status IN ?", []enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusAwaitingPayment}).
		Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type revenueRow struct {
	Gross      decimal.Decimal
	Commission decimal.Decimal
	ItemCount  int64
	OrderCount int64
}

func (r *repository) SellerRevenue(ctx context.Context, sellerID uuid.UUID) (*RevenueSummary, error) {
	var row revenueRow
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select(
			"COALESCE(SUM(order_items.unit_price * order_items.quantity), 0) AS gross, "+
				"COALESCE(SUM(order_items.commission_amount), 0) AS commission, "+
				"COALESCE(SUM(order_items.quantity), 0) AS item_count, "+
				"COUNT(DISTINCT order_items.order_id) AS order_count").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.seller_id = ?", sellerID).
		Where("orders.status IN ?", enums.RevenueStatuses()).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &RevenueSummary{
		SellerID:   sellerID,
		Gross:      row.Gross,
		Commission: row.Commission,
		Net:        row.Gross.Sub(row.Commission),
		ItemCount:  row.ItemCount,
		OrderCount: row.OrderCount,
	}, nil
}

func (r *repository) CountByStatuses(ctx context.Context, statuses []enums.OrderStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status IN ?", statuses).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
