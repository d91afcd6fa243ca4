package orders

import (
	"github.com/google/uuid"
	"github.com/jualbuku/bookmart-backend/pkg/db/models"
	"github.com/jualbuku/bookmart-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// CheckoutInput carries everything needed to turn a cart into an order.
type CheckoutInput struct {
	CustomerID      uuid.UUID
	PaymentMethod   string `validate:"required"`
	ShippingAddress *string
	Notes           *string
}

// OrderFilters describe the inputs supported by the order list queries.
type OrderFilters struct {
	Status *enums.OrderStatus
}

// OrderList wraps a page of orders plus the next page cursor.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// RevenueSummary aggregates a seller's settled sales. Only orders in a
// revenue-counting status participate.
type RevenueSummary struct {
	SellerID   uuid.UUID       `json:"seller_id"`
	Gross      decimal.Decimal `json:"gross"`
	Commission decimal.Decimal `json:"commission"`
	Net        decimal.Decimal `json:"net"`
	ItemCount  int64           `json:"item_count"`
	OrderCount int64           `json:"order_count"`
}
