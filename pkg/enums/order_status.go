package enums

import "fmt"

// OrderStatus tracks the lifecycle of a customer order.
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	OrderStatusPaid            OrderStatus = "paid"
	OrderStatusProcessing      OrderStatus = "processing"
	OrderStatusCompleted       OrderStatus = "completed"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusAwaitingPayment,
	OrderStatusPaid,
	OrderStatusProcessing,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (o OrderStatus) IsTerminal() bool {
	return o == OrderStatusCompleted || o == OrderStatusCancelled
}

// CountsTowardRevenue reports whether the order participates in seller
// revenue and commission aggregates.
func (o OrderStatus) CountsTowardRevenue() bool {
	switch o {
	case OrderStatusPaid, OrderStatusProcessing, OrderStatusCompleted:
		return true
	default:
		return false
	}
}

// RevenueStatuses lists every status included in revenue aggregates.
func RevenueStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPaid, OrderStatusProcessing, OrderStatusCompleted}
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
