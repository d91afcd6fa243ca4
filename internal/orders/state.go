package orders

import (
	"github.com/jualbuku/bookmart-backend/pkg/enums"
	pkgerrors "github.com/jualbuku/bookmart-backend/pkg/errors"
)

// statusTransitions is the single source of truth for the order lifecycle.
// cancelled is reachable from every non-terminal state; paid can be reached
// from any non-terminal state because an admin may confirm payment even
// before the customer uploads proof.
var statusTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending: {
		enums.OrderStatusAwaitingPayment,
		enums.OrderStatusPaid,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusAwaitingPayment: {
		enums.OrderStatusPaid,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusPaid: {
		enums.OrderStatusProcessing,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusProcessing: {
		enums.OrderStatusCompleted,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusCompleted: {},
	enums.OrderStatusCancelled: {},
}

// checkStatusTransition rejects moves not present in the table. Callers
// treat same-state as an idempotent no-op before consulting it.
func checkStatusTransition(from, to enums.OrderStatus) error {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "order status transition not allowed").
		WithDetails(map[string]any{"from": string(from), "to": string(to)})
}
