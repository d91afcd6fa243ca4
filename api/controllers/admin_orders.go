package controllers

import (
	"net/http"

	"github.com/jualbuku/bookmart-backend/api/middleware"
	"github.com/jualbuku/bookmart-backend/api/responses"
	"github.com/jualbuku/bookmart-backend/api/validators"
	"github.com/jualbuku/bookmart-backend/internal/orders"
	"github.com/jualbuku/bookmart-backend/pkg/logger"
)

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

// AdminListOrders returns all orders for back-office review.
func AdminListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := parseOrderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.AllOrders(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminPendingOrderCount backs the dashboard badge.
func AdminPendingOrderCount(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := svc.PendingCount(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"pending": count})
	}
}

func MarkOrderPaid(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return adminOrderTransition(logg, func(r *http.Request, input orders.TransitionInput) error {
		return svc.MarkPaid(r.Context(), input)
	})
}

func StartOrderProcessing(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return adminOrderTransition(logg, func(r *http.Request, input orders.TransitionInput) error {
		return svc.StartProcessing(r.Context(), input)
	})
}

func CompleteOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return adminOrderTransition(logg, func(r *http.Request, input orders.TransitionInput) error {
		return svc.Complete(r.Context(), input)
	})
}

func CancelOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req cancelOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := orders.TransitionInput{
			OrderID:   id,
			ActorID:   middleware.UserUUIDFromContext(r.Context()),
			ActorRole: middleware.RoleFromContext(r.Context()),
		}
		if err := svc.Cancel(r.Context(), input, req.Reason); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

func adminOrderTransition(logg *logger.Logger, apply func(*http.Request, orders.TransitionInput) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := orders.TransitionInput{
			OrderID:   id,
			ActorID:   middleware.UserUUIDFromContext(r.Context()),
			ActorRole: middleware.RoleFromContext(r.Context()),
		}
		if err := apply(r, input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}
