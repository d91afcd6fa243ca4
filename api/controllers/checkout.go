package controllers

import (
	"net/http"

	"github.com/jualbuku/bookmart-backend/api/middleware"
	"github.com/jualbuku/bookmart-backend/api/responses"
	"github.com/jualbuku/bookmart-backend/api/validators"
	"github.com/jualbuku/bookmart-backend/internal/orders"
	"github.com/jualbuku/bookmart-backend/pkg/logger"
)

type checkoutRequest struct {
	PaymentMethod   string  `json:"payment_method" validate:"required"`
	ShippingAddress *string `json:"shipping_address"`
	Notes           *string `json:"notes"`
}

// Checkout converts the caller's cart into an order.
func Checkout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Checkout(r.Context(), orders.CheckoutInput{
			CustomerID:      middleware.UserUUIDFromContext(r.Context()),
			PaymentMethod:   req.PaymentMethod,
			ShippingAddress: req.ShippingAddress,
			Notes:           req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
