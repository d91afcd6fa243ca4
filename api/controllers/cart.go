package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jualbuku/bookmart-backend/api/middleware"
	"github.com/jualbuku/bookmart-backend/api/responses"
	"github.com/jualbuku/bookmart-backend/api/validators"
	"github.com/jualbuku/bookmart-backend/internal/cart"
	pkgerrors "github.com/jualbuku/bookmart-backend/pkg/errors"
	"github.com/jualbuku/bookmart-backend/pkg/logger"
)

type addCartItemRequest struct {
	BookID   uuid.UUID `json:"book_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"omitempty,min=1"`
}

type updateCartItemRequest struct {
	BookID   uuid.UUID `json:"book_id" validate:"required"`
	Quantity int       `json:"quantity"`
}

// GetCart returns the priced snapshot of the caller's cart.
func GetCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.Snapshot(r.Context(), middleware.UserUUIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func AddCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quantity := req.Quantity
		if quantity == 0 {
			quantity = 1
		}
		userID := middleware.UserUUIDFromContext(r.Context())
		if err := svc.AddItem(r.Context(), userID, req.BookID, quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snapshot(w, r, svc, userID, logg)
	}
}

func UpdateCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID := middleware.UserUUIDFromContext(r.Context())
		if err := svc.UpdateQuantity(r.Context(), userID, req.BookID, req.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snapshot(w, r, svc, userID, logg)
	}
}

func RemoveCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookID, err := uuid.Parse(chi.URLParam(r, "bookID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid book id"))
			return
		}
		userID := middleware.UserUUIDFromContext(r.Context())
		if err := svc.RemoveItem(r.Context(), userID, bookID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snapshot(w, r, svc, userID, logg)
	}
}

func ClearCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserUUIDFromContext(r.Context())
		if err := svc.Clear(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

func snapshot(w http.ResponseWriter, r *http.Request, svc cart.Service, userID uuid.UUID, logg *logger.Logger) {
	view, err := svc.Snapshot(r.Context(), userID)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, view)
}
