package controllers

import (
	"net/http"

	"github.com/jualbuku/bookmart-backend/api/middleware"
	"github.com/jualbuku/bookmart-backend/api/responses"
	"github.com/jualbuku/bookmart-backend/api/validators"
	"github.com/jualbuku/bookmart-backend/internal/sellers"
	"github.com/jualbuku/bookmart-backend/pkg/logger"
)

type applySellerRequest struct {
	StoreName string `json:"store_name" validate:"required"`
}

// ApplyAsSeller creates a pending seller profile for the caller.
func ApplyAsSeller(svc sellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req applySellerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profile, err := svc.Apply(r.Context(), sellers.ApplyInput{
			UserID:    middleware.UserUUIDFromContext(r.Context()),
			StoreName: req.StoreName,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, profile)
	}
}

// MySellerProfile returns the caller's seller profile, whatever its status.
func MySellerProfile(svc sellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := svc.ProfileByUser(r.Context(), middleware.UserUUIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
