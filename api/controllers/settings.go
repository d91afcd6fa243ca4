package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jualbuku/bookmart-backend/api/responses"
	"github.com/jualbuku/bookmart-backend/api/validators"
	"github.com/jualbuku/bookmart-backend/internal/settings"
	pkgerrors "github.com/jualbuku/bookmart-backend/pkg/errors"
	"github.com/jualbuku/bookmart-backend/pkg/logger"
)

type defaultRateRequest struct {
	Rate decimal.Decimal `json:"rate" validate:"required"`
}

type createPaymentMethodRequest struct {
	Code         string  `json:"code" validate:"required,lowercase"`
	DisplayName  string  `json:"display_name" validate:"required"`
	Instructions *string `json:"instructions"`
	IsActive     bool    `json:"is_active"`
}

type updatePaymentMethodRequest struct {
	DisplayName  *string `json:"display_name"`
	Instructions *string `json:"instructions"`
	IsActive     *bool   `json:"is_active"`
}

// GetDefaultCommissionRate returns the platform-wide commission rate.
func GetDefaultCommissionRate(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rate, err := svc.DefaultCommissionRate(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]decimal.Decimal{"rate": rate})
	}
}

func SetDefaultCommissionRate(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req defaultRateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetDefaultCommissionRate(r.Context(), req.Rate); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

// ListPaymentMethods serves both surfaces: the storefront sees active
// rails only, the back office sees everything.
func ListPaymentMethods(svc settings.Service, activeOnly bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		methods, err := svc.ListPaymentMethods(r.Context(), activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, methods)
	}
}

func CreatePaymentMethod(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPaymentMethodRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := svc.CreatePaymentMethod(r.Context(), settings.CreatePaymentMethodInput{
			Code:         req.Code,
			DisplayName:  req.DisplayName,
			Instructions: req.Instructions,
			IsActive:     req.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, method)
	}
}

func UpdatePaymentMethod(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "methodID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method id"))
			return
		}
		var req updatePaymentMethodRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.UpdatePaymentMethod(r.Context(), id, settings.UpdatePaymentMethodInput{
			DisplayName:  req.DisplayName,
			Instructions: req.Instructions,
			IsActive:     req.IsActive,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}
