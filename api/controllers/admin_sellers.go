package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jualbuku/bookmart-backend/api/middleware"
	"github.com/jualbuku/bookmart-backend/api/responses"
	"github.com/jualbuku/bookmart-backend/api/validators"
	"github.com/jualbuku/bookmart-backend/internal/sellers"
	"github.com/jualbuku/bookmart-backend/pkg/enums"
	pkgerrors "github.com/jualbuku/bookmart-backend/pkg/errors"
	"github.com/jualbuku/bookmart-backend/pkg/logger"
)

type commissionRateRequest struct {
	Rate *decimal.Decimal `json:"rate"`
}

// AdminListSellers returns seller profiles, optionally filtered by status.
func AdminListSellers(svc sellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var status *enums.SellerStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, parseErr := enums.ParseSellerStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter"))
				return
			}
			status = &parsed
		}
		list, err := svc.List(r.Context(), params, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetSellerProfile(svc sellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseSellerProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profile, err := svc.Profile(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

func ApproveSeller(svc sellers.Service, logg *logger.Logger) http.HandlerFunc {
	return sellerDecision(logg, "approved", func(r *http.Request, input sellers.DecisionInput) error {
		return svc.Approve(r.Context(), input)
	})
}

func RejectSeller(svc sellers.Service, logg *logger.Logger) http.HandlerFunc {
	return sellerDecision(logg, "rejected", func(r *http.Request, input sellers.DecisionInput) error {
		return svc.Reject(r.Context(), input)
	})
}

func SuspendSeller(svc sellers.Service, logg *logger.Logger) http.HandlerFunc {
	return sellerDecision(logg, "suspended", func(r *http.Request, input sellers.DecisionInput) error {
		return svc.Suspend(r.Context(), input)
	})
}

// ReactivateSeller lifts a suspension. The lifecycle allows
// suspended -> approved, so this shares the approval path.
func ReactivateSeller(svc sellers.Service, logg *logger.Logger) http.HandlerFunc {
	return sellerDecision(logg, "approved", func(r *http.Request, input sellers.DecisionInput) error {
		return svc.Approve(r.Context(), input)
	})
}

// SetSellerCommissionRate overrides the platform default for one seller;
// a null rate clears the override.
func SetSellerCommissionRate(svc sellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseSellerProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req commissionRateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetCommissionRate(r.Context(), id, req.Rate); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

func sellerDecision(logg *logger.Logger, outcome string, apply func(*http.Request, sellers.DecisionInput) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseSellerProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := sellers.DecisionInput{
			ProfileID: id,
			ActorID:   middleware.UserUUIDFromContext(r.Context()),
		}
		if err := apply(r, input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": outcome})
	}
}

func parseSellerProfileID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "profileID"))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid seller profile id")
	}
	return id, nil
}
