package sellers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jualbuku/bookmart-backend/internal/commission"
	"github.com/jualbuku/bookmart-backend/internal/notifications"
	"github.com/jualbuku/bookmart-backend/pkg/db"
	"github.com/jualbuku/bookmart-backend/pkg/db/models"
	"github.com/jualbuku/bookmart-backend/pkg/enums"
	pkgerrors "github.com/jualbuku/bookmart-backend/pkg/errors"
	"github.com/jualbuku/bookmart-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notifier interface {
	Notify(ctx context.Context, input notifications.NotifyInput) error
}

// DecisionInput captures an admin's lifecycle decision on a seller profile.
type DecisionInput struct {
	ProfileID uuid.UUID
	ActorID   uuid.UUID
}

// ApplyInput captures a user's request to become a seller.
type ApplyInput struct {
	UserID    uuid.UUID
	StoreName string `validate:"required"`
}

// Service defines seller lifecycle operations.
type Service interface {
	Apply(ctx context.Context, input ApplyInput) (*models.SellerProfile, error)
	Profile(ctx context.Context, profileID uuid.UUID) (*models.SellerProfile, error)
	ProfileByUser(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error)
	List(ctx context.Context, params pagination.Params, status *enums.SellerStatus) (*ProfileList, error)
	Approve(ctx context.Context, input DecisionInput) error
	Reject(ctx context.Context, input DecisionInput) error
	Suspend(ctx context.Context, input DecisionInput) error
	SetCommissionRate(ctx context.Context, profileID uuid.UUID, rate *decimal.Decimal) error
}

type service struct {
	repo     Repository
	tx       txRunner
	notifier notifier
	now      func() time.Time
}

// NewService builds the seller lifecycle service.
func NewService(repo Repository, tx txRunner, n notifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sellers repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, notifier: n, now: time.Now}, nil
}

func (s *service) Apply(ctx context.Context, input ApplyInput) (*models.SellerProfile, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	storeName := strings.TrimSpace(input.StoreName)
	if storeName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
	}

	profile := &models.SellerProfile{
		UserID:    input.UserID,
		StoreName: storeName,
		Status:    enums.SellerStatusPending,
	}
	created, err := s.repo.CreateProfile(ctx, profile)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "seller profile already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating seller profile")
	}
	return created, nil
}

func (s *service) Profile(ctx context.Context, profileID uuid.UUID) (*models.SellerProfile, error) {
	return s.loadProfile(ctx, profileID)
}

func (s *service) ProfileByUser(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	profile, err := s.repo.FindProfileByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading seller profile")
	}
	return profile, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, status *enums.SellerStatus) (*ProfileList, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid seller status filter")
	}
	list, err := s.repo.ListProfiles(ctx, params, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing seller profiles")
	}
	return list, nil
}

// Approve moves a profile into approved from pending, suspended or rejected.
// It stamps approved_at/approved_by, grants the seller role, and notifies
// the seller. Re-approving an approved profile is an idempotent no-op.
func (s *service) Approve(ctx context.Context, input DecisionInput) error {
	if err := validateDecision(input); err != nil {
		return err
	}

	profile, err := s.loadProfile(ctx, input.ProfileID)
	if err != nil {
		return err
	}
	if profile.Status == enums.SellerStatusApproved {
		return nil
	}
	if err := checkTransition(profile.Status, enums.SellerStatusApproved); err != nil {
		return err
	}

	now := s.now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		applied, err := repo.UpdateProfileStatus(ctx, profile.ID, profile.Status, enums.SellerStatusApproved, map[string]any{
			"approved_at": now,
			"approved_by": input.ActorID,
		})
		if err != nil {
			return err
		}
		if !applied {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "seller status changed concurrently")
		}
		return repo.UpdateUserRole(ctx, profile.UserID, enums.RoleSeller)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return typed
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "approving seller")
	}

	s.notify(ctx, profile.UserID, "Seller account approved",
		fmt.Sprintf("Your store %q can now list and sell books.", profile.StoreName))
	return nil
}

// Reject declines a pending application. No role change.
func (s *service) Reject(ctx context.Context, input DecisionInput) error {
	if err := validateDecision(input); err != nil {
		return err
	}

	profile, err := s.loadProfile(ctx, input.ProfileID)
	if err != nil {
		return err
	}
	if profile.Status == enums.SellerStatusRejected {
		return nil
	}
	if err := checkTransition(profile.Status, enums.SellerStatusRejected); err != nil {
		return err
	}

	applied, err := s.repo.UpdateProfileStatus(ctx, profile.ID, profile.Status, enums.SellerStatusRejected, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rejecting seller")
	}
	if !applied {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "seller status changed concurrently")
	}

	s.notify(ctx, profile.UserID, "Seller application rejected",
		fmt.Sprintf("Your application for %q was not approved.", profile.StoreName))
	return nil
}

// Suspend takes an approved seller off the storefront. Their books stop
// being visible through the catalog's visibility scope; already-placed
// orders remain valid.
func (s *service) Suspend(ctx context.Context, input DecisionInput) error {
	if err := validateDecision(input); err != nil {
		return err
	}

	profile, err := s.loadProfile(ctx, input.ProfileID)
	if err != nil {
		return err
	}
	if profile.Status == enums.SellerStatusSuspended {
		return nil
	}
	if err := checkTransition(profile.Status, enums.SellerStatusSuspended); err != nil {
		return err
	}

	applied, err := s.repo.UpdateProfileStatus(ctx, profile.ID, profile.Status, enums.SellerStatusSuspended, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "suspending seller")
	}
	if !applied {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "seller status changed concurrently")
	}

	s.notify(ctx, profile.UserID, "Seller account suspended",
		fmt.Sprintf("Your store %q has been suspended. Your listings are hidden from buyers.", profile.StoreName))
	return nil
}

// SetCommissionRate stores a per-seller override, or clears it so the
// platform default applies again.
func (s *service) SetCommissionRate(ctx context.Context, profileID uuid.UUID, rate *decimal.Decimal) error {
	if _, err := s.loadProfile(ctx, profileID); err != nil {
		return err
	}
	if rate != nil {
		if err := commission.ValidateRate(*rate); err != nil {
			return err
		}
	}
	if err := s.repo.UpdateProfile(ctx, profileID, map[string]any{"commission_rate": rate}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating commission rate")
	}
	return nil
}

// transitions holds the permitted lifecycle moves. Same-state calls are
// treated as idempotent no-ops before this table is consulted.
var transitions = map[enums.SellerStatus][]enums.SellerStatus{
	enums.SellerStatusPending:   {enums.SellerStatusApproved, enums.SellerStatusRejected},
	enums.SellerStatusApproved:  {enums.SellerStatusSuspended},
	enums.SellerStatusSuspended: {enums.SellerStatusApproved},
	enums.SellerStatusRejected:  {enums.SellerStatusApproved},
}

func checkTransition(from, to enums.SellerStatus) error {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "seller status transition not allowed").
		WithDetails(map[string]any{"from": string(from), "to": string(to)})
}

func validateDecision(input DecisionInput) error {
	if input.ProfileID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "seller profile id required")
	}
	if input.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}
	return nil
}

func (s *service) loadProfile(ctx context.Context, profileID uuid.UUID) (*models.SellerProfile, error) {
	if profileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller profile id required")
	}
	profile, err := s.repo.FindProfile(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading seller profile")
	}
	return profile, nil
}

func (s *service) notify(ctx context.Context, userID uuid.UUID, title, message string) {
	if s.notifier == nil {
		return
	}
	// Lifecycle decisions must not fail because the notification write did.
	_ = s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:  userID,
		Type:    enums.NotificationTypeSellerUpdate,
		Title:   title,
		Message: message,
	})
}
