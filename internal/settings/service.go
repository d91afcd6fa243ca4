package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jualbuku/bookmart-backend/internal/commission"
	"github.com/jualbuku/bookmart-backend/pkg/db"
	"github.com/jualbuku/bookmart-backend/pkg/db/models"
	pkgerrors "github.com/jualbuku/bookmart-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes platform configuration reads and admin writes.
type Service interface {
	DefaultCommissionRate(ctx context.Context) (decimal.Decimal, error)
	SetDefaultCommissionRate(ctx context.Context, rate decimal.Decimal) error
	ListPaymentMethods(ctx context.Context, activeOnly bool) ([]models.PaymentSetting, error)
	ActivePaymentMethod(ctx context.Context, code string) (*models.PaymentSetting, error)
	CreatePaymentMethod(ctx context.Context, input CreatePaymentMethodInput) (*models.PaymentSetting, error)
	UpdatePaymentMethod(ctx context.Context, id uuid.UUID, input UpdatePaymentMethodInput) error
}

// CreatePaymentMethodInput captures a new payment rail.
type CreatePaymentMethodInput struct {
	Code         string  `validate:"required,lowercase"`
	DisplayName  string  `validate:"required"`
	Instructions *string
	IsActive     bool
}

// UpdatePaymentMethodInput carries partial updates for a payment rail.
type UpdatePaymentMethodInput struct {
	DisplayName  *string
	Instructions *string
	IsActive     *bool
}

type service struct {
	repo Repository
}

// NewService builds the settings service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{repo: repo}, nil
}

// DefaultCommissionRate reads the platform-wide commission percentage. A
// missing or unparsable value is a configuration error, not a fallback.
func (s *service) DefaultCommissionRate(ctx context.Context) (decimal.Decimal, error) {
	setting, err := s.repo.FindSetting(ctx, models.SettingDefaultCommissionRate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeConfigMissing, "default commission rate is not configured")
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading default commission rate")
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(setting.Value))
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeConfigMissing, "default commission rate is malformed").
			WithDetails(map[string]any{"value": setting.Value})
	}
	if err := commission.ValidateRate(rate); err != nil {
		return decimal.Zero, err
	}
	return rate, nil
}

func (s *service) SetDefaultCommissionRate(ctx context.Context, rate decimal.Decimal) error {
	if err := commission.ValidateRate(rate); err != nil {
		return err
	}
	setting := &models.PlatformSetting{
		Key:   models.SettingDefaultCommissionRate,
		Value: rate.StringFixed(2),
	}
	if err := s.repo.UpsertSetting(ctx, setting); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving default commission rate")
	}
	return nil
}

func (s *service) ListPaymentMethods(ctx context.Context, activeOnly bool) ([]models.PaymentSetting, error) {
	rails, err := s.repo.ListPaymentSettings(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing payment methods")
	}
	return rails, nil
}

// ActivePaymentMethod resolves a payment code and rejects disabled rails.
func (s *service) ActivePaymentMethod(ctx context.Context, code string) (*models.PaymentSetting, error) {
	code = strings.TrimSpace(strings.ToLower(code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}

	rail, err := s.repo.FindPaymentSettingByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method").
				WithDetails(map[string]any{"payment_method": code})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving payment method")
	}
	if !rail.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is disabled").
			WithDetails(map[string]any{"payment_method": code})
	}
	return rail, nil
}

func (s *service) CreatePaymentMethod(ctx context.Context, input CreatePaymentMethodInput) (*models.PaymentSetting, error) {
	code := strings.TrimSpace(strings.ToLower(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method code is required")
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method display name is required")
	}

	rail := &models.PaymentSetting{
		Code:         code,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		Instructions: input.Instructions,
		IsActive:     input.IsActive,
	}
	created, err := s.repo.CreatePaymentSetting(ctx, rail)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment method code already exists").
				WithDetails(map[string]any{"payment_method": code})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating payment method")
	}
	return created, nil
}

func (s *service) UpdatePaymentMethod(ctx context.Context, id uuid.UUID, input UpdatePaymentMethodInput) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method id required")
	}

	updates := map[string]any{}
	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment method display name cannot be empty")
		}
		updates["display_name"] = name
	}
	if input.Instructions != nil {
		updates["instructions"] = *input.Instructions
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.repo.UpdatePaymentSetting(ctx, id, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating payment method")
	}
	return nil
}
