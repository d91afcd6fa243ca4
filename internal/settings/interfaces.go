package settings

import (
	"context"

	"github.com/google/uuid"
	"github.com/jualbuku/bookmart-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository defines persistence operations for platform and payment settings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindSetting(ctx context.Context, key string) (*models.PlatformSetting, error)
	UpsertSetting(ctx context.Context, setting *models.PlatformSetting) error
	ListPaymentSettings(ctx context.Context, activeOnly bool) ([]models.PaymentSetting, error)
	FindPaymentSettingByCode(ctx context.Context, code string) (*models.PaymentSetting, error)
	CreatePaymentSetting(ctx context.Context, setting *models.PaymentSetting) (*models.PaymentSetting, error)
	UpdatePaymentSetting(ctx context.Context, id uuid.UUID, updates map[string]any) error
}
