package settings

import (
	"context"

	"github.com/google/uuid"
	"github.com/jualbuku/bookmart-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a settings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindSetting(ctx context.Context, key string) (*models.PlatformSetting, error) {
	var setting models.PlatformSetting
	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *repository) UpsertSetting(ctx context.Context, setting *models.PlatformSetting) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(setting).Error
}

func (r *repository) ListPaymentSettings(ctx context.Context, activeOnly bool) ([]models.PaymentSetting, error) {
	query := r.db.WithContext(ctx).Order("code ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var rails []models.PaymentSetting
	if err := query.Find(&rails).Error; err != nil {
		return nil, err
	}
	return rails, nil
}

func (r *repository) FindPaymentSettingByCode(ctx context.Context, code string) (*models.PaymentSetting, error) {
	var rail models.PaymentSetting
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&rail).Error
	if err != nil {
		return nil, err
	}
	return &rail, nil
}

func (r *repository) CreatePaymentSetting(ctx context.Context, setting *models.PaymentSetting) (*models.PaymentSetting, error) {
	if err := r.db.WithContext(ctx).Create(setting).Error; err != nil {
		return nil, err
	}
	return setting, nil
}

func (r *repository) UpdatePaymentSetting(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentSetting{}).
		Where("id = ?", id).
		Updates(updates).Error
}
