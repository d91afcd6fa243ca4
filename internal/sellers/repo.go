package sellers

import (
	"context"

	"github.com/google/uuid"
	"github.com/jualbuku/bookmart-backend/pkg/db/models"
	"github.com/jualbuku/bookmart-backend/pkg/enums"
	"github.com/jualbuku/bookmart-backend/pkg/pagination"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a sellers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateProfile(ctx context.Context, profile *models.SellerProfile) (*models.SellerProfile, error) {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *repository) FindProfile(ctx context.Context, id uuid.UUID) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) FindProfileByUser(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) ListProfiles(ctx context.Context, params pagination.Params, status *enums.SellerStatus) (*ProfileList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.SellerProfile{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var rows []models.SellerProfile
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &ProfileList{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	list.Profiles = rows
	return list, nil
}

// UpdateProfileStatus applies a lifecycle transition as a conditional
// single-row update, so two admins deciding concurrently cannot both win.
func (r *repository) UpdateProfileStatus(ctx context.Context, id uuid.UUID, from, to enums.SellerStatus, updates map[string]any) (bool, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = to

	res := r.db.WithContext(ctx).
		Model(&models.SellerProfile{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.SellerProfile{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpdateUserRole(ctx context.Context, userID uuid.UUID, role enums.Role) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("role", role).Error
}
