package sellers

import (
	"context"

	"github.com/google/uuid"
	"github.com/jualbuku/bookmart-backend/pkg/db/models"
	"github.com/jualbuku/bookmart-backend/pkg/enums"
	"github.com/jualbuku/bookmart-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository defines persistence operations for seller profiles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateProfile(ctx context.Context, profile *models.SellerProfile) (*models.SellerProfile, error)
	FindProfile(ctx context.Context, id uuid.UUID) (*models.SellerProfile, error)
	FindProfileByUser(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error)
	ListProfiles(ctx context.Context, params pagination.Params, status *enums.SellerStatus) (*ProfileList, error)
	UpdateProfileStatus(ctx context.Context, id uuid.UUID, from, to enums.SellerStatus, updates map[string]any) (bool, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateUserRole(ctx context.Context, userID uuid.UUID, role enums.Role) error
}

// ProfileList wraps a page of seller profiles plus the next page cursor.
type ProfileList struct {
	Profiles   []models.SellerProfile `json:"profiles"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}
