package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jualbuku/bookmart-backend/pkg/db/models"
	"github.com/jualbuku/bookmart-backend/pkg/enums"
	"github.com/jualbuku/bookmart-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository defines persistence operations for books and categories.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateBook(ctx context.Context, book *models.Book) (*models.Book, error)
	FindBook(ctx context.Context, id uuid.UUID) (*models.Book, error)
	FindVisibleBook(ctx context.Context, id uuid.UUID) (*models.Book, error)
	ListVisibleBooks(ctx context.Context, params pagination.Params, filters BookFilters) (*BookList, error)
	ListSellerBooks(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*BookList, error)
	ListPendingBooks(ctx context.Context, params pagination.Params) (*BookList, error)
	UpdateBook(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateApprovalStatus(ctx context.Context, id uuid.UUID, from, to enums.ApprovalStatus) (bool, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (bool, error)
	CountOrderReferences(ctx context.Context, bookID uuid.UUID) (int64, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error)
}
