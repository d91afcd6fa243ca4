package catalog

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

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateBook(ctx context.Context, book *models.Book) (*models.Book, error) {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return nil, err
	}
	return book, nil
}

func (r *repository) FindBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// visibleScope restricts books to storefront-visible rows: the listing is
// active and approved, and the seller is currently allowed to sell.
func visibleScope(db *gorm.DB) *gorm.DB {
	return db.
		Joins("JOIN seller_profiles ON seller_profiles.user_id = books.seller_id").
		Where("books.is_active = ?", true).
		Where("books.approval_status = ?", enums.ApprovalStatusApproved).
		Where("seller_profiles.status = ?", enums.SellerStatusApproved)
}

func (r *repository) FindVisibleBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	err := visibleScope(r.db.WithContext(ctx).Model(&models.Book{})).
		Where("books.id = ?", id).
		First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *repository) ListVisibleBooks(ctx context.Context, params pagination.Params, filters BookFilters) (*BookList, error) {
	query := visibleScope(r.db.WithContext(ctx).Model(&models.Book{}))

	if filters.CategoryID != nil {
		query = query.Where("books.category_id = ?", *filters.CategoryID)
	}
	if filters.SellerID != nil {
		query = query.Where("books.seller_id = ?", *filters.SellerID)
	}
	if filters.BookType != nil {
		query = query.Where("books.book_type = ?", *filters.BookType)
	}
	if filters.Query != "" {
		pattern := "%" + filters.Query + "%"
		query = query.Where("books.title ILIKE ? OR books.author ILIKE ?", pattern, pattern)
	}

	return r.paginateBooks(query, params, "books")
}

func (r *repository) ListSellerBooks(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*BookList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("books.seller_id = ?", sellerID)
	return r.paginateBooks(query, params, "books")
}

func (r *repository) ListPendingBooks(ctx context.Context, params pagination.Params) (*BookList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("books.approval_status = ?", enums.ApprovalStatusPending)
	return r.paginateBooks(query, params, "books")
}

func (r *repository) paginateBooks(query *gorm.DB, params pagination.Params, table string) (*BookList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"("+table+".created_at, "+table+".id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var books []models.Book
	err = query.
		Order(table + ".created_at DESC, " + table + ".id DESC").
		Limit(limit + 1).
		Find(&books).Error
	if err != nil {
		return nil, err
	}

	list := &BookList{}
	if len(books) > limit {
		books = books[:limit]
		last := books[len(books)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	list.Books = books
	return list, nil
}

func (r *repository) UpdateBook(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpdateApprovalStatus moves a listing between moderation states with a
// conditional update so concurrent decisions cannot double-apply.
func (r *repository) UpdateApprovalStatus(ctx context.Context, id uuid.UUID, from, to enums.ApprovalStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ? AND approval_status = ?", id, from).
		Update("approval_status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AdjustStock applies a delta guarded so stock never goes negative. Returns
// false when the guard rejected the change.
func (r *repository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id)
	if delta < 0 {
		query = query.Where("stock >= ?", -delta)
	}
	res := query.Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) CountOrderReferences(ctx context.Context, bookID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("book_id = ?", bookID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) DeleteBook(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Book{}).Error
}

func (r *repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}
