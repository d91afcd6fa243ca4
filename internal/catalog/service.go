package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jualbuku/bookmart-backend/internal/notifications"
	"github.com/jualbuku/bookmart-backend/pkg/db"
	"github.com/jualbuku/bookmart-backend/pkg/db/models"
	"github.com/jualbuku/bookmart-backend/pkg/enums"
	pkgerrors "github.com/jualbuku/bookmart-backend/pkg/errors"
	"github.com/jualbuku/bookmart-backend/pkg/pagination"
	"gorm.io/gorm"
)

type notifier interface {
	Notify(ctx context.Context, input notifications.NotifyInput) error
}

// profileFinder resolves seller profiles for the listing eligibility gate.
// Satisfied by the sellers repository.
type profileFinder interface {
	FindProfileByUser(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error)
}

// Service defines catalog operations for buyers, sellers and admins.
type Service interface {
	ListBooks(ctx context.Context, params pagination.Params, filters BookFilters) (*BookList, error)
	GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error)
	ListSellerBooks(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*BookList, error)
	ListPendingBooks(ctx context.Context, params pagination.Params) (*BookList, error)
	CreateBook(ctx context.Context, input CreateBookInput) (*models.Book, error)
	UpdateBook(ctx context.Context, actorID, bookID uuid.UUID, input UpdateBookInput) error
	DeleteBook(ctx context.Context, actorID uuid.UUID, actorRole enums.Role, bookID uuid.UUID) error
	DecideListing(ctx context.Context, input ApprovalInput) error
	AdjustStock(ctx context.Context, actorID, bookID uuid.UUID, delta int) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
}

type service struct {
	repo     Repository
	profiles profileFinder
	notifier notifier
}

// NewService builds the catalog service. The notifier is optional; when nil,
// moderation decisions are stored without a seller notification.
func NewService(repo Repository, profiles profileFinder, n notifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("seller profile finder required")
	}
	return &service{repo: repo, profiles: profiles, notifier: n}, nil
}

func (s *service) ListBooks(ctx context.Context, params pagination.Params, filters BookFilters) (*BookList, error) {
	list, err := s.repo.ListVisibleBooks(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing books")
	}
	return list, nil
}

func (s *service) GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	book, err := s.repo.FindVisibleBook(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading book")
	}
	return book, nil
}

func (s *service) ListSellerBooks(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*BookList, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	list, err := s.repo.ListSellerBooks(ctx, sellerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing seller books")
	}
	return list, nil
}

func (s *service) ListPendingBooks(ctx context.Context, params pagination.Params) (*BookList, error) {
	list, err := s.repo.ListPendingBooks(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing pending books")
	}
	return list, nil
}

func (s *service) CreateBook(ctx context.Context, input CreateBookInput) (*models.Book, error) {
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "seller identity missing")
	}
	if err := s.requireEligibleSeller(ctx, input.SellerID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if strings.TrimSpace(input.Author) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "author is required")
	}
	if !input.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	bookType := input.BookType
	if bookType == "" {
		bookType = enums.BookTypePhysical
	}
	if !bookType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid book type").
			WithDetails(map[string]any{"book_type": string(input.BookType)})
	}

	// New listings always re-enter moderation.
	book := &models.Book{
		SellerID:       input.SellerID,
		Title:          strings.TrimSpace(input.Title),
		Author:         strings.TrimSpace(input.Author),
		Description:    input.Description,
		Price:          input.Price,
		OriginalPrice:  input.OriginalPrice,
		BookType:       bookType,
		Stock:          input.Stock,
		CategoryID:     input.CategoryID,
		IsActive:       true,
		ApprovalStatus: enums.ApprovalStatusPending,
	}
	created, err := s.repo.CreateBook(ctx, book)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating book")
	}
	return created, nil
}

func (s *service) UpdateBook(ctx context.Context, actorID, bookID uuid.UUID, input UpdateBookInput) error {
	if _, err := s.ownedBook(ctx, actorID, bookID); err != nil {
		return err
	}

	updates := map[string]any{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		updates["title"] = title
	}
	if input.Author != nil {
		author := strings.TrimSpace(*input.Author)
		if author == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "author cannot be empty")
		}
		updates["author"] = author
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		if !input.Price.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		updates["price"] = *input.Price
	}
	if input.OriginalPrice != nil {
		updates["original_price"] = *input.OriginalPrice
	}
	if input.BookType != nil {
		if !input.BookType.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid book type")
		}
		updates["book_type"] = *input.BookType
	}
	if input.CategoryID != nil {
		updates["category_id"] = *input.CategoryID
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.repo.UpdateBook(ctx, bookID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating book")
	}
	return nil
}

// DeleteBook removes a listing that has never been sold. Listings referenced
// by order history must be deactivated instead, so past orders keep a valid
// book reference.
func (s *service) DeleteBook(ctx context.Context, actorID uuid.UUID, actorRole enums.Role, bookID uuid.UUID) error {
	book, err := s.loadBook(ctx, bookID)
	if err != nil {
		return err
	}
	if actorRole != enums.RoleAdmin && book.SellerID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "book belongs to another seller")
	}

	refs, err := s.repo.CountOrderReferences(ctx, bookID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking order references")
	}
	if refs > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "book has order history; deactivate it instead").
			WithDetails(map[string]any{"order_item_count": refs})
	}

	if err := s.repo.DeleteBook(ctx, bookID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting book")
	}
	return nil
}

func (s *service) DecideListing(ctx context.Context, input ApprovalInput) error {
	if input.BookID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}
	if input.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}

	book, err := s.loadBook(ctx, input.BookID)
	if err != nil {
		return err
	}

	target := enums.ApprovalStatusRejected
	if input.Approved {
		target = enums.ApprovalStatusApproved
	}
	if book.ApprovalStatus == target {
		return nil
	}

	applied, err := s.repo.UpdateApprovalStatus(ctx, input.BookID, book.ApprovalStatus, target)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating approval status")
	}
	if !applied {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "listing was decided concurrently")
	}

	s.notifyListingDecision(ctx, book, target)
	return nil
}

func (s *service) notifyListingDecision(ctx context.Context, book *models.Book, status enums.ApprovalStatus) {
	if s.notifier == nil {
		return
	}
	title := "Listing approved"
	message := fmt.Sprintf("%q is now visible to buyers.", book.Title)
	if status == enums.ApprovalStatusRejected {
		title = "Listing rejected"
		message = fmt.Sprintf("%q was rejected by a moderator.", book.Title)
	}
	// Listing decisions must not fail because the notification write did.
	_ = s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:  book.SellerID,
		Type:    enums.NotificationTypeListingUpdate,
		Title:   title,
		Message: message,
	})
}

func (s *service) AdjustStock(ctx context.Context, actorID, bookID uuid.UUID, delta int) error {
	if delta == 0 {
		return nil
	}
	book, err := s.ownedBook(ctx, actorID, bookID)
	if err != nil {
		return err
	}
	if !book.BookType.RequiresStock() {
		return pkgerrors.New(pkgerrors.CodeValidation, "digital books do not track stock")
	}

	applied, err := s.repo.AdjustStock(ctx, bookID, delta)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adjusting stock")
	}
	if !applied {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot go negative").
			WithDetails(map[string]any{"delta": delta})
	}
	return nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing categories")
	}
	return categories, nil
}

func (s *service) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	created, err := s.repo.CreateCategory(ctx, &models.Category{Name: name})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists").
				WithDetails(map[string]any{"name": name})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating category")
	}
	return created, nil
}

func (s *service) loadBook(ctx context.Context, bookID uuid.UUID) (*models.Book, error) {
	if bookID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}
	book, err := s.repo.FindBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading book")
	}
	return book, nil
}

func (s *service) ownedBook(ctx context.Context, actorID, bookID uuid.UUID) (*models.Book, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "seller identity missing")
	}
	book, err := s.loadBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.SellerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "book belongs to another seller")
	}
	if err := s.requireEligibleSeller(ctx, actorID); err != nil {
		return nil, err
	}
	return book, nil
}

// requireEligibleSeller gates listing writes on an approved seller profile.
func (s *service) requireEligibleSeller(ctx context.Context, sellerID uuid.UUID) error {
	profile, err := s.profiles.FindProfileByUser(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeSellerIneligible, "seller profile is not approved")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading seller profile")
	}
	if !profile.Status.CanSell() {
		return pkgerrors.New(pkgerrors.CodeSellerIneligible, "seller profile is not approved").
			WithDetails(map[string]any{"seller_status": string(profile.Status)})
	}
	return nil
}
