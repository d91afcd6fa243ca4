package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jualbuku/bookmart-backend/pkg/db/models"
	pkgerrors "github.com/jualbuku/bookmart-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// bookFinder resolves storefront-visible books. Satisfied by the catalog
// repository.
type bookFinder interface {
	FindVisibleBook(ctx context.Context, id uuid.UUID) (*models.Book, error)
}

// Line is one cart row joined with its book and priced.
type Line struct {
	Item      models.CartItem `json:"item"`
	Book      models.Book     `json:"book"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// View is the priced cart returned to the client and consumed by checkout.
type View struct {
	Lines    []Line          `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Service defines the cart aggregate operations.
type Service interface {
	AddItem(ctx context.Context, userID, bookID uuid.UUID, quantity int) error
	UpdateQuantity(ctx context.Context, userID, bookID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, userID, bookID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	Snapshot(ctx context.Context, userID uuid.UUID) (*View, error)
}

type service struct {
	repo  Repository
	books bookFinder
}

// NewService builds the cart service.
func NewService(repo Repository, books bookFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if books == nil {
		return nil, fmt.Errorf("book finder required")
	}
	return &service{repo: repo, books: books}, nil
}

// AddItem merges the quantity into any existing row for the same book. Stock
// is validated against the merged quantity, but not reserved; checkout is
// the only place stock is decremented.
func (s *service) AddItem(ctx context.Context, userID, bookID uuid.UUID, quantity int) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	book, err := s.visibleBook(ctx, bookID)
	if err != nil {
		return err
	}

	existing, err := s.repo.FindItem(ctx, userID, bookID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart item")
	}

	target := quantity
	if existing != nil {
		target += existing.Quantity
	}
	if err := checkStock(book, target); err != nil {
		return err
	}

	if existing != nil {
		if err := s.repo.UpdateQuantity(ctx, existing.ID, target); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart quantity")
		}
		return nil
	}

	_, err = s.repo.CreateItem(ctx, &models.CartItem{
		UserID:   userID,
		BookID:   bookID,
		Quantity: quantity,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adding cart item")
	}
	return nil
}

// UpdateQuantity replaces the row's quantity. A zero or negative quantity
// removes the row.
func (s *service) UpdateQuantity(ctx context.Context, userID, bookID uuid.UUID, quantity int) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, bookID)
	}

	existing, err := s.repo.FindItem(ctx, userID, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart item")
	}

	book, err := s.visibleBook(ctx, bookID)
	if err != nil {
		return err
	}
	if err := checkStock(book, quantity); err != nil {
		return err
	}

	if err := s.repo.UpdateQuantity(ctx, existing.ID, quantity); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart quantity")
	}
	return nil
}

// RemoveItem is an idempotent delete: removing a book that is not in the
// cart succeeds.
func (s *service) RemoveItem(ctx context.Context, userID, bookID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if _, err := s.repo.DeleteItem(ctx, userID, bookID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing cart item")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := s.repo.Clear(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
	}
	return nil
}

// Snapshot prices the cart at current book prices. Rows whose book has gone
// invisible since it was added are surfaced so the client can drop them.
func (s *service) Snapshot(ctx context.Context, userID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	items, err := s.repo.ListItems(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	view := &View{Subtotal: decimal.Zero}
	for _, item := range items {
		if item.Book == nil {
			continue
		}
		lineTotal := item.Book.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		view.Lines = append(view.Lines, Line{
			Item:      item,
			Book:      *item.Book,
			LineTotal: lineTotal,
		})
		view.Subtotal = view.Subtotal.Add(lineTotal)
	}
	return view, nil
}

func (s *service) visibleBook(ctx context.Context, bookID uuid.UUID) (*models.Book, error) {
	if bookID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}
	book, err := s.books.FindVisibleBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book is not available")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading book")
	}
	return book, nil
}

// checkStock rejects quantities above available stock for stock-tracked
// formats. Digital-only books are exempt.
func checkStock(book *models.Book, quantity int) error {
	if !book.BookType.RequiresStock() {
		return nil
	}
	if quantity > book.Stock {
		return pkgerrors.New(pkgerrors.CodeOutOfStock, "requested quantity exceeds available stock").
			WithDetails(map[string]any{
				"book_id":   book.ID,
				"requested": quantity,
				"available": book.Stock,
			})
	}
	return nil
}
