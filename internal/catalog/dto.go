package catalog

import (
	"github.com/google/uuid"
	"github.com/jualbuku/bookmart-backend/pkg/db/models"
	"github.com/jualbuku/bookmart-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// BookFilters describe the inputs supported by the public listing query.
type BookFilters struct {
	CategoryID *uuid.UUID
	SellerID   *uuid.UUID
	BookType   *enums.BookType
	Query      string
}

// BookList wraps a page of books plus the next page cursor.
type BookList struct {
	Books      []models.Book `json:"books"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// CreateBookInput captures a seller's new listing.
type CreateBookInput struct {
	SellerID      uuid.UUID
	Title         string `validate:"required"`
	Author        string `validate:"required"`
	Description   *string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	BookType      enums.BookType
	Stock         int
	CategoryID    *uuid.UUID
}

// UpdateBookInput carries partial updates to an existing listing.
type UpdateBookInput struct {
	Title         *string
	Author        *string
	Description   *string
	Price         *decimal.Decimal
	OriginalPrice *decimal.Decimal
	BookType      *enums.BookType
	CategoryID    *uuid.UUID
	IsActive      *bool
}

// ApprovalInput captures an admin's listing moderation decision.
type ApprovalInput struct {
	BookID   uuid.UUID
	Approved bool
	ActorID  uuid.UUID
}
