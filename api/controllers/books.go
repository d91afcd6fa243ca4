package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jualbuku/bookmart-backend/api/middleware"
	"github.com/jualbuku/bookmart-backend/api/responses"
	"github.com/jualbuku/bookmart-backend/api/validators"
	"github.com/jualbuku/bookmart-backend/internal/catalog"
	"github.com/jualbuku/bookmart-backend/pkg/enums"
	pkgerrors "github.com/jualbuku/bookmart-backend/pkg/errors"
	"github.com/jualbuku/bookmart-backend/pkg/logger"
)

type createBookRequest struct {
	Title         string           `json:"title" validate:"required"`
	Author        string           `json:"author" validate:"required"`
	Description   *string          `json:"description"`
	Price         decimal.Decimal  `json:"price" validate:"required"`
	OriginalPrice *decimal.Decimal `json:"original_price"`
	BookType      string           `json:"book_type"`
	Stock         int              `json:"stock" validate:"omitempty,min=0"`
	CategoryID    *uuid.UUID       `json:"category_id"`
}

type updateBookRequest struct {
	Title         *string          `json:"title"`
	Author        *string          `json:"author"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price"`
	BookType      *string          `json:"book_type"`
	CategoryID    *uuid.UUID       `json:"category_id"`
	IsActive      *bool            `json:"is_active"`
}

type adjustStockRequest struct {
	Delta int `json:"delta" validate:"required"`
}

type listingDecisionRequest struct {
	Approved bool `json:"approved"`
}

// ListBooks is the public storefront listing.
func ListBooks(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := catalog.BookFilters{
			Query: strings.TrimSpace(r.URL.Query().Get("q")),
		}
		if filters.CategoryID, err = validators.ParseQueryUUID(r, "category_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.SellerID, err = validators.ParseQueryUUID(r, "seller_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("book_type")); raw != "" {
			bookType, parseErr := enums.ParseBookType(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid book_type filter"))
				return
			}
			filters.BookType = &bookType
		}

		list, err := svc.ListBooks(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetBook(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "bookID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid book id"))
			return
		}
		book, err := svc.GetBook(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, book)
	}
}

// ListMyBooks returns the acting seller's listings, hidden ones included.
func ListMyBooks(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListSellerBooks(r.Context(), middleware.UserUUIDFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func CreateBook(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBookRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.CreateBookInput{
			SellerID:      middleware.UserUUIDFromContext(r.Context()),
			Title:         req.Title,
			Author:        req.Author,
			Description:   req.Description,
			Price:         req.Price,
			OriginalPrice: req.OriginalPrice,
			BookType:      enums.BookType(req.BookType),
			Stock:         req.Stock,
			CategoryID:    req.CategoryID,
		}
		book, err := svc.CreateBook(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, book)
	}
}

func UpdateBook(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "bookID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid book id"))
			return
		}
		var req updateBookRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.UpdateBookInput{
			Title:         req.Title,
			Author:        req.Author,
			Description:   req.Description,
			Price:         req.Price,
			OriginalPrice: req.OriginalPrice,
			CategoryID:    req.CategoryID,
			IsActive:      req.IsActive,
		}
		if req.BookType != nil {
			bookType := enums.BookType(*req.BookType)
			input.BookType = &bookType
		}
		if err := svc.UpdateBook(r.Context(), middleware.UserUUIDFromContext(r.Context()), id, input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

func DeleteBook(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "bookID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid book id"))
			return
		}
		ctx := r.Context()
		if err := svc.DeleteBook(ctx, middleware.UserUUIDFromContext(ctx), middleware.RoleFromContext(ctx), id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func AdjustStock(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "bookID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid book id"))
			return
		}
		var req adjustStockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.AdjustStock(r.Context(), middleware.UserUUIDFromContext(r.Context()), id, req.Delta); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "adjusted"})
	}
}

func ListCategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

// ListPendingBooks is the admin moderation queue.
func ListPendingBooks(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListPendingBooks(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func DecideListing(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "bookID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid book id"))
			return
		}
		var req listingDecisionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := catalog.ApprovalInput{
			BookID:   id,
			Approved: req.Approved,
			ActorID:  middleware.UserUUIDFromContext(r.Context()),
		}
		if err := svc.DecideListing(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "decided"})
	}
}

type createCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

func CreateCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCategoryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := svc.CreateCategory(r.Context(), req.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}
