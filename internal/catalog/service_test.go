package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jualbuku/bookmart-backend/internal/notifications"
	"github.com/jualbuku/bookmart-backend/pkg/db/models"
	"github.com/jualbuku/bookmart-backend/pkg/enums"
	pkgerrors "github.com/jualbuku/bookmart-backend/pkg/errors"
	"github.com/jualbuku/bookmart-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeRepo struct {
	books         map[uuid.UUID]*models.Book
	sellerStatus  map[uuid.UUID]enums.SellerStatus
	orderRefs     map[uuid.UUID]int64
	categories    map[string]*models.Category
	approvalCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		books:        map[uuid.UUID]*models.Book{},
		sellerStatus: map[uuid.UUID]enums.SellerStatus{},
		orderRefs:    map[uuid.UUID]int64{},
		categories:   map[string]*models.Category{},
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) CreateBook(ctx context.Context, book *models.Book) (*models.Book, error) {
	book.ID = uuid.New()
	f.books[book.ID] = book
	return book, nil
}

func (f *fakeRepo) FindBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	if b, ok := f.books[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) visible(b *models.Book) bool {
	if !b.IsActive || b.ApprovalStatus != enums.ApprovalStatusApproved {
		return false
	}
	return f.sellerStatus[b.SellerID] == enums.SellerStatusApproved
}

func (f *fakeRepo) FindVisibleBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	b, ok := f.books[id]
	if !ok || !f.visible(b) {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeRepo) ListVisibleBooks(ctx context.Context, params pagination.Params, filters BookFilters) (*BookList, error) {
	list := &BookList{}
	for _, b := range f.books {
		if f.visible(b) {
			list.Books = append(list.Books, *b)
		}
	}
	return list, nil
}

func (f *fakeRepo) ListSellerBooks(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*BookList, error) {
	list := &BookList{}
	for _, b := range f.books {
		if b.SellerID == sellerID {
			list.Books = append(list.Books, *b)
		}
	}
	return list, nil
}

func (f *fakeRepo) ListPendingBooks(ctx context.Context, params pagination.Params) (*BookList, error) {
	list := &BookList{}
	for _, b := range f.books {
		if b.ApprovalStatus == enums.ApprovalStatusPending {
			list.Books = append(list.Books, *b)
		}
	}
	return list, nil
}

func (f *fakeRepo) UpdateBook(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	b := f.books[id]
	if title, ok := updates["title"].(string); ok {
		b.Title = title
	}
	if price, ok := updates["price"].(decimal.Decimal); ok {
		b.Price = price
	}
	if active, ok := updates["is_active"].(bool); ok {
		b.IsActive = active
	}
	return nil
}

func (f *fakeRepo) UpdateApprovalStatus(ctx context.Context, id uuid.UUID, from, to enums.ApprovalStatus) (bool, error) {
	f.approvalCalls++
	b, ok := f.books[id]
	if !ok || b.ApprovalStatus != from {
		return false, nil
	}
	b.ApprovalStatus = to
	return true, nil
}

func (f *fakeRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (bool, error) {
	b, ok := f.books[id]
	if !ok {
		return false, nil
	}
	if delta < 0 && b.Stock < -delta {
		return false, nil
	}
	b.Stock += delta
	return true, nil
}

func (f *fakeRepo) CountOrderReferences(ctx context.Context, bookID uuid.UUID) (int64, error) {
	return f.orderRefs[bookID], nil
}

func (f *fakeRepo) DeleteBook(ctx context.Context, id uuid.UUID) error {
	delete(f.books, id)
	return nil
}

func (f *fakeRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	for _, c := range f.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeRepo) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if _, exists := f.categories[category.Name]; exists {
		return nil, errors.New(`duplicate key value violates unique constraint "categories_name_key"`)
	}
	category.ID = uuid.New()
	f.categories[category.Name] = category
	return category, nil
}

type fakeNotifier struct {
	sent []notifications.NotifyInput
}

func (f *fakeNotifier) Notify(ctx context.Context, input notifications.NotifyInput) error {
	f.sent = append(f.sent, input)
	return nil
}

// fakeProfiles reads the repo's per-seller status map. Sellers the test never
// configured are treated as approved.
type fakeProfiles struct {
	repo *fakeRepo
}

func (f *fakeProfiles) FindProfileByUser(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error) {
	status, ok := f.repo.sellerStatus[userID]
	if !ok {
		status = enums.SellerStatusApproved
	}
	return &models.SellerProfile{ID: uuid.New(), UserID: userID, Status: status}, nil
}

func newTestService(t *testing.T) (Service, *fakeRepo, *fakeNotifier) {
	t.Helper()
	repo := newFakeRepo()
	notifier := &fakeNotifier{}
	svc, err := NewService(repo, &fakeProfiles{repo: repo}, notifier)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo, notifier
}

func (f *fakeRepo) seedBook(sellerID uuid.UUID, sellerStatus enums.SellerStatus, approval enums.ApprovalStatus, active bool) *models.Book {
	book := &models.Book{
		ID:             uuid.New(),
		SellerID:       sellerID,
		Title:          "Title",
		Author:         "Author",
		Price:          decimal.RequireFromString("50000"),
		BookType:       enums.BookTypePhysical,
		Stock:          5,
		IsActive:       active,
		ApprovalStatus: approval,
	}
	f.books[book.ID] = book
	f.sellerStatus[sellerID] = sellerStatus
	return book
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code())
	}
}

func TestCreateBookEntersModeration(t *testing.T) {
	svc, _, _ := newTestService(t)
	seller := uuid.New()
	description := "A structured look at dependency boundaries."

	book, err := svc.CreateBook(context.Background(), CreateBookInput{
		SellerID:    seller,
		Title:       "  Clean Architecture  ",
		Author:      "Robert Martin",
		Description: &description,
		Price:       decimal.RequireFromString("125000"),
		Stock:       3,
	})
	if err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	if book.Description == nil || *book.Description != description {
		t.Fatalf("expected description to persist, got %v", book.Description)
	}
	if book.ApprovalStatus != enums.ApprovalStatusPending {
		t.Fatalf("new listings must start pending, got %s", book.ApprovalStatus)
	}
	if book.BookType != enums.BookTypePhysical {
		t.Fatalf("expected default physical type, got %s", book.BookType)
	}
	if book.Title != "Clean Architecture" {
		t.Fatalf("expected trimmed title, got %q", book.Title)
	}
	if !book.IsActive {
		t.Fatal("new listings start active")
	}
}

func TestCreateBookValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	seller := uuid.New()
	base := CreateBookInput{
		SellerID: seller,
		Title:    "Title",
		Author:   "Author",
		Price:    decimal.RequireFromString("1000"),
	}

	missingTitle := base
	missingTitle.Title = "   "
	zeroPrice := base
	zeroPrice.Price = decimal.Zero
	negativeStock := base
	negativeStock.Stock = -1
	badType := base
	badType.BookType = enums.BookType("audiobook")

	for name, input := range map[string]CreateBookInput{
		"blank title":    missingTitle,
		"zero price":     zeroPrice,
		"negative stock": negativeStock,
		"unknown type":   badType,
	} {
		if _, err := svc.CreateBook(ctx, input); err == nil {
			t.Errorf("%s: expected validation error", name)
		} else {
			assertCode(t, err, pkgerrors.CodeValidation)
		}
	}
}

func TestSuspendedSellerCannotWriteListings(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	seller := uuid.New()
	repo.sellerStatus[seller] = enums.SellerStatusSuspended

	_, err := svc.CreateBook(ctx, CreateBookInput{
		SellerID: seller,
		Title:    "Title",
		Author:   "Author",
		Price:    decimal.RequireFromString("1000"),
	})
	assertCode(t, err, pkgerrors.CodeSellerIneligible)

	book := repo.seedBook(seller, enums.SellerStatusSuspended, enums.ApprovalStatusApproved, true)
	title := "New"
	err = svc.UpdateBook(ctx, seller, book.ID, UpdateBookInput{Title: &title})
	assertCode(t, err, pkgerrors.CodeSellerIneligible)

	err = svc.AdjustStock(ctx, seller, book.ID, 1)
	assertCode(t, err, pkgerrors.CodeSellerIneligible)
}

func TestSuspendedSellerBooksInvisible(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	visible := repo.seedBook(uuid.New(), enums.SellerStatusApproved, enums.ApprovalStatusApproved, true)
	hidden := repo.seedBook(uuid.New(), enums.SellerStatusSuspended, enums.ApprovalStatusApproved, true)

	list, err := svc.ListBooks(ctx, pagination.Params{}, BookFilters{})
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(list.Books) != 1 || list.Books[0].ID != visible.ID {
		t.Fatal("suspended seller's book must not be listed, even though it is approved")
	}

	if _, err := svc.GetBook(ctx, hidden.ID); err == nil {
		t.Fatal("expected suspended seller's book to be hidden from detail view")
	} else {
		assertCode(t, err, pkgerrors.CodeNotFound)
	}

	// The seller still sees it in their own dashboard.
	ownList, err := svc.ListSellerBooks(ctx, hidden.SellerID, pagination.Params{})
	if err != nil {
		t.Fatalf("ListSellerBooks: %v", err)
	}
	if len(ownList.Books) != 1 {
		t.Fatal("seller's own listing must include hidden books")
	}
}

func TestDecideListingApprovesAndNotifies(t *testing.T) {
	svc, repo, notifier := newTestService(t)
	ctx := context.Background()
	book := repo.seedBook(uuid.New(), enums.SellerStatusApproved, enums.ApprovalStatusPending, true)

	err := svc.DecideListing(ctx, ApprovalInput{BookID: book.ID, ActorID: uuid.New(), Approved: true})
	if err != nil {
		t.Fatalf("DecideListing: %v", err)
	}
	if repo.books[book.ID].ApprovalStatus != enums.ApprovalStatusApproved {
		t.Fatalf("expected approved, got %s", repo.books[book.ID].ApprovalStatus)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.sent))
	}
	if notifier.sent[0].UserID != book.SellerID || notifier.sent[0].Type != enums.NotificationTypeListingUpdate {
		t.Fatal("expected a listing_update notification to the seller")
	}
}

func TestDecideListingIdempotent(t *testing.T) {
	svc, repo, notifier := newTestService(t)
	ctx := context.Background()
	book := repo.seedBook(uuid.New(), enums.SellerStatusApproved, enums.ApprovalStatusApproved, true)

	err := svc.DecideListing(ctx, ApprovalInput{BookID: book.ID, ActorID: uuid.New(), Approved: true})
	if err != nil {
		t.Fatalf("re-approving an approved listing should be a no-op: %v", err)
	}
	if repo.approvalCalls != 0 {
		t.Fatal("no-op decision must not hit the store")
	}
	if len(notifier.sent) != 0 {
		t.Fatal("no-op decision must not re-notify")
	}
}

func TestDecideListingRejects(t *testing.T) {
	svc, repo, notifier := newTestService(t)
	ctx := context.Background()
	book := repo.seedBook(uuid.New(), enums.SellerStatusApproved, enums.ApprovalStatusPending, true)

	err := svc.DecideListing(ctx, ApprovalInput{BookID: book.ID, ActorID: uuid.New(), Approved: false})
	if err != nil {
		t.Fatalf("DecideListing: %v", err)
	}
	if repo.books[book.ID].ApprovalStatus != enums.ApprovalStatusRejected {
		t.Fatalf("expected rejected, got %s", repo.books[book.ID].ApprovalStatus)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].Title != "Listing rejected" {
		t.Fatal("expected rejection notification")
	}
}

func TestDeleteBookWithOrderHistoryRefused(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	seller := uuid.New()
	book := repo.seedBook(seller, enums.SellerStatusApproved, enums.ApprovalStatusApproved, true)
	repo.orderRefs[book.ID] = 4

	err := svc.DeleteBook(ctx, seller, enums.RoleSeller, book.ID)
	assertCode(t, err, pkgerrors.CodeConflict)
	if _, ok := repo.books[book.ID]; !ok {
		t.Fatal("book must survive a refused delete")
	}

	// Without history the delete goes through.
	fresh := repo.seedBook(seller, enums.SellerStatusApproved, enums.ApprovalStatusApproved, true)
	if err := svc.DeleteBook(ctx, seller, enums.RoleSeller, fresh.ID); err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}
	if _, ok := repo.books[fresh.ID]; ok {
		t.Fatal("expected book removed")
	}
}

func TestDeleteBookOwnership(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	book := repo.seedBook(uuid.New(), enums.SellerStatusApproved, enums.ApprovalStatusApproved, true)

	err := svc.DeleteBook(ctx, uuid.New(), enums.RoleSeller, book.ID)
	assertCode(t, err, pkgerrors.CodeForbidden)

	// Admins may delete any unsold listing.
	if err := svc.DeleteBook(ctx, uuid.New(), enums.RoleAdmin, book.ID); err != nil {
		t.Fatalf("admin DeleteBook: %v", err)
	}
}

func TestUpdateBookOwnership(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	book := repo.seedBook(uuid.New(), enums.SellerStatusApproved, enums.ApprovalStatusApproved, true)

	title := "New Title"
	err := svc.UpdateBook(ctx, uuid.New(), book.ID, UpdateBookInput{Title: &title})
	assertCode(t, err, pkgerrors.CodeForbidden)

	if err := svc.UpdateBook(ctx, book.SellerID, book.ID, UpdateBookInput{Title: &title}); err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}
	if repo.books[book.ID].Title != "New Title" {
		t.Fatalf("expected updated title, got %q", repo.books[book.ID].Title)
	}
}

func TestAdjustStock(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	seller := uuid.New()
	book := repo.seedBook(seller, enums.SellerStatusApproved, enums.ApprovalStatusApproved, true)
	book.Stock = 2

	if err := svc.AdjustStock(ctx, seller, book.ID, 3); err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if repo.books[book.ID].Stock != 5 {
		t.Fatalf("expected stock 5, got %d", repo.books[book.ID].Stock)
	}

	err := svc.AdjustStock(ctx, seller, book.ID, -6)
	assertCode(t, err, pkgerrors.CodeValidation)
	if repo.books[book.ID].Stock != 5 {
		t.Fatal("failed adjustment must leave stock unchanged")
	}

	digital := repo.seedBook(seller, enums.SellerStatusApproved, enums.ApprovalStatusApproved, true)
	digital.BookType = enums.BookTypeDigital
	err = svc.AdjustStock(ctx, seller, digital.ID, 1)
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateCategoryConflict(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateCategory(ctx, " Fiction "); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	_, err := svc.CreateCategory(ctx, "Fiction")
	assertCode(t, err, pkgerrors.CodeConflict)
}
