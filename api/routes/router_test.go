package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jualbuku/bookmart-backend/internal/cart"
	"github.com/jualbuku/bookmart-backend/internal/catalog"
	"github.com/jualbuku/bookmart-backend/internal/notifications"
	"github.com/jualbuku/bookmart-backend/internal/orders"
	"github.com/jualbuku/bookmart-backend/internal/sellers"
	"github.com/jualbuku/bookmart-backend/internal/settings"
	pkgauth "github.com/jualbuku/bookmart-backend/pkg/auth"
	"github.com/jualbuku/bookmart-backend/pkg/config"
	"github.com/jualbuku/bookmart-backend/pkg/db/models"
	"github.com/jualbuku/bookmart-backend/pkg/enums"
	"github.com/jualbuku/bookmart-backend/pkg/logger"
	"github.com/jualbuku/bookmart-backend/pkg/pagination"
	pkgredis "github.com/jualbuku/bookmart-backend/pkg/redis"
)

type stubCatalogService struct{}

func (stubCatalogService) ListBooks(ctx context.Context, params pagination.Params, filters catalog.BookFilters) (*catalog.BookList, error) {
	return &catalog.BookList{}, nil
}

func (stubCatalogService) GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	panic("unimplemented")
}

func (stubCatalogService) ListSellerBooks(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*catalog.BookList, error) {
	return &catalog.BookList{}, nil
}

func (stubCatalogService) ListPendingBooks(ctx context.Context, params pagination.Params) (*catalog.BookList, error) {
	return &catalog.BookList{}, nil
}

func (stubCatalogService) CreateBook(ctx context.Context, input catalog.CreateBookInput) (*models.Book, error) {
	panic("unimplemented")
}

func (stubCatalogService) UpdateBook(ctx context.Context, actorID, bookID uuid.UUID, input catalog.UpdateBookInput) error {
	panic("unimplemented")
}

func (stubCatalogService) DeleteBook(ctx context.Context, actorID uuid.UUID, actorRole enums.Role, bookID uuid.UUID) error {
	panic("unimplemented")
}

func (stubCatalogService) DecideListing(ctx context.Context, input catalog.ApprovalInput) error {
	panic("unimplemented")
}

func (stubCatalogService) AdjustStock(ctx context.Context, actorID, bookID uuid.UUID, delta int) error {
	panic("unimplemented")
}

func (stubCatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return nil, nil
}

func (stubCatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	panic("unimplemented")
}

type stubCartService struct{}

func (stubCartService) AddItem(ctx context.Context, userID, bookID uuid.UUID, quantity int) error {
	panic("unimplemented")
}

func (stubCartService) UpdateQuantity(ctx context.Context, userID, bookID uuid.UUID, quantity int) error {
	panic("unimplemented")
}

func (stubCartService) RemoveItem(ctx context.Context, userID, bookID uuid.UUID) error {
	panic("unimplemented")
}

func (stubCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	panic("unimplemented")
}

func (stubCartService) Snapshot(ctx context.Context, userID uuid.UUID) (*cart.View, error) {
	return &cart.View{}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) Checkout(ctx context.Context, input orders.CheckoutInput) (*models.Order, error) {
	return &models.Order{ID: uuid.New(), CustomerID: input.CustomerID, Status: enums.OrderStatusPending}, nil
}

func (stubOrdersService) SubmitPaymentProof(ctx context.Context, customerID, orderID uuid.UUID, proof string) error {
	panic("unimplemented")
}

func (stubOrdersService) MarkPaid(ctx context.Context, input orders.TransitionInput) error {
	panic("unimplemented")
}

func (stubOrdersService) StartProcessing(ctx context.Context, input orders.TransitionInput) error {
	panic("unimplemented")
}

func (stubOrdersService) Complete(ctx context.Context, input orders.TransitionInput) error {
	panic("unimplemented")
}

func (stubOrdersService) Cancel(ctx context.Context, input orders.TransitionInput, reason string) error {
	panic("unimplemented")
}

func (stubOrdersService) SystemCancel(ctx context.Context, orderID uuid.UUID, reason string) error {
	panic("unimplemented")
}

func (stubOrdersService) Order(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) CustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters orders.OrderFilters) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (stubOrdersService) SellerOrders(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (stubOrdersService) AllOrders(ctx context.Context, params pagination.Params, filters orders.OrderFilters) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (stubOrdersService) SellerRevenue(ctx context.Context, sellerID uuid.UUID) (*orders.RevenueSummary, error) {
	return &orders.RevenueSummary{SellerID: sellerID}, nil
}

func (stubOrdersService) PendingCount(ctx context.Context) (int64, error) {
	return 0, nil
}

type stubSellersService struct{}

func (stubSellersService) Apply(ctx context.Context, input sellers.ApplyInput) (*models.SellerProfile, error) {
	panic("unimplemented")
}

func (stubSellersService) Profile(ctx context.Context, profileID uuid.UUID) (*models.SellerProfile, error) {
	panic("unimplemented")
}

func (stubSellersService) ProfileByUser(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error) {
	return &models.SellerProfile{UserID: userID}, nil
}

func (stubSellersService) List(ctx context.Context, params pagination.Params, status *enums.SellerStatus) (*sellers.ProfileList, error) {
	return &sellers.ProfileList{}, nil
}

func (stubSellersService) Approve(ctx context.Context, input sellers.DecisionInput) error {
	panic("unimplemented")
}

func (stubSellersService) Reject(ctx context.Context, input sellers.DecisionInput) error {
	panic("unimplemented")
}

func (stubSellersService) Suspend(ctx context.Context, input sellers.DecisionInput) error {
	panic("unimplemented")
}

func (stubSellersService) SetCommissionRate(ctx context.Context, profileID uuid.UUID, rate *decimal.Decimal) error {
	panic("unimplemented")
}

type stubSettingsService struct{}

func (stubSettingsService) DefaultCommissionRate(ctx context.Context) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (stubSettingsService) SetDefaultCommissionRate(ctx context.Context, rate decimal.Decimal) error {
	panic("unimplemented")
}

func (stubSettingsService) ListPaymentMethods(ctx context.Context, activeOnly bool) ([]models.PaymentSetting, error) {
	return nil, nil
}

func (stubSettingsService) ActivePaymentMethod(ctx context.Context, code string) (*models.PaymentSetting, error) {
	panic("unimplemented")
}

func (stubSettingsService) CreatePaymentMethod(ctx context.Context, input settings.CreatePaymentMethodInput) (*models.PaymentSetting, error) {
	panic("unimplemented")
}

func (stubSettingsService) UpdatePaymentMethod(ctx context.Context, id uuid.UUID, input settings.UpdatePaymentMethodInput) error {
	panic("unimplemented")
}

type stubNotificationsService struct{}

func (stubNotificationsService) Notify(ctx context.Context, input notifications.NotifyInput) error {
	return nil
}

func (stubNotificationsService) List(ctx context.Context, userID uuid.UUID, params pagination.Params, unreadOnly bool) (*notifications.NotificationList, error) {
	return &notifications.NotificationList{}, nil
}

func (stubNotificationsService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubNotificationsService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

// memoryIdemStore is an in-process stand-in for the redis idempotency store.
type memoryIdemStore struct {
	data map[string]string
}

func newMemoryIdemStore() *memoryIdemStore {
	return &memoryIdemStore{data: make(map[string]string)}
}

func (s *memoryIdemStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := s.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (s *memoryIdemStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := s.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	s.data[key] = str
	return true, nil
}

func (s *memoryIdemStore) IdempotencyKey(scope, id string) string {
	return "test:idem:" + scope + ":" + id
}

func (s *memoryIdemStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func newTestRouter(cfg *config.Config) http.Handler {
	return newTestRouterWithIdempotency(cfg, nil)
}

func newTestRouterWithIdempotency(cfg *config.Config, idem pkgredis.IdempotencyStore) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(cfg, logg, nil, idem, Services{
		Catalog:       stubCatalogService{},
		Cart:          stubCartService{},
		Orders:        stubOrdersService{},
		Sellers:       stubSellersService{},
		Settings:      stubSettingsService{},
		Notifications: stubNotificationsService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	return buildTokenWithUserID(t, cfg, role, uuid.New())
}

func buildTokenWithUserID(t *testing.T, cfg *config.Config, role enums.Role, userID uuid.UUID) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: userID,
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPublicBooksNeedNoToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/v1/books", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public books got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleClient))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for own orders got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	nonAdmin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders/pending-count", nil)
	nonAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleClient))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, nonAdmin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders/pending-count", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestSellerGroupRequiresSellerRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	client := httptest.NewRequest(http.MethodGet, "/api/v1/seller/revenue", nil)
	client.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleClient))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, client)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for client got %d", resp.Code)
	}

	seller := httptest.NewRequest(http.MethodGet, "/api/v1/seller/revenue", nil)
	seller.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleSeller))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, seller)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for seller revenue got %d", resp.Code)
	}
}

func TestSellerApplyOpenToClients(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sellers/me", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleClient))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for own seller profile got %d", resp.Code)
	}
}

func TestCheckoutRequiresIdempotencyKey(t *testing.T) {
	cfg := testConfig()
	router := newTestRouterWithIdempotency(cfg, newMemoryIdemStore())
	token := buildToken(t, cfg, enums.RoleClient)

	bare := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"payment_method":"bank_transfer"}`))
	bare.Header.Set("Authorization", "Bearer "+token)
	bare.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, bare)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without Idempotency-Key got %d", resp.Code)
	}

	keyed := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"payment_method":"bank_transfer"}`))
	keyed.Header.Set("Authorization", "Bearer "+token)
	keyed.Header.Set("Content-Type", "application/json")
	keyed.Header.Set("Idempotency-Key", uuid.NewString())
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, keyed)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 with Idempotency-Key got %d", resp.Code)
	}
}

func TestCheckoutUnguardedWithoutStore(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"payment_method":"bank_transfer"}`))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleClient))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 when no store is wired got %d", resp.Code)
	}
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
	if env := resp.Header().Get("X-BookMart-Env"); env != "test" {
		t.Fatalf("expected env header, got %q", env)
	}
}
