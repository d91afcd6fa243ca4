package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jualbuku/bookmart-backend/internal/cart"
	"github.com/jualbuku/bookmart-backend/internal/catalog"
	"github.com/jualbuku/bookmart-backend/internal/commission"
	"github.com/jualbuku/bookmart-backend/internal/notifications"
	"github.com/jualbuku/bookmart-backend/internal/sellers"
	"github.com/jualbuku/bookmart-backend/pkg/db"
	"github.com/jualbuku/bookmart-backend/pkg/db/models"
	"github.com/jualbuku/bookmart-backend/pkg/enums"
	pkgerrors "github.com/jualbuku/bookmart-backend/pkg/errors"
	"github.com/jualbuku/bookmart-backend/pkg/metrics"
	"github.com/jualbuku/bookmart-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notifier interface {
	Notify(ctx context.Context, input notifications.NotifyInput) error
}

// paymentConfig resolves checkout configuration owned by the settings
// component.
type paymentConfig interface {
	DefaultCommissionRate(ctx context.Context) (decimal.Decimal, error)
	ActivePaymentMethod(ctx context.Context, code string) (*models.PaymentSetting, error)
}

// TransitionInput captures a status change request on an order.
type TransitionInput struct {
	OrderID   uuid.UUID
	ActorID   uuid.UUID
	ActorRole enums.Role
}

// Service is the order engine: checkout, the status state machine, and the
// order read side.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*models.Order, error)
	SubmitPaymentProof(ctx context.Context, customerID, orderID uuid.UUID, proof string) error
	MarkPaid(ctx context.Context, input TransitionInput) error
	StartProcessing(ctx context.Context, input TransitionInput) error
	Complete(ctx context.Context, input TransitionInput) error
	Cancel(ctx context.Context, input TransitionInput, reason string) error
	SystemCancel(ctx context.Context, orderID uuid.UUID, reason string) error
	Order(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	CustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters OrderFilters) (*OrderList, error)
	SellerOrders(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*OrderList, error)
	AllOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error)
	SellerRevenue(ctx context.Context, sellerID uuid.UUID) (*RevenueSummary, error)
	PendingCount(ctx context.Context) (int64, error)
}

type service struct {
	repo       Repository
	tx         txRunner
	cartRepo   cart.Repository
	bookRepo   catalog.Repository
	sellerRepo sellers.Repository
	settings   paymentConfig
	notifier   notifier
	numbers    NumberGenerator
	metrics    *metrics.OrderMetrics
	maxRetries int
	now        func() time.Time
}

// NewService builds the order engine with its collaborators. The notifier
// and metrics are optional.
func NewService(
	repo Repository,
	tx txRunner,
	cartRepo cart.Repository,
	bookRepo catalog.Repository,
	sellerRepo sellers.Repository,
	settings paymentConfig,
	n notifier,
	numbers NumberGenerator,
	m *metrics.OrderMetrics,
	maxRetries int,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if bookRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if sellerRepo == nil {
		return nil, fmt.Errorf("sellers repository required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings collaborator required")
	}
	if numbers == nil {
		numbers = NewNumberGenerator()
	}
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &service{
		repo:       repo,
		tx:         tx,
		cartRepo:   cartRepo,
		bookRepo:   bookRepo,
		sellerRepo: sellerRepo,
		settings:   settings,
		notifier:   n,
		numbers:    numbers,
		metrics:    m,
		maxRetries: maxRetries,
		now:        time.Now,
	}, nil
}

// Checkout atomically converts the customer's cart into an order with
// frozen per-line price and commission snapshots. Stock is decremented
// with a guarded update inside the same transaction; any failure rolls the
// whole order back and leaves the cart untouched.
func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*models.Order, error) {
	order, err := s.checkout(ctx, input)
	if err != nil {
		s.incCheckout(checkoutOutcome(err))
		return nil, err
	}
	s.incCheckout("success")
	s.notifyCustomer(ctx, order, "Order created",
		fmt.Sprintf("Order %s was created and is awaiting payment.", order.OrderNumber))
	return order, nil
}

func (s *service) checkout(ctx context.Context, input CheckoutInput) (*models.Order, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
	}

	rail, err := s.settings.ActivePaymentMethod(ctx, input.PaymentMethod)
	if err != nil {
		return nil, err
	}

	defaultRate, err := s.settings.DefaultCommissionRate(ctx)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		number, err := s.numbers.Next(s.now())
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeOrderCreation, err, "generating order number")
		}

		order, err = s.checkoutTx(ctx, input, rail.Code, number, defaultRate)
		if err != nil {
			if db.IsUniqueViolation(err) {
				continue
			}
			return nil, err
		}
		return order, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeOrderCreation, "order number generation exhausted retries")
}

func (s *service) checkoutTx(ctx context.Context, input CheckoutInput, paymentMethod, number string, defaultRate decimal.Decimal) (*models.Order, error) {
	var created *models.Order

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		bookRepo := s.bookRepo.WithTx(tx)
		sellerRepo := s.sellerRepo.WithTx(tx)
		ordersRepo := s.repo.WithTx(tx)

		lines, err := cartRepo.ListItems(ctx, input.CustomerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		profiles := map[uuid.UUID]*models.SellerProfile{}
		subtotal := decimal.Zero
		totalCommission := decimal.Zero
		needsShipping := false
		items := make([]models.OrderItem, 0, len(lines))

		for _, line := range lines {
			// Re-read the authoritative book row; cart rows carry no
			// trustworthy price or stock data.
			book, err := bookRepo.FindBook(ctx, line.BookID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation, "a cart item is no longer available").
						WithDetails(map[string]any{"book_id": line.BookID})
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading book")
			}
			if !book.IsActive || book.ApprovalStatus != enums.ApprovalStatusApproved {
				return pkgerrors.New(pkgerrors.CodeValidation, "a cart item is no longer available").
					WithDetails(map[string]any{"book_id": book.ID, "title": book.Title})
			}

			profile, ok := profiles[book.SellerID]
			if !ok {
				profile, err = sellerRepo.FindProfileByUser(ctx, book.SellerID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return pkgerrors.New(pkgerrors.CodeSellerIneligible, "seller is not eligible to sell").
							WithDetails(map[string]any{"book_id": book.ID})
					}
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading seller profile")
				}
				profiles[book.SellerID] = profile
			}
			if !profile.Status.CanSell() {
				return pkgerrors.New(pkgerrors.CodeSellerIneligible, "seller is not eligible to sell").
					WithDetails(map[string]any{"book_id": book.ID, "seller_status": string(profile.Status)})
			}

			if book.BookType.RequiresStock() {
				applied, err := bookRepo.AdjustStock(ctx, book.ID, -line.Quantity)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrementing stock")
				}
				if !applied {
					return pkgerrors.New(pkgerrors.CodeOutOfStock, "insufficient stock").
						WithDetails(map[string]any{
							"book_id":   book.ID,
							"title":     book.Title,
							"requested": line.Quantity,
						})
				}
			}
			if book.BookType.RequiresShipping() {
				needsShipping = true
			}

			rate, err := commission.EffectiveRate(profile, defaultRate)
			if err != nil {
				return err
			}

			lineTotal := commission.LineTotal(book.Price, line.Quantity)
			lineCommission := commission.LineAmount(book.Price, line.Quantity, rate)
			subtotal = subtotal.Add(lineTotal)
			totalCommission = totalCommission.Add(lineCommission)

			items = append(items, models.OrderItem{
				BookID:           book.ID,
				SellerID:         book.SellerID,
				Title:            book.Title,
				Quantity:         line.Quantity,
				UnitPrice:        book.Price,
				CommissionAmount: lineCommission,
			})
		}

		if needsShipping && (input.ShippingAddress == nil || strings.TrimSpace(*input.ShippingAddress) == "") {
			return pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required for physical books")
		}

		order := &models.Order{
			OrderNumber:        number,
			CustomerID:         input.CustomerID,
			Status:             enums.OrderStatusPending,
			PaymentMethod:      paymentMethod,
			Subtotal:           subtotal,
			PlatformCommission: totalCommission,
			Total:              subtotal,
			ShippingAddress:    input.ShippingAddress,
			Notes:              input.Notes,
		}
		if _, err := ordersRepo.CreateOrder(ctx, order); err != nil {
			// Unique violations on order_number bubble up for the retry loop.
			if db.IsUniqueViolation(err) {
				return err
			}
			return pkgerrors.Wrap(pkgerrors.CodeOrderCreation, err, "persisting order")
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := ordersRepo.CreateOrderItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeOrderCreation, err, "persisting order items")
		}

		if err := cartRepo.Clear(ctx, input.CustomerID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeOrderCreation, err, "clearing cart")
		}

		order.Items = items
		created = order
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, err
	}
	return created, nil
}

// SubmitPaymentProof is the one customer-triggered transition: it moves the
// customer's own pending order to awaiting_payment and stores the proof
// reference.
func (s *service) SubmitPaymentProof(ctx context.Context, customerID, orderID uuid.UUID, proof string) error {
	if customerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
	}
	proof = strings.TrimSpace(proof)
	if proof == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment proof is required")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.CustomerID != customerID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	return s.transition(ctx, order, enums.OrderStatusAwaitingPayment, map[string]any{"payment_proof": proof},
		"Payment proof received",
		fmt.Sprintf("We received payment proof for order %s and will verify it shortly.", order.OrderNumber))
}

// MarkPaid confirms payment. Reachable from any non-terminal state so an
// admin can settle an order even before proof was uploaded.
func (s *service) MarkPaid(ctx context.Context, input TransitionInput) error {
	return s.adminTransition(ctx, input, enums.OrderStatusPaid, nil,
		"Payment confirmed", "Payment for order %s was confirmed.")
}

func (s *service) StartProcessing(ctx context.Context, input TransitionInput) error {
	return s.adminTransition(ctx, input, enums.OrderStatusProcessing, nil,
		"Order processing", "Order %s is being prepared.")
}

func (s *service) Complete(ctx context.Context, input TransitionInput) error {
	return s.adminTransition(ctx, input, enums.OrderStatusCompleted, nil,
		"Order completed", "Order %s is complete. Thank you for shopping with us.")
}

func (s *service) Cancel(ctx context.Context, input TransitionInput, reason string) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.ActorRole.CanManagePlatform() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins may change order status")
	}
	return s.cancel(ctx, input.OrderID, reason)
}

// SystemCancel cancels an order without an acting user, on behalf of the
// scheduler that expires unpaid orders.
func (s *service) SystemCancel(ctx context.Context, orderID uuid.UUID, reason string) error {
	return s.cancel(ctx, orderID, reason)
}

// cancel moves an order to cancelled and returns reserved stock to the
// shelf in the same transaction. Stock was decremented at checkout, so every
// non-terminal order still holds its units.
func (s *service) cancel(ctx context.Context, orderID uuid.UUID, reason string) error {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status == enums.OrderStatusCancelled {
		return nil
	}
	if err := checkStatusTransition(order.Status, enums.OrderStatusCancelled); err != nil {
		return err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.repo.WithTx(tx)
		bookRepo := s.bookRepo.WithTx(tx)

		applied, err := ordersRepo.UpdateOrderStatus(ctx, order.ID, order.Status, enums.OrderStatusCancelled, nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order status")
		}
		if !applied {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
		}

		for _, item := range order.Items {
			book, err := bookRepo.FindBook(ctx, item.BookID)
			if err != nil {
				// A deleted book has nothing to restock.
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading book for restock")
			}
			if !book.BookType.RequiresStock() {
				continue
			}
			if _, err := bookRepo.AdjustStock(ctx, item.BookID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restocking cancelled order")
			}
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return typed
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancelling order")
	}

	if s.metrics != nil {
		s.metrics.IncTransition(string(enums.OrderStatusCancelled))
	}
	message := fmt.Sprintf("Order %s was cancelled.", order.OrderNumber)
	if strings.TrimSpace(reason) != "" {
		message = fmt.Sprintf("Order %s was cancelled: %s", order.OrderNumber, strings.TrimSpace(reason))
	}
	s.notifyCustomer(ctx, order, "Order cancelled", message)
	return nil
}

func (s *service) adminTransition(ctx context.Context, input TransitionInput, target enums.OrderStatus, updates map[string]any, title, messageFormat string) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.ActorRole.CanManagePlatform() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins may change order status")
	}

	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return err
	}
	return s.transition(ctx, order, target, updates, title, fmt.Sprintf(messageFormat, order.OrderNumber))
}

// transition applies one state-machine step. Same-state is an idempotent
// no-op; anything else must be permitted by the table and wins a
// conditional update, otherwise the caller raced another transition.
func (s *service) transition(ctx context.Context, order *models.Order, target enums.OrderStatus, updates map[string]any, title, message string) error {
	if order.Status == target {
		return nil
	}
	if err := checkStatusTransition(order.Status, target); err != nil {
		return err
	}

	applied, err := s.repo.UpdateOrderStatus(ctx, order.ID, order.Status, target, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order status")
	}
	if !applied {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
	}

	if s.metrics != nil {
		s.metrics.IncTransition(string(target))
	}
	s.notifyCustomer(ctx, order, title, message)
	return nil
}

func (s *service) Order(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.loadOrder(ctx, orderID)
}

func (s *service) CustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
	}
	list, err := s.repo.ListCustomerOrders(ctx, customerID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing customer orders")
	}
	return list, nil
}

func (s *service) SellerOrders(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "seller identity missing")
	}
	list, err := s.repo.ListSellerOrders(ctx, sellerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing seller orders")
	}
	return list, nil
}

func (s *service) AllOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	list, err := s.repo.ListOrders(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return list, nil
}

func (s *service) SellerRevenue(ctx context.Context, sellerID uuid.UUID) (*RevenueSummary, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "seller identity missing")
	}
	summary, err := s.repo.SellerRevenue(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregating seller revenue")
	}
	return summary, nil
}

// PendingCount backs the admin badge showing orders awaiting action.
func (s *service) PendingCount(ctx context.Context) (int64, error) {
	count, err := s.repo.CountByStatuses(ctx, []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusAwaitingPayment,
	})
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting pending orders")
	}
	return count, nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

func (s *service) notifyCustomer(ctx context.Context, order *models.Order, title, message string) {
	if s.notifier == nil {
		return
	}
	// Order writes must not fail because the notification write did.
	_ = s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:  order.CustomerID,
		Type:    enums.NotificationTypeOrderUpdate,
		Title:   title,
		Message: message,
	})
}

func (s *service) incCheckout(outcome string) {
	if s.metrics != nil {
		s.metrics.IncCheckout(outcome)
	}
}

func checkoutOutcome(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return "error"
	}
	switch typed.Code() {
	case pkgerrors.CodeOutOfStock:
		return "out_of_stock"
	case pkgerrors.CodeSellerIneligible:
		return "seller_not_eligible"
	case pkgerrors.CodeValidation:
		return "validation"
	default:
		return "error"
	}
}
