package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jualbuku/bookmart-backend/api/controllers"
	"github.com/jualbuku/bookmart-backend/api/middleware"
	"github.com/jualbuku/bookmart-backend/internal/cart"
	"github.com/jualbuku/bookmart-backend/internal/catalog"
	"github.com/jualbuku/bookmart-backend/internal/notifications"
	"github.com/jualbuku/bookmart-backend/internal/orders"
	"github.com/jualbuku/bookmart-backend/internal/sellers"
	"github.com/jualbuku/bookmart-backend/internal/settings"
	"github.com/jualbuku/bookmart-backend/pkg/config"
	"github.com/jualbuku/bookmart-backend/pkg/enums"
	"github.com/jualbuku/bookmart-backend/pkg/logger"
	pkgredis "github.com/jualbuku/bookmart-backend/pkg/redis"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Catalog       catalog.Service
	Cart          cart.Service
	Orders        orders.Service
	Sellers       sellers.Service
	Settings      settings.Service
	Notifications notifications.Service
}

// NewRouter assembles the HTTP surface. Both redis collaborators are
// optional: a nil cache degrades the readiness probe, a nil idempotency
// store disables the double-submit guard.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	cache pkgredis.Pinger,
	idem pkgredis.IdempotencyStore,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, cache, logg))
	})

	// Storefront browsing needs no authentication.
	r.Route("/api/public/v1", func(r chi.Router) {
		r.Get("/books", controllers.ListBooks(svcs.Catalog, logg))
		r.Get("/books/{bookID}", controllers.GetBook(svcs.Catalog, logg))
		r.Get("/categories", controllers.ListCategories(svcs.Catalog, logg))
		r.Get("/payment-methods", controllers.ListPaymentMethods(svcs.Settings, true, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if idem != nil {
			r.Use(middleware.Idempotency(idem, logg))
		}

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(svcs.Cart, logg))
			r.Post("/items", controllers.AddCartItem(svcs.Cart, logg))
			r.Put("/items", controllers.UpdateCartItem(svcs.Cart, logg))
			r.Delete("/items/{bookID}", controllers.RemoveCartItem(svcs.Cart, logg))
			r.Delete("/", controllers.ClearCart(svcs.Cart, logg))
		})

		r.Post("/checkout", controllers.Checkout(svcs.Orders, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListMyOrders(svcs.Orders, logg))
			r.Get("/{orderID}", controllers.GetOrder(svcs.Orders, logg))
			r.Post("/{orderID}/payment-proof", controllers.SubmitPaymentProof(svcs.Orders, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(svcs.Notifications, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
			r.Delete("/{notificationID}", controllers.DeleteNotification(svcs.Notifications, logg))
		})

		r.Route("/sellers", func(r chi.Router) {
			r.Post("/apply", controllers.ApplyAsSeller(svcs.Sellers, logg))
			r.Get("/me", controllers.MySellerProfile(svcs.Sellers, logg))
		})

		r.Route("/seller", func(r chi.Router) {
			r.Use(middleware.RequireSeller(logg))
			r.Route("/books", func(r chi.Router) {
				r.Get("/", controllers.ListMyBooks(svcs.Catalog, logg))
				r.Post("/", controllers.CreateBook(svcs.Catalog, logg))
				r.Put("/{bookID}", controllers.UpdateBook(svcs.Catalog, logg))
				r.Delete("/{bookID}", controllers.DeleteBook(svcs.Catalog, logg))
				r.Post("/{bookID}/stock", controllers.AdjustStock(svcs.Catalog, logg))
			})
			r.Get("/orders", controllers.ListSellerOrders(svcs.Orders, logg))
			r.Get("/revenue", controllers.SellerRevenue(svcs.Orders, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
		if idem != nil {
			r.Use(middleware.Idempotency(idem, logg))
		}

		r.Route("/sellers", func(r chi.Router) {
			r.Get("/", controllers.AdminListSellers(svcs.Sellers, logg))
			r.Get("/{profileID}", controllers.GetSellerProfile(svcs.Sellers, logg))
			r.Post("/{profileID}/approve", controllers.ApproveSeller(svcs.Sellers, logg))
			r.Post("/{profileID}/reject", controllers.RejectSeller(svcs.Sellers, logg))
			r.Post("/{profileID}/suspend", controllers.SuspendSeller(svcs.Sellers, logg))
			r.Post("/{profileID}/reactivate", controllers.ReactivateSeller(svcs.Sellers, logg))
			r.Put("/{profileID}/commission-rate", controllers.SetSellerCommissionRate(svcs.Sellers, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(svcs.Orders, logg))
			r.Get("/pending-count", controllers.AdminPendingOrderCount(svcs.Orders, logg))
			r.Post("/{orderID}/mark-paid", controllers.MarkOrderPaid(svcs.Orders, logg))
			r.Post("/{orderID}/process", controllers.StartOrderProcessing(svcs.Orders, logg))
			r.Post("/{orderID}/complete", controllers.CompleteOrder(svcs.Orders, logg))
			r.Post("/{orderID}/cancel", controllers.CancelOrder(svcs.Orders, logg))
		})

		r.Route("/books", func(r chi.Router) {
			r.Get("/pending", controllers.ListPendingBooks(svcs.Catalog, logg))
			r.Post("/{bookID}/decision", controllers.DecideListing(svcs.Catalog, logg))
		})

		r.Post("/categories", controllers.CreateCategory(svcs.Catalog, logg))

		r.Route("/settings", func(r chi.Router) {
			r.Get("/commission-rate", controllers.GetDefaultCommissionRate(svcs.Settings, logg))
			r.Put("/commission-rate", controllers.SetDefaultCommissionRate(svcs.Settings, logg))
			r.Get("/payment-methods", controllers.ListPaymentMethods(svcs.Settings, false, logg))
			r.Post("/payment-methods", controllers.CreatePaymentMethod(svcs.Settings, logg))
			r.Put("/payment-methods/{methodID}", controllers.UpdatePaymentMethod(svcs.Settings, logg))
		})
	})

	return r
}
