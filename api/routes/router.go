package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oakmart/storefront-backend/api/controllers"
	"github.com/oakmart/storefront-backend/api/middleware"
	"github.com/oakmart/storefront-backend/internal/address"
	"github.com/oakmart/storefront-backend/internal/auth"
	"github.com/oakmart/storefront-backend/internal/cart"
	"github.com/oakmart/storefront-backend/internal/categories"
	"github.com/oakmart/storefront-backend/internal/orders"
	product "github.com/oakmart/storefront-backend/internal/products"
	"github.com/oakmart/storefront-backend/internal/reviews"
	"github.com/oakmart/storefront-backend/pkg/config"
	"github.com/oakmart/storefront-backend/pkg/db"
	"github.com/oakmart/storefront-backend/pkg/enums"
	"github.com/oakmart/storefront-backend/pkg/logger"
	"github.com/oakmart/storefront-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger
	DB     db.Pinger
	Redis  *redis.Client

	Auth       auth.Service
	Addresses  address.Service
	Products   product.Service
	Categories categories.Service
	Cart       cart.Service
	Orders     orders.Service
	Reviews    reviews.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	requireAuth := middleware.Auth(cfg.JWT, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, logg)
	requireAdmin := middleware.RequireRole(string(enums.UserRoleAdmin), logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/profile", controllers.AuthProfile(deps.Auth, logg))
			r.Patch("/profile", controllers.AuthUpdateProfile(deps.Auth, logg))
			r.Post("/change-password", controllers.AuthChangePassword(deps.Auth, logg))
		})
	})

	r.Route("/api/v1/addresses", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", controllers.AddressList(deps.Addresses, logg))
		r.Post("/", controllers.AddressCreate(deps.Addresses, logg))
		r.Put("/{addressId}", controllers.AddressUpdate(deps.Addresses, logg))
		r.Delete("/{addressId}", controllers.AddressDelete(deps.Addresses, logg))
		r.Post("/{addressId}/default", controllers.AddressSetDefault(deps.Addresses, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/", controllers.ProductList(deps.Products, logg))
		r.Get("/slug/{slug}", controllers.ProductGetBySlug(deps.Products, logg))
		r.Get("/{productId}", controllers.ProductGet(deps.Products, logg))
		r.Get("/{productId}/reviews", controllers.ReviewListForProduct(deps.Reviews, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/{productId}/reviews", controllers.ReviewCreate(deps.Reviews, logg))
		})
	})

	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/", controllers.CategoryList(deps.Categories, logg))
		r.Get("/tree", controllers.CategoryTree(deps.Categories, logg))
		r.Get("/slug/{slug}", controllers.CategoryGetBySlug(deps.Categories, logg))
		r.Get("/{categoryId}", controllers.CategoryGet(deps.Categories, logg))
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/", controllers.CartGet(deps.Cart, logg))
		r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
		r.Put("/items/{itemId}", controllers.CartUpdateItem(deps.Cart, logg))
		r.Delete("/items/{itemId}", controllers.CartRemoveItem(deps.Cart, logg))
		r.Delete("/", controllers.CartClear(deps.Cart, logg))
		r.Post("/discount", controllers.CartApplyDiscount(deps.Cart, logg))
		r.Delete("/discount", controllers.CartRemoveDiscount(deps.Cart, logg))
		r.Get("/validate", controllers.CartValidate(deps.Cart, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/merge", controllers.CartMerge(deps.Cart, logg))
		})
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/checkout", controllers.OrderCheckout(deps.Orders, logg))
		r.Get("/", controllers.OrderList(deps.Orders, logg))
		r.Get("/{orderId}", controllers.OrderGet(deps.Orders, logg))
		r.Post("/{orderId}/cancel", controllers.OrderCancel(deps.Orders, logg))
	})

	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/mine", controllers.ReviewListMine(deps.Reviews, logg))
		r.Put("/{reviewId}", controllers.ReviewUpdate(deps.Reviews, logg))
		r.Delete("/{reviewId}", controllers.ReviewDelete(deps.Reviews, logg))
		r.Post("/{reviewId}/vote", controllers.ReviewVote(deps.Reviews, logg))
		r.Delete("/{reviewId}/vote", controllers.ReviewUnvote(deps.Reviews, logg))
		r.Post("/{reviewId}/report", controllers.ReviewReport(deps.Reviews, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(requireAuth, requireAdmin)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Products, logg))
			r.Post("/", controllers.AdminProductCreate(deps.Products, logg))
			r.Patch("/{productId}", controllers.AdminProductUpdate(deps.Products, logg))
			r.Delete("/{productId}", controllers.AdminProductDelete(deps.Products, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.AdminCategoryCreate(deps.Categories, logg))
			r.Patch("/{categoryId}", controllers.AdminCategoryUpdate(deps.Categories, logg))
			r.Delete("/{categoryId}", controllers.AdminCategoryDelete(deps.Categories, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrderGet(deps.Orders, logg))
			r.Patch("/{orderId}/status", controllers.AdminOrderUpdateStatus(deps.Orders, logg))
			r.Post("/{orderId}/refund", controllers.AdminOrderRefund(deps.Orders, logg))
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", controllers.AdminReviewList(deps.Reviews, logg))
			r.Post("/{reviewId}/moderate", controllers.AdminReviewModerate(deps.Reviews, logg))
		})
	})

	return r
}
