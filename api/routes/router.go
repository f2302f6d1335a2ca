package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/semprebellasuporte2025/semprebella-backend/api/controllers"
	"github.com/semprebellasuporte2025/semprebella-backend/api/middleware"
	authsvc "github.com/semprebellasuporte2025/semprebella-backend/internal/auth"
	cartsvc "github.com/semprebellasuporte2025/semprebella-backend/internal/cart"
	"github.com/semprebellasuporte2025/semprebella-backend/internal/catalog"
	checkoutsvc "github.com/semprebellasuporte2025/semprebella-backend/internal/checkout"
	contentsvc "github.com/semprebellasuporte2025/semprebella-backend/internal/content"
	couponssvc "github.com/semprebellasuporte2025/semprebella-backend/internal/coupons"
	customerssvc "github.com/semprebellasuporte2025/semprebella-backend/internal/customers"
	inventorysvc "github.com/semprebellasuporte2025/semprebella-backend/internal/inventory"
	orderssvc "github.com/semprebellasuporte2025/semprebella-backend/internal/orders"
	supplierssvc "github.com/semprebellasuporte2025/semprebella-backend/internal/suppliers"
	userssvc "github.com/semprebellasuporte2025/semprebella-backend/internal/users"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/auth/session"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/config"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/mercadopago"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/metrics"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs. Optional fields may be
// nil; the affected endpoints degrade instead of panicking.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Sessions session.Toucher
	Registry *prometheus.Registry

	Auth      authsvc.Service
	Catalog   catalog.Service
	Suppliers supplierssvc.Service
	Coupons   couponssvc.Service
	Content   contentsvc.Service
	Customers customerssvc.Service
	Cart      cartsvc.Service
	Checkout  checkoutsvc.Service
	Orders    orderssvc.Service
	Inventory inventorysvc.Service
	Users     userssvc.Service
	Payments  *mercadopago.Client
}

// NewRouter assembles the storefront and back-office HTTP surface.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if deps.Registry != nil {
		r.Use(middleware.Metrics(metrics.NewHTTPMetrics(deps.Registry)))
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

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

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	// Public storefront surface. No token required.
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/produtos", controllers.ListProducts(deps.Catalog, logg))
		r.Get("/produtos/{id}", controllers.GetProduct(deps.Catalog, deps.Inventory, logg))
		r.Get("/categorias", controllers.ListCategories(deps.Catalog, logg))
		r.Get("/banners", controllers.ListBanners(deps.Content, logg))
		r.Get("/instagram", controllers.ListInstagramLinks(deps.Content, logg))
		r.Get("/cep/{cep}", controllers.LookupCEP(deps.Customers, logg))
		r.Post("/cupons/validar", controllers.ValidateCoupon(deps.Coupons, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg), middleware.Idempotency(deps.Redis, logg)).
				Post("/register", controllers.AuthRegister(deps.Auth, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
				Post("/login", controllers.AuthLogin(deps.Auth, logg))
		})

		if deps.Payments != nil {
			r.Post("/webhooks/pagamentos", controllers.PaymentWebhook(deps.Orders, deps.Payments, logg))
		}

		// Authenticated storefront surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
			r.Use(middleware.Idempotency(deps.Redis, logg))

			r.Post("/auth/logout", controllers.AuthLogout(deps.Auth, logg))
			r.Get("/auth/status", controllers.AuthStatus(deps.Auth, logg))

			r.Route("/me", func(r chi.Router) {
				r.Get("/", controllers.MyProfile(deps.Customers, logg))
				r.Put("/", controllers.UpdateMyProfile(deps.Customers, logg))
				r.Get("/enderecos", controllers.ListMyAddresses(deps.Customers, logg))
				r.Post("/enderecos", controllers.AddMyAddress(deps.Customers, logg))
				r.Delete("/enderecos/{id}", controllers.DeleteMyAddress(deps.Customers, logg))
				r.Get("/pedidos", controllers.ListMyOrders(deps.Orders, logg))
				r.Get("/pedidos/{id}", controllers.GetMyOrder(deps.Orders, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(deps.Cart, logg))
				r.Post("/items", controllers.AddCartItem(deps.Cart, logg))
				r.Put("/items/{itemId}", controllers.UpdateCartItem(deps.Cart, logg))
				r.Delete("/items/{itemId}", controllers.RemoveCartItem(deps.Cart, logg))
				r.Delete("/", controllers.ClearCart(deps.Cart, logg))
			})

			r.Post("/checkout", controllers.Checkout(deps.Checkout, logg))
		})
	})

	// Back-office surface.
	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if !cfg.App.IsProd() {
				r.Post("/register", controllers.AdminAuthRegister(deps.Auth, cfg, logg))
			}
			r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
				Post("/login", controllers.AdminAuthLogin(deps.Auth, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
			r.Use(middleware.RequireStaff(logg))
			r.Use(middleware.Idempotency(deps.Redis, logg))

			r.Route("/produtos", func(r chi.Router) {
				r.Get("/", controllers.AdminListProducts(deps.Catalog, logg))
				r.Post("/", controllers.AdminCreateProduct(deps.Catalog, logg))
				r.Get("/{id}", controllers.AdminGetProduct(deps.Catalog, deps.Inventory, logg))
				r.Put("/{id}", controllers.AdminUpdateProduct(deps.Catalog, logg))
				r.Delete("/{id}", controllers.AdminDeleteProduct(deps.Catalog, logg))
				r.Post("/{id}/imagens", controllers.AdminUploadProductImage(deps.Catalog, logg))
				r.Get("/{id}/estoque", controllers.AdminStockLevel(deps.Inventory, logg))
				r.Get("/{id}/movimentacoes", controllers.AdminListMovements(deps.Inventory, logg))
			})

			r.Route("/categorias", func(r chi.Router) {
				r.Get("/", controllers.AdminListCategories(deps.Catalog, logg))
				r.Post("/", controllers.AdminCreateCategory(deps.Catalog, logg))
				r.Put("/{id}", controllers.AdminUpdateCategory(deps.Catalog, logg))
				r.Delete("/{id}", controllers.AdminDeleteCategory(deps.Catalog, logg))
			})

			r.Route("/fornecedores", func(r chi.Router) {
				r.Get("/", controllers.AdminListSuppliers(deps.Suppliers, logg))
				r.Post("/", controllers.AdminCreateSupplier(deps.Suppliers, logg))
				r.Get("/{id}", controllers.AdminGetSupplier(deps.Suppliers, logg))
				r.Put("/{id}", controllers.AdminUpdateSupplier(deps.Suppliers, logg))
				r.Delete("/{id}", controllers.AdminDeleteSupplier(deps.Suppliers, logg))
			})

			r.Route("/cupons", func(r chi.Router) {
				r.Get("/", controllers.AdminListCoupons(deps.Coupons, logg))
				r.Post("/", controllers.AdminCreateCoupon(deps.Coupons, logg))
				r.Put("/{id}", controllers.AdminUpdateCoupon(deps.Coupons, logg))
				r.Delete("/{id}", controllers.AdminDeleteCoupon(deps.Coupons, logg))
			})

			r.Route("/banners", func(r chi.Router) {
				r.Get("/", controllers.AdminListBanners(deps.Content, logg))
				r.Post("/", controllers.AdminCreateBanner(deps.Content, logg))
				r.Put("/{id}", controllers.AdminUpdateBanner(deps.Content, logg))
				r.Delete("/{id}", controllers.AdminDeleteBanner(deps.Content, logg))
				r.Post("/{id}/imagem", controllers.AdminUploadBannerImage(deps.Content, logg))
			})

			r.Route("/instagram", func(r chi.Router) {
				r.Get("/", controllers.AdminListInstagramLinks(deps.Content, logg))
				r.Post("/", controllers.AdminCreateInstagramLink(deps.Content, logg))
				r.Put("/{id}", controllers.AdminUpdateInstagramLink(deps.Content, logg))
				r.Delete("/{id}", controllers.AdminDeleteInstagramLink(deps.Content, logg))
				r.Post("/{id}/imagem", controllers.AdminUploadInstagramLinkImage(deps.Content, logg))
			})

			r.Route("/estoque", func(r chi.Router) {
				r.Post("/movimentacoes", controllers.AdminRegisterMovement(deps.Inventory, logg))
			})

			r.Route("/clientes", func(r chi.Router) {
				r.Get("/", controllers.AdminListCustomers(deps.Customers, logg))
				r.Get("/{id}", controllers.AdminGetCustomer(deps.Customers, logg))
				r.Put("/{id}", controllers.AdminUpdateCustomer(deps.Customers, logg))
				r.Delete("/{id}", controllers.AdminDeactivateCustomer(deps.Customers, logg))
			})

			r.Route("/pedidos", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(deps.Orders, logg))
				r.Get("/{id}", controllers.AdminGetOrder(deps.Orders, logg))
				r.Post("/{id}/cancelar", controllers.AdminCancelOrder(deps.Orders, logg))
			})

			r.Route("/usuarios", func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Get("/", controllers.AdminListUsers(deps.Users, logg))
				r.Post("/", controllers.AdminCreateUser(deps.Users, logg))
				r.Get("/{id}", controllers.AdminGetUser(deps.Users, logg))
				r.Put("/{id}", controllers.AdminUpdateUser(deps.Users, logg))
				r.Delete("/{id}", controllers.AdminDeactivateUser(deps.Users, logg))
			})
		})
	})

	return r
}
