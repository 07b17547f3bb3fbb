package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vallyhouse/vally-backend/api/controllers"
	"github.com/vallyhouse/vally-backend/api/middleware"
	authsvc "github.com/vallyhouse/vally-backend/internal/auth"
	blogsvc "github.com/vallyhouse/vally-backend/internal/blogs"
	cartsvc "github.com/vallyhouse/vally-backend/internal/cart"
	catalogsvc "github.com/vallyhouse/vally-backend/internal/catalog"
	categorysvc "github.com/vallyhouse/vally-backend/internal/categories"
	checkoutsvc "github.com/vallyhouse/vally-backend/internal/checkout"
	contactsvc "github.com/vallyhouse/vally-backend/internal/contacts"
	featuredsvc "github.com/vallyhouse/vally-backend/internal/featured"
	"github.com/vallyhouse/vally-backend/pkg/auth/session"
	"github.com/vallyhouse/vally-backend/pkg/config"
	"github.com/vallyhouse/vally-backend/pkg/logger"
	"github.com/vallyhouse/vally-backend/pkg/metrics"
)

// RateLimitStore is the counter surface auth throttling runs against.
type RateLimitStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// RouterParams carries every dependency the HTTP surface needs.
type RouterParams struct {
	Config  *config.Config
	Logger  *logger.Logger
	Metrics *metrics.HTTPMetrics

	// MetricsHandler serves the Prometheus scrape endpoint. Nil disables it.
	MetricsHandler http.Handler

	Sessions       session.AccessSessionChecker
	RateLimitStore RateLimitStore
	HealthDeps     map[string]controllers.Pinger

	Auth       authsvc.Service
	Register   authsvc.RegisterService
	Catalog    catalogsvc.Service
	Featured   featuredsvc.Service
	Categories categorysvc.Service
	Cart       cartsvc.Service
	Checkout   checkoutsvc.Service
	Blogs      blogsvc.Service
	Contacts   contactsvc.Service
}

// NewRouter assembles the public, authenticated and admin route trees.
func NewRouter(params RouterParams) chi.Router {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()

	r.Use(middleware.RequestID(logg))
	r.Use(middleware.Recoverer(logg))
	r.Use(middleware.Logging(logg))
	r.Use(middleware.Metrics(params.Metrics))
	r.Use(middleware.CORS(cfg.CORS))

	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Get("/health/ready", controllers.HealthReady(cfg, logg, params.HealthDeps))
	if params.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", params.MetricsHandler)
	}

	requireAuth := middleware.Auth(cfg.JWT, params.Sessions, logg)
	requireAdmin := middleware.RequireRole("admin", logg)

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

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, params.RateLimitStore, logg)).
				Post("/register", controllers.AuthRegister(params.Register, params.Auth, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, params.RateLimitStore, logg)).
				Post("/login", controllers.AuthLogin(params.Auth, logg))
			r.With(requireAuth).Post("/logout", controllers.AuthLogout(params.Auth, logg))
		})

		r.Get("/categories", controllers.ListCategories(params.Categories, logg))
		r.Get("/categories/{categoryId}", controllers.GetCategory(params.Categories, logg))
		r.Get("/categories/{categoryId}/products", controllers.ListCategoryProducts(params.Catalog, logg))
		r.Get("/subcategories", controllers.ListSubCategories(params.Categories, logg))

		r.Get("/products", controllers.ListProducts(params.Catalog, logg))
		r.Get("/products/featured", controllers.GetFeaturedProducts(params.Featured, logg))
		r.Get("/products/{productId}", controllers.GetProduct(params.Catalog, logg))

		r.Get("/blogs", controllers.ListBlogs(params.Blogs, logg))
		r.Get("/blogs/{slug}", controllers.GetBlogBySlug(params.Blogs, logg))

		r.Post("/contacts", controllers.CreateContact(params.Contacts, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", controllers.GetCart(params.Cart, logg))
			r.Put("/", controllers.CartReplace(params.Cart, logg))
			r.Delete("/", controllers.CartClear(params.Cart, logg))
			r.Post("/items", controllers.CartAddItem(params.Cart, logg))
			r.Patch("/items/{itemId}", controllers.CartAdjustItem(params.Cart, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(params.Cart, logg))
			r.Post("/checkout", controllers.CartCheckout(params.Checkout, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(requireAdmin)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminListProducts(params.Catalog, logg))
			r.Post("/", controllers.AdminCreateProduct(params.Catalog, logg))
			r.Put("/featured", controllers.AdminSetFeatured(params.Featured, logg))
			r.Put("/{productId}", controllers.AdminUpdateProduct(params.Catalog, logg))
			r.Delete("/{productId}", controllers.AdminDeleteProduct(params.Catalog, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateCategory(params.Categories, logg))
			r.Put("/{categoryId}", controllers.AdminUpdateCategory(params.Categories, logg))
			r.Delete("/{categoryId}", controllers.AdminDeleteCategory(params.Categories, logg))
		})

		r.Route("/subcategories", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateSubCategory(params.Categories, logg))
			r.Delete("/{subCategoryId}", controllers.AdminDeleteSubCategory(params.Categories, logg))
		})

		r.Route("/blogs", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateBlog(params.Blogs, logg))
			r.Post("/images", controllers.AdminUploadBlogImage(params.Blogs, logg))
			r.Put("/{blogId}", controllers.AdminUpdateBlog(params.Blogs, logg))
			r.Delete("/{blogId}", controllers.AdminDeleteBlog(params.Blogs, logg))
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", controllers.AdminListContacts(params.Contacts, logg))
			r.Patch("/{contactId}", controllers.AdminSetContacted(params.Contacts, logg))
			r.Delete("/{contactId}", controllers.AdminDeleteContact(params.Contacts, logg))
		})
	})

	return r
}
