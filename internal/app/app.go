// Package app assembles the storefront: stores, services, sessions and the
// HTTP router.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/config"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/coupon"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/handlers"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/middleware"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/repository"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/service"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/session"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/viewer"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// App owns every long-lived component. Close releases them in reverse order
// of construction.
type App struct {
	cfg *config.Config
	log *slog.Logger

	Catalog   *coupon.Catalog
	Resources *viewer.ResourceStore
	Sessions  *session.Manager

	carts   *cart.Controller
	cookies *middleware.SessionCookies
	handler http.Handler
}

// New builds the application from configuration. Coupon sources and the
// product catalog file are loaded eagerly so misconfiguration fails startup.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	products, err := loadProducts(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	log.Info("product catalog loaded", "file", cfg.Catalog.File)

	catalog, err := loadCoupons(ctx, cfg.Coupon, log)
	if err != nil {
		return nil, err
	}

	store, err := newCartStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:       cfg,
		log:       log,
		Catalog:   catalog,
		Resources: viewer.NewResourceStore(cfg.Viewer.ResourcePrefix),
		carts:     cart.NewController(store),
	}
	a.Sessions = session.NewManager(a.Resources, a.carts, cfg.Session.IdleTimeout, log)
	a.cookies = middleware.NewSessionCookies(cfg.Session, a.Sessions, log)

	checkout, err := service.NewCheckoutService(a.carts, catalog, cfg.Payment.LinkBase, cfg.Payment.CurrencySymbol)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	productService := service.NewProductService(products)
	a.handler = a.routes(
		handlers.NewHealthHandler(log, Version),
		handlers.NewProductHandler(productService, a.Resources, log),
		handlers.NewCouponHandler(catalog, log),
		handlers.NewCartHandler(service.NewCartService(a.carts, products, catalog, cfg.Payment.CurrencySymbol), log),
		handlers.NewCheckoutHandler(checkout, log),
		handlers.NewViewerHandler(productService, a.Resources, log),
		handlers.NewSessionHandler(a.Sessions, a.cookies, log),
	)

	return a, nil
}

// Handler returns the HTTP handler serving the API.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run sweeps idle sessions until ctx is done.
func (a *App) Run(ctx context.Context) {
	a.Sessions.Run(ctx, a.cfg.Session.SweepInterval)
}

// Close ends every session, revokes outstanding resources and closes the
// cart store.
func (a *App) Close(ctx context.Context) error {
	sessionsErr := a.Sessions.Close(ctx)
	a.Resources.Close()
	return errors.Join(sessionsErr, a.carts.Close())
}

func (a *App) routes(
	health *handlers.HealthHandler,
	products *handlers.ProductHandler,
	coupons *handlers.CouponHandler,
	carts *handlers.CartHandler,
	checkout *handlers.CheckoutHandler,
	viewers *handlers.ViewerHandler,
	sessions *handlers.SessionHandler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(a.log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(corsOptions(a.cfg.Server.AllowedOrigins)))

	r.Get("/health", health.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/product", products.ListProducts)
		r.Get("/product/{productId}", products.GetProduct)
		r.Get("/product/{productId}/files", products.ListFiles)
		r.Get("/product/{productId}/files/{fileId}/download", products.DownloadFile)

		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(a.cfg.Auth, a.log))
			r.Get("/coupon/stats", coupons.GetStats)
			r.Get("/admin/resources", viewers.ResourceStats)
		})
		r.Get("/coupon/{couponCode}", coupons.ValidateCoupon)

		r.Group(func(r chi.Router) {
			r.Use(a.cookies.Middleware)

			r.Get("/cart", carts.GetCart)
			r.Post("/cart/items", carts.AddItem)
			r.Put("/cart/items/{productId}", carts.SetQuantity)
			r.Post("/cart/items/{productId}/decrement", carts.Decrement)
			r.Delete("/cart/items/{productId}", carts.RemoveItem)
			r.Post("/cart/coupon", carts.ApplyCoupon)
			r.Delete("/cart/coupon", carts.RemoveCoupon)

			r.Post("/checkout", checkout.Checkout)

			r.Post("/viewer", viewers.Select)
			r.Get("/viewer", viewers.Get)
			r.Delete("/viewer", viewers.Clear)

			r.Delete("/session", sessions.End)
		})
	})

	r.Get(a.cfg.Viewer.ResourcePrefix+"/{resourceId}", viewers.ServeResource)

	return r
}

// corsOptions allows the session cookie cross-origin only for an explicit
// origin list. A wildcard origin gets anonymous CORS.
func corsOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.APIKeyHeader},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           300,
	}
}

func loadProducts(cfg config.CatalogConfig) (*repository.InMemoryProductRepository, error) {
	if cfg.File == "" {
		return repository.NewInMemoryProductRepository()
	}

	products, err := repository.LoadCatalogFile(cfg.File)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: %s has no products", repository.ErrInvalidCatalog, cfg.File)
	}
	return repository.NewInMemoryProductRepository(products...)
}

func loadCoupons(ctx context.Context, cfg config.CouponConfig, log *slog.Logger) (*coupon.Catalog, error) {
	if len(cfg.Sources) == 0 {
		log.Info("no coupon sources configured, using default coupons")
		return coupon.NewCatalog(coupon.DefaultCoupons()...), nil
	}

	log.Info("loading coupon data...", "sources", len(cfg.Sources))
	catalog := coupon.NewCatalog()
	if err := catalog.LoadFromSources(ctx, cfg.Sources); err != nil {
		return nil, fmt.Errorf("failed to load coupon data: %w", err)
	}

	stats := catalog.GetStats()
	log.Info("coupon data loaded successfully",
		"total_sources", stats["total_sources"],
		"total_coupons", stats["total_coupons"],
		"active_coupons", stats["active_coupons"],
	)
	return catalog, nil
}

func newCartStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (cart.Store, error) {
	switch cfg.Cart.Store {
	case "redis":
		ttl := time.Duration(cfg.Session.MaxAge) * time.Second
		store, err := cart.NewRedisStore(ctx, cfg.Cart.RedisURL, ttl)
		if err != nil {
			return nil, err
		}
		log.Info("cart store ready", "store", "redis", "ttl", ttl)
		return store, nil
	default:
		log.Info("cart store ready", "store", "memory")
		return cart.NewMemoryStore(), nil
	}
}
