package handlers

import (
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"storefront/internal/config"
	"storefront/internal/metrics"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/session"
)

type Deps struct {
	DB       *sqlx.DB
	Sessions *session.Manager
	Registry *prometheus.Registry
	Auth     *services.AuthService

	CatalogHandler  *CatalogHandler
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	AuthHandler     *AuthHandler
	OrderHandler    *OrderHandler
	AdminHandler    *AdminHandler
}

// NewDeps wires repos, services and handlers over db and the session store.
func NewDeps(db *sqlx.DB, cfg config.Config, store session.Store) *Deps {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	userRepo := repos.NewUserRepo(db)

	catalogSvc := services.NewCatalogService(catRepo, prodRepo)
	cartSvc := services.NewCartService(prodRepo, m)
	checkoutSvc := services.NewCheckoutService(cartSvc, orderRepo, cfg.Shipping(), m)
	orderSvc := services.NewOrderService(orderRepo)
	authSvc := services.NewAuthService(userRepo, cfg.BcryptCost, m)

	jar := newJarFactory(cfg)

	return &Deps{
		DB:       db,
		Sessions: session.NewManager(store, cfg.SessionTTL, cfg.IsProd()),
		Registry: reg,
		Auth:     authSvc,

		CatalogHandler:  &CatalogHandler{Catalog: catalogSvc},
		CartHandler:     &CartHandler{Cart: cartSvc, Checkout: checkoutSvc, jar: jar},
		CheckoutHandler: &CheckoutHandler{Cart: cartSvc, Checkout: checkoutSvc, jar: jar},
		AuthHandler:     &AuthHandler{Auth: authSvc, Cart: cartSvc, jar: jar},
		OrderHandler:    &OrderHandler{Orders: orderSvc},
		AdminHandler:    &AdminHandler{Catalog: catalogSvc, Orders: orderSvc},
	}
}
