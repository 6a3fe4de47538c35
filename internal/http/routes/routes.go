// Package routes assembles the fiber app: middleware chain, views and URL map.
package routes

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"storefront/internal/config"
	"storefront/internal/errs"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
)

// Views loads the html templates under dir with the helpers pages use.
func Views(dir string, reload bool) *html.Engine {
	engine := html.New(dir, ".html")
	engine.Reload(reload)
	engine.AddFunc("money", func(d decimal.Decimal) string { return d.StringFixed(2) })
	engine.AddFunc("mul", func(d decimal.Decimal, q int) string {
		return d.Mul(decimal.NewFromInt(int64(q))).StringFixed(2)
	})
	// dict builds the argument map for partials that need more than dot.
	engine.AddFunc("dict", func(kv ...any) map[string]any {
		m := make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			if k, ok := kv[i].(string); ok {
				m[k] = kv[i+1]
			}
		}
		return m
	})
	return engine
}

// New builds the app. views is usually Views(cfg.TemplatesDir, !cfg.IsProd()).
func New(cfg config.Config, d *handlers.Deps, views fiber.Views) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:        views,
		BodyLimit:    cfg.MaxRequestBodyBytes,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} ${status} ${method} ${path} ${latency} req_id=${locals:requestid}\n",
		TimeFormat: time.RFC3339,
	}))
	app.Use(helmet.New())
	if cfg.RateLimitPerMinute > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitPerMinute,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				p := c.Path()
				return strings.HasPrefix(p, "/static/") || p == "/healthz" || p == "/metrics"
			},
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.global.hit", nil)
				return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests. Please slow down.")
			},
		}))
	}

	app.Static("/static", cfg.StaticDir)
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := d.DB.PingContext(c.UserContext()); err != nil {
			applog.Error(c, "health.db.fail", err, nil)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
		}
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))

	app.Use(d.Sessions.Middleware())
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.IsProd(),
		CookieHTTPOnly: true,
		Expiration:     time.Hour,
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return fiber.NewError(fiber.StatusForbidden, "Security check failed. Please refresh and try again.")
		},
	}))

	// catalog
	app.Get("/", d.CatalogHandler.Home)
	app.Get("/category/:id", d.CatalogHandler.Category)
	app.Get("/product/:id", d.CatalogHandler.Product)

	// cart & checkout
	app.Get("/cart", d.CartHandler.View)
	app.Post("/cart/add/:id", d.CartHandler.Add)
	app.Post("/cart/update/:id", d.CartHandler.Update)
	app.Post("/cart/remove/:id", d.CartHandler.Remove)
	app.Post("/cart/clear", d.CartHandler.Clear)
	app.Get("/checkout", d.CheckoutHandler.Form)
	app.Post("/checkout", d.CheckoutHandler.Place)

	// auth
	loginLimiter := func(view string) fiber.Handler {
		return limiter.New(limiter.Config{
			Max:        cfg.LoginLimitPer10Min,
			Expiration: 10 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP() + "|" + view
			},
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate."+view+".hit", nil)
				return fiber.NewError(fiber.StatusTooManyRequests, "Too many attempts. Please try again later.")
			},
		})
	}
	app.Get("/register", d.AuthHandler.RegisterForm)
	app.Post("/register", loginLimiter("register"), d.AuthHandler.Register)
	app.Get("/login", d.AuthHandler.LoginForm)
	app.Post("/login", loginLimiter("login"), d.AuthHandler.Login)
	app.Post("/logout", d.AuthHandler.Logout)

	// customer orders
	app.Get("/orders", handlers.RequireUser(), d.OrderHandler.History)
	app.Get("/orders/:id", handlers.RequireUser(), d.OrderHandler.View)

	// admin
	admin := app.Group("/admin", handlers.RequireAdmin(d.Auth))
	admin.Get("/", d.AdminHandler.Dashboard)
	admin.Get("/products", d.AdminHandler.Products)
	admin.Get("/products/new", d.AdminHandler.NewProduct)
	admin.Post("/products", d.AdminHandler.CreateProduct)
	admin.Get("/products/:id/edit", d.AdminHandler.EditProduct)
	admin.Post("/products/:id", d.AdminHandler.UpdateProduct)
	admin.Post("/products/:id/delete", d.AdminHandler.DeleteProduct)
	admin.Get("/orders", d.AdminHandler.OrdersPage)
	admin.Get("/orders/:id", d.AdminHandler.OrderDetail)
	admin.Post("/orders/:id/status", d.AdminHandler.UpdateOrderStatus)

	app.Use(func(c *fiber.Ctx) error {
		return errs.New(errs.CodeNotFound, "no route for "+c.Path())
	})

	return app
}
