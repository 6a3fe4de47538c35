package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/session"
)

const (
	CartCookieName = "cart"
	cartCookieTTL  = 7 * 24 * time.Hour
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u, ok := c.Locals("user").(*domain.Identity); ok && u != nil {
		data["User"] = u
	}
	if tok, ok := c.Locals("csrf").(string); ok {
		data["CSRFToken"] = tok
	}
	if _, ok := data["CartCount"]; !ok {
		data["CartCount"] = sessionCartCount(c)
	}
	return c.Render(tmpl, data)
}

// sessionCartCount peeks at the session cart for the header badge without
// pulling in the cookie.
func sessionCartCount(c *fiber.Ctx) int {
	sess := session.From(c)
	if !sess.Data.HasCartArray() {
		return 0
	}
	cc, err := cart.Parse(sess.Data.Cart)
	if err != nil {
		return 0
	}
	return cc.Count()
}

// fiberJar carries the cart cookie through one fiber request.
type fiberJar struct {
	c      *fiber.Ctx
	secure bool
}

func (j fiberJar) CartCookie() string { return j.c.Cookies(CartCookieName) }

func (j fiberJar) SetCartCookie(v string) {
	j.c.Cookie(&fiber.Cookie{
		Name:     CartCookieName,
		Value:    v,
		Path:     "/",
		MaxAge:   int(cartCookieTTL.Seconds()),
		Expires:  time.Now().Add(cartCookieTTL),
		HTTPOnly: true,
		Secure:   j.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

type jarFactory func(c *fiber.Ctx) fiberJar

func newJarFactory(cfg config.Config) jarFactory {
	secure := cfg.IsProd()
	return func(c *fiber.Ctx) fiberJar { return fiberJar{c: c, secure: secure} }
}
