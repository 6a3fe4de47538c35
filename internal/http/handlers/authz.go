package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/session"
)

// RequireUser lets logged in visitors through. Anonymous GETs remember where
// they were going so login can send them back.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := session.From(c)
		if sess.Identity() != nil {
			return c.Next()
		}
		if c.Method() == fiber.MethodGet {
			sess.Data.RedirectTo = utils.CopyString(c.OriginalURL())
		}
		return c.Redirect("/login")
	}
}

// RequireAdmin checks the stored role on every request.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := session.From(c)
		u := sess.Identity()
		if u == nil {
			if c.Method() == fiber.MethodGet {
				sess.Data.RedirectTo = utils.CopyString(c.OriginalURL())
			}
			return c.Redirect("/login")
		}
		ok, err := auth.IsAdmin(c.UserContext(), *u)
		if err != nil {
			return err
		}
		if !ok {
			applog.Security(c, "access.denied.admin", nil)
			c.Status(fiber.StatusForbidden)
			return render(c, "error", fiber.Map{"Status": fiber.StatusForbidden, "Message": "Access denied"})
		}
		return c.Next()
	}
}
