package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	"storefront/internal/errs"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/session"
)

type AuthHandler struct {
	Auth *services.AuthService
	Cart *services.CartService
	jar  jarFactory
}

// GET /register
func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{})
}

// POST /register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var form services.RegisterForm
	_ = c.BodyParser(&form)

	u, err := h.Auth.Register(c.UserContext(), form)
	if errors.Is(err, errs.ErrValidation) {
		applog.Info(c, "auth.register.invalid", map[string]any{"fields": errs.As(err).Fields()})
		c.Status(fiber.StatusBadRequest)
		return render(c, "register", fiber.Map{
			"Err":    "Please correct the highlighted fields.",
			"Fields": errs.As(err).Fields(),
			"Name":   form.Name,
			"Email":  form.Email,
		})
	}
	if err != nil {
		return err
	}

	applog.Audit(c, "auth.register.success", map[string]any{"user_id": u.ID})
	return h.login(c, u.Identity())
}

// GET /login
func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	if _, ok := c.Locals("user").(*domain.Identity); ok {
		return c.Redirect("/")
	}
	return render(c, "login", fiber.Map{"Err": ""})
}

// POST /login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var form services.LoginForm
	_ = c.BodyParser(&form)

	u, err := h.Auth.Login(c.UserContext(), form)
	if errors.Is(err, errs.ErrUnauthorized) {
		applog.Security(c, "auth.login.fail", map[string]any{"email": strings.ToLower(strings.TrimSpace(form.Email))})
		c.Status(fiber.StatusUnauthorized)
		return render(c, "login", fiber.Map{
			"Err":   errs.MetadataFor(errs.CodeUnauthorized).PublicMessage,
			"Email": form.Email,
		})
	}
	if err != nil {
		return err
	}

	applog.Audit(c, "auth.login.success", map[string]any{"user_id": u.ID})
	return h.login(c, u.Identity())
}

func (h *AuthHandler) login(c *fiber.Ctx, id domain.Identity) error {
	sess := session.From(c)
	to := safeRedirect(sess.PopRedirect())
	h.Cart.MergeOnLogin(sess, h.jar(c), id)
	c.Locals("user", sess.Identity())
	return c.Redirect(to)
}

// POST /logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	applog.Audit(c, "auth.logout", nil)
	session.From(c).Destroy()
	return c.Redirect("/")
}

// safeRedirect only lets same-site paths through.
func safeRedirect(to string) string {
	if to == "" || !strings.HasPrefix(to, "/") || strings.HasPrefix(to, "//") || strings.Contains(to, "\\") {
		return "/"
	}
	return to
}
