package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	"storefront/internal/errs"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/session"
)

type CheckoutHandler struct {
	Cart     *services.CartService
	Checkout *services.CheckoutService
	jar      jarFactory
}

// GET /checkout
func (h *CheckoutHandler) Form(c *fiber.Ctx) error {
	cc, err := h.Cart.Reprice(c.UserContext(), h.Cart.Current(session.From(c), h.jar(c)))
	if err != nil {
		return err
	}
	if cc.IsEmpty() {
		return c.Redirect("/cart")
	}
	data := fiber.Map{
		"Cart":           cc,
		"Totals":         h.Checkout.Totals(cc),
		"CartCount":      cc.Count(),
		"PaymentMethods": services.PaymentMethods,
	}
	if c.Query("error") == "missing_fields" {
		data["Err"] = "Please fill in every field with valid details."
	}
	if u, ok := c.Locals("user").(*domain.Identity); ok && u != nil {
		data["Prefill"] = u
	}
	return render(c, "checkout", data)
}

// POST /checkout
func (h *CheckoutHandler) Place(c *fiber.Ctx) error {
	var form services.CheckoutForm
	if err := c.BodyParser(&form); err != nil {
		applog.Security(c, "checkout.body.invalid", nil)
		return c.Redirect("/checkout?error=missing_fields")
	}

	o, err := h.Checkout.Place(c.UserContext(), session.From(c), h.jar(c), form)
	switch {
	case errors.Is(err, services.ErrEmptyCart):
		return c.Redirect("/cart")
	case errors.Is(err, errs.ErrValidation):
		applog.Info(c, "checkout.invalid", map[string]any{"fields": errs.As(err).Fields()})
		return c.Redirect("/checkout?error=missing_fields")
	case err != nil:
		applog.Error(c, "checkout.persist.fail", err, nil)
		return err
	}

	applog.Audit(c, "checkout.placed", map[string]any{"order_id": o.ID, "total": o.Total.StringFixed(2)})
	return render(c, "order_success", fiber.Map{"Order": o, "CartCount": 0})
}
