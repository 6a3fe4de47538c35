package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/errs"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/session"
	"storefront/internal/validate"
)

type CartHandler struct {
	Cart     *services.CartService
	Checkout *services.CheckoutService
	jar      jarFactory
}

// GET /cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	cc := h.Cart.Current(session.From(c), h.jar(c))
	return render(c, "cart", fiber.Map{
		"Cart":      cc,
		"Totals":    h.Checkout.Totals(cc),
		"CartCount": cc.Count(),
	})
}

// POST /cart/add/:id
func (h *CartHandler) Add(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return errs.NotFound("product", c.Params("id"))
	}
	if _, err := h.Cart.Add(c.UserContext(), session.From(c), h.jar(c), id); err != nil {
		return err
	}
	applog.Info(c, "cart.add", map[string]any{"product_id": id})
	return c.Redirect("/cart")
}

// POST /cart/update/:id
func (h *CartHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Redirect("/cart")
	}
	qty := validate.Qty(c.FormValue("quantity"))
	h.Cart.Update(session.From(c), h.jar(c), id, qty)
	applog.Info(c, "cart.update", map[string]any{"product_id": id, "quantity": qty})
	return c.Redirect("/cart")
}

// POST /cart/remove/:id
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	if id, ok := validate.ID(c.Params("id")); ok {
		h.Cart.Remove(session.From(c), h.jar(c), id)
		applog.Info(c, "cart.remove", map[string]any{"product_id": id})
	}
	return c.Redirect("/cart")
}

// POST /cart/clear
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	h.Cart.Clear(session.From(c), h.jar(c))
	applog.Info(c, "cart.clear", nil)
	return c.Redirect("/cart")
}
