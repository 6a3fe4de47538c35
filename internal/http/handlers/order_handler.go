package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	"storefront/internal/errs"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
}

// GET /orders
func (h *OrderHandler) History(c *fiber.Ctx) error {
	u, ok := c.Locals("user").(*domain.Identity)
	if !ok || u == nil {
		return errs.NotFound("orders", "")
	}
	orders, err := h.Orders.ForUser(c.UserContext(), u.ID)
	if err != nil {
		return err
	}
	return render(c, "order_history", fiber.Map{"Orders": orders})
}

// GET /orders/:id shows an order to the customer who placed it. Anyone else
// gets the same 404 as for a missing order.
func (h *OrderHandler) View(c *fiber.Ctx) error {
	u, ok := c.Locals("user").(*domain.Identity)
	id, okID := validate.ID(c.Params("id"))
	if !ok || u == nil || !okID {
		return errs.NotFound("order", c.Params("id"))
	}
	o, err := h.Orders.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	if o.UserID == nil || *o.UserID != u.ID {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": id})
		return errs.NotFound("order", id)
	}
	return render(c, "order", fiber.Map{"Order": o})
}
