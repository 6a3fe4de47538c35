package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/errs"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

// GET /
func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	sections, err := h.Catalog.Home(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, "home", fiber.Map{"Sections": sections})
}

// GET /category/:id
func (h *CatalogHandler) Category(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return errs.NotFound("category", c.Params("id"))
	}
	sec, err := h.Catalog.Category(c.UserContext(), id)
	if err != nil {
		return err
	}
	return render(c, "category", fiber.Map{"Category": sec.Category, "Products": sec.Products})
}

// GET /product/:id
func (h *CatalogHandler) Product(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return errs.NotFound("product", c.Params("id"))
	}
	p, err := h.Catalog.Product(c.UserContext(), id)
	if err != nil {
		return err
	}
	return render(c, "product", fiber.Map{"Product": p})
}
