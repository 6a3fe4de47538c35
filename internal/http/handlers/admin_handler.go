package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	"storefront/internal/errs"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type AdminHandler struct {
	Catalog *services.CatalogService
	Orders  *services.OrderService
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	products, err := h.Catalog.ProductCount(ctx)
	if err != nil {
		return err
	}
	stats, err := h.Orders.Stats(ctx)
	if err != nil {
		return err
	}
	latest, err := h.Orders.Latest(ctx, 10)
	if err != nil {
		return err
	}
	return render(c, "admin_dashboard", fiber.Map{
		"ProductCount": products,
		"OrderCount":   stats.Count,
		"Revenue":      stats.Revenue,
		"Orders":       latest,
	})
}

// GET /admin/products
func (h *AdminHandler) Products(c *fiber.Ctx) error {
	sections, err := h.Catalog.Home(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, "admin_products", fiber.Map{"Sections": sections})
}

// GET /admin/products/new
func (h *AdminHandler) NewProduct(c *fiber.Ctx) error {
	return h.productForm(c, fiber.Map{"Action": "/admin/products"})
}

// GET /admin/products/:id/edit
func (h *AdminHandler) EditProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return errs.NotFound("product", c.Params("id"))
	}
	p, err := h.Catalog.Product(c.UserContext(), id)
	if err != nil {
		return err
	}
	return h.productForm(c, fiber.Map{
		"Action":  "/admin/products/" + strconv.FormatInt(id, 10),
		"Product": p,
		"Form": services.ProductForm{
			Name: p.Name, Description: p.Description, Price: p.Price.StringFixed(2),
			ImageURL: p.ImageURL, CategoryID: p.CategoryID,
		},
	})
}

// POST /admin/products
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	form := productFormFrom(c)
	p, err := h.Catalog.CreateProduct(c.UserContext(), form)
	if errors.Is(err, errs.ErrValidation) {
		c.Status(fiber.StatusBadRequest)
		return h.productForm(c, fiber.Map{"Action": "/admin/products", "Form": form, "Fields": errs.As(err).Fields()})
	}
	if err != nil {
		applog.Error(c, "admin.products.create.fail", err, nil)
		return err
	}
	applog.Audit(c, "admin.products.create", map[string]any{"product_id": p.ID, "name": p.Name, "price": p.Price.StringFixed(2)})
	return c.Redirect("/admin/products")
}

// POST /admin/products/:id
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return errs.NotFound("product", c.Params("id"))
	}
	form := productFormFrom(c)
	p, err := h.Catalog.UpdateProduct(c.UserContext(), id, form)
	if errors.Is(err, errs.ErrValidation) {
		c.Status(fiber.StatusBadRequest)
		return h.productForm(c, fiber.Map{
			"Action": "/admin/products/" + strconv.FormatInt(id, 10),
			"Form":   form,
			"Fields": errs.As(err).Fields(),
		})
	}
	if err != nil {
		applog.Error(c, "admin.products.update.fail", err, map[string]any{"product_id": id})
		return err
	}
	applog.Audit(c, "admin.products.update", map[string]any{"product_id": p.ID, "price": p.Price.StringFixed(2)})
	return c.Redirect("/admin/products")
}

// POST /admin/products/:id/delete
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return errs.NotFound("product", c.Params("id"))
	}
	if err := h.Catalog.DeleteProduct(c.UserContext(), id); err != nil {
		applog.Error(c, "admin.products.delete.fail", err, map[string]any{"product_id": id})
		return err
	}
	applog.Audit(c, "admin.products.delete", map[string]any{"product_id": id})
	return c.Redirect("/admin/products")
}

func (h *AdminHandler) productForm(c *fiber.Ctx, data fiber.Map) error {
	cats, err := h.Catalog.Categories(c.UserContext())
	if err != nil {
		return err
	}
	data["Categories"] = cats
	if _, ok := data["Form"]; !ok {
		data["Form"] = services.ProductForm{}
	}
	return render(c, "admin_product_form", data)
}

func productFormFrom(c *fiber.Ctx) services.ProductForm {
	catID, _ := validate.ID(c.FormValue("category_id"))
	return services.ProductForm{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Price:       c.FormValue("price"),
		ImageURL:    c.FormValue("image_url"),
		CategoryID:  catID,
	}
}

// GET /admin/orders
func (h *AdminHandler) OrdersPage(c *fiber.Ctx) error {
	ords, err := h.Orders.Latest(c.UserContext(), 100)
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return err
	}
	return render(c, "admin_orders", fiber.Map{"Orders": ords})
}

// GET /admin/orders/:id
func (h *AdminHandler) OrderDetail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return errs.NotFound("order", c.Params("id"))
	}
	o, err := h.Orders.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return render(c, "admin_order", fiber.Map{"Order": o, "Statuses": domain.OrderStatuses})
}

// POST /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return errs.NotFound("order", c.Params("id"))
	}
	status := c.FormValue("status")
	if err := h.Orders.SetStatus(c.UserContext(), id, status); err != nil {
		applog.Error(c, "admin.orders.update.fail", err, map[string]any{"order_id": id, "status": status})
		return err
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": status})
	return c.Redirect("/admin/orders/" + strconv.FormatInt(id, 10))
}
