package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/errs"
	applog "storefront/internal/log"
)

// ErrorHandler renders every failure as a friendly page. Only the public
// message of a code ever reaches the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := errs.MetadataFor(errs.CodePersistence).PublicMessage

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		status = fe.Code
		msg = fe.Message
		if status >= fiber.StatusInternalServerError {
			applog.Error(c, "server.error", err, nil)
			msg = errs.MetadataFor(errs.CodePersistence).PublicMessage
		}
	case errs.As(err) != nil:
		code := errs.CodeOf(err)
		meta := errs.MetadataFor(code)
		status, msg = meta.HTTPStatus, meta.PublicMessage
		if code == errs.CodeNotFound {
			msg = "Page not found"
		}
		if status >= fiber.StatusInternalServerError {
			applog.Error(c, "server.error", err, map[string]any{"code": string(code)})
		}
	default:
		applog.Error(c, "server.error", err, nil)
	}

	c.Status(status)
	if rerr := render(c, "error", fiber.Map{"Status": status, "Message": msg}); rerr != nil {
		applog.Error(c, "server.error.render", rerr, nil)
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(status).SendString(msg)
	}
	return nil
}
