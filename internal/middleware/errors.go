package middleware

import (
	"errors"

	"blogapi/internal/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ErrorHandler returns a Fiber error handler that serializes every error
// returned by a handler as {success, message, errorname[, errors]}.
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			body := fiber.Map{
				"success":   false,
				"message":   appErr.Message,
				"errorname": string(appErr.Kind),
			}
			if len(appErr.Fields) > 0 {
				body["errors"] = appErr.Fields
			}
			return c.Status(appErr.StatusCode()).JSON(body)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"success":   false,
				"message":   fiberErr.Message,
				"errorname": string(apperrors.KindUnhandled),
			})
		}

		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success":   false,
			"message":   "Internal Server Error",
			"errorname": string(apperrors.KindUnhandled),
		})
	}
}

// NotFound answers unmatched routes with a plain-text 404.
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).SendString("404 - Not Found")
}
