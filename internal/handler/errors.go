package handler

import (
	"errors"

	"go-marketplace-ws/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// respondError renders err as {"error": {"kind", "message", "details"}}.
func respondError(c *fiber.Ctx, err error) error {
	appErr := apperror.From(err)
	status := appErr.Kind.HTTPStatus()

	body := fiber.Map{
		"kind":    appErr.Kind,
		"message": appErr.Message,
	}
	if status >= fiber.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("request failed")
		body["message"] = "internal server error"
	} else if len(appErr.Metadata) > 0 {
		body["details"] = appErr.Metadata
	}

	return c.Status(status).JSON(fiber.Map{"error": body})
}

// ErrorHandler is the fiber.Config ErrorHandler: errors returned by handlers
// and middleware all leave through respondError.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		kind := apperror.KindValidation
		switch {
		case fe.Code == fiber.StatusNotFound:
			kind = apperror.KindNotFound
		case fe.Code >= fiber.StatusInternalServerError:
			kind = apperror.KindInternal
		}
		return c.Status(fe.Code).JSON(fiber.Map{"error": fiber.Map{"kind": kind, "message": fe.Message}})
	}
	return respondError(c, err)
}
