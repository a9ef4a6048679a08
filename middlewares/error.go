package middlewares

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/baniakuntest4-alt/arhanud/services"
)

// ErrorHandler centralizes error responses and keeps messages sanitized.
// The workflow error taxonomy maps here and nowhere else:
// validation 422, not found 404, invalid state 409, authorization 403,
// propagation 502 with the decision result attached.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// 1) Fiber errors (use their status code + message)
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	// 2) Struct validation errors (422 + per-field tags)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  out,
		})
	}

	// 3) Workflow errors
	var (
		valErr   *services.ValidationError
		nfErr    *services.NotFoundError
		stateErr *services.InvalidStateError
		authErr  *services.AuthorizationError
		propErr  *services.PropagationError
	)
	switch {
	case errors.As(err, &valErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  valErr.Fields,
		})
	case errors.As(err, &nfErr):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": nfErr.Error()})
	case errors.As(err, &stateErr):
		// Stale client view; the UI should refresh its list rather than retry.
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": stateErr.Error(),
			"status":  stateErr.Status,
		})
	case errors.As(err, &authErr):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": authErr.Error()})
	case errors.As(err, &propErr):
		// The decision was persisted; only the follow-up update failed.
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message":    propErr.Error(),
			"verified":   true,
			"request_id": propErr.RequestID,
		})
	}

	// 4) Unknown errors (500)
	logrus.WithError(err).Error("internal error")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}
