package handlers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"gerai/internal/models"
	"gerai/internal/services"
)

// validate checks request bodies against the struct tags on the models.
var validate = validator.New()

// actorFromCtx builds the acting user from the JWT claims the auth
// middleware stored on the request.
func actorFromCtx(c *fiber.Ctx) services.Actor {
	userID, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(string)
	return services.Actor{
		UserID: userID,
		Role:   models.Role(role),
	}
}

// respondError maps the service error taxonomy to HTTP status codes:
// NotFound->404, Unauthorized->403, InvalidOperation/Argument->400,
// anything else->500.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": err.Error(),
		})
	case errors.Is(err, services.ErrUnauthorized):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": err.Error(),
		})
	case errors.Is(err, services.ErrInvalidOperation), errors.Is(err, services.ErrArgument):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	default:
		log.Printf("Unhandled service error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}
}
