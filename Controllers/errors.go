package Controllers

import (
	"errors"

	"Bhumi/Models"
	"Bhumi/Reconciler"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// respondError maps engine errors onto HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Record not found"})
	case errors.Is(err, Models.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, Models.ErrIllegalTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, Reconciler.ErrNotAssignee), errors.Is(err, Reconciler.ErrNotAdmin):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
