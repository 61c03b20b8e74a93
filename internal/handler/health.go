package handler

import (
	"time"

	"crm-backend/config"

	"github.com/gofiber/fiber/v2"
)

func Health(appEnv string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":      "ok",
			"timestamp":   time.Now().Format(time.RFC3339),
			"environment": appEnv,
			"version":     config.Version,
		})
	}
}
