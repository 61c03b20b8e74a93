package routes

import (
	"crm-backend/internal/ws"

	"github.com/gofiber/fiber/v2"
)

func SetupWSRoutes(app *fiber.App, hub *ws.Hub) {
	app.Use("/ws", ws.Upgrade)
	app.Get("/ws", hub.Handler())
}
