package routes

import (
	"crm-backend/config"
	"crm-backend/internal/handler"
	"crm-backend/internal/middleware"
	"crm-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupContactRoutes(app *fiber.App, db *gorm.DB, cfg config.Config) {
	contactRepo := repository.NewContactRepository(db)
	hdl := handler.NewContactHandler(contactRepo)

	api := app.Group("/api/contacts", middleware.Auth(cfg.JWTSecret))

	api.Get("/", hdl.List)
	api.Get("/:id", hdl.Get)
	api.Post("/", hdl.Create)
	api.Put("/:id", hdl.Update)
	api.Delete("/:id", hdl.Delete)
}
