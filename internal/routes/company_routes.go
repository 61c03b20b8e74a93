package routes

import (
	"crm-backend/config"
	"crm-backend/internal/handler"
	"crm-backend/internal/middleware"
	"crm-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupCompanyRoutes(app *fiber.App, db *gorm.DB, cfg config.Config) {
	companyRepo := repository.NewCompanyRepository(db)
	hdl := handler.NewCompanyHandler(companyRepo)

	api := app.Group("/api/companies", middleware.Auth(cfg.JWTSecret))

	api.Get("/", hdl.List)
	api.Get("/:id", hdl.Get)
	api.Post("/", hdl.Create)
	api.Put("/:id", hdl.Update)
	api.Delete("/:id", hdl.Delete)
}
