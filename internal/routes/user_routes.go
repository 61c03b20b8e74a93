package routes

import (
	"crm-backend/config"
	"crm-backend/internal/handler"
	"crm-backend/internal/middleware"
	"crm-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupUserRoutes(app *fiber.App, db *gorm.DB, cfg config.Config) {
	userRepo := repository.NewUserRepository(db)
	hdl := handler.NewUserHandler(userRepo)

	api := app.Group("/api/users", middleware.Auth(cfg.JWTSecret))

	api.Get("/", hdl.List)
	api.Get("/:id", hdl.Get)
	api.Put("/:id", hdl.Update)
	api.Post("/:id/change-password", hdl.ChangePassword)
	api.Delete("/:id", hdl.Deactivate)
}
