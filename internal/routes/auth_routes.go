package routes

import (
	"crm-backend/config"
	"crm-backend/internal/handler"
	"crm-backend/internal/middleware"
	"crm-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB, cfg config.Config) {
	userRepo := repository.NewUserRepository(db)
	hdl := handler.NewAuthHandler(userRepo, cfg)

	api := app.Group("/api/auth")

	api.Post("/register", hdl.Register)
	api.Post("/login", hdl.Login)
	api.Post("/refresh", hdl.Refresh)
	api.Post("/logout", middleware.Auth(cfg.JWTSecret), hdl.Logout)
	api.Get("/me", middleware.Auth(cfg.JWTSecret), hdl.Me)
}
