package routes

import (
	"crm-backend/config"
	"crm-backend/internal/handler"
	"crm-backend/internal/middleware"
	"crm-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupAttendanceRoutes(app *fiber.App, db *gorm.DB, cfg config.Config) {
	punchRepo := repository.NewPunchRepository(db)
	hdl := handler.NewAttendanceHandler(punchRepo)

	api := app.Group("/api/attendance", middleware.Auth(cfg.JWTSecret))

	api.Post("/punch", hdl.Punch)
	api.Get("/today", hdl.Today)
	api.Get("/report", hdl.Report)
	api.Get("/anomalies", hdl.Anomalies)
	api.Get("/export", hdl.Export)
	api.Patch("/:id/validate", hdl.Validate)
}
