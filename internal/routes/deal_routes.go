package routes

import (
	"crm-backend/config"
	"crm-backend/internal/handler"
	"crm-backend/internal/middleware"
	"crm-backend/internal/repository"
	"crm-backend/internal/ws"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupDealRoutes(app *fiber.App, db *gorm.DB, cfg config.Config, events ws.Emitter) {
	dealRepo := repository.NewDealRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	hdl := handler.NewDealHandler(dealRepo, activityRepo, events)

	api := app.Group("/api/deals", middleware.Auth(cfg.JWTSecret))

	api.Get("/", hdl.List)
	api.Get("/pipeline", hdl.Pipeline)
	api.Get("/:id", hdl.Get)
	api.Post("/", hdl.Create)
	api.Put("/:id", hdl.Update)
	api.Patch("/:id/stage", hdl.UpdateStage)
	api.Delete("/:id", hdl.Delete)
}
