package routes

import (
	"crm-backend/config"
	"crm-backend/internal/handler"
	"crm-backend/internal/mailer"
	"crm-backend/internal/middleware"
	"crm-backend/internal/repository"
	"crm-backend/internal/ws"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupTicketRoutes(app *fiber.App, db *gorm.DB, cfg config.Config, events ws.Emitter, mail *mailer.Mailer) {
	ticketRepo := repository.NewTicketRepository(db)
	userRepo := repository.NewUserRepository(db)
	hdl := handler.NewTicketHandler(ticketRepo, userRepo, events, mail)

	api := app.Group("/api/tickets", middleware.Auth(cfg.JWTSecret))

	api.Get("/", hdl.List)
	api.Get("/:id", hdl.Get)
	api.Post("/", hdl.Create)
	api.Put("/:id", hdl.Update)
	api.Patch("/:id/status", hdl.UpdateStatus)
	api.Patch("/:id/assign", hdl.Assign)
	api.Post("/:id/messages", hdl.AddMessage)
}
