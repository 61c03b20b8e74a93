package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"crm-backend/config"
	"crm-backend/internal/apperr"
	"crm-backend/internal/handler"
	"crm-backend/internal/mailer"
	"crm-backend/internal/middleware"
	"crm-backend/internal/routes"
	"crm-backend/internal/ws"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using system environment")
	}
	cfg := config.Load()

	db, err := config.Open(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: apperr.FiberHandler(cfg.Production()),
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowCredentials: true,
	}))
	app.Use(logger.New())
	app.Use(middleware.RequestID())

	app.Get("/health", handler.Health(cfg.AppEnv))

	hub := ws.NewHub()
	mail := mailer.New(cfg)

	routes.SetupAuthRoutes(app, db, cfg)
	routes.SetupUserRoutes(app, db, cfg)
	routes.SetupCompanyRoutes(app, db, cfg)
	routes.SetupContactRoutes(app, db, cfg)
	routes.SetupDealRoutes(app, db, cfg, hub)
	routes.SetupTicketRoutes(app, db, cfg, hub, mail)
	routes.SetupAttendanceRoutes(app, db, cfg)
	routes.SetupWSRoutes(app, hub)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("shutting down...")
		if err := app.Shutdown(); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	log.Printf("server listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("database close: %v", err)
		}
	}
	log.Println("bye")
}
