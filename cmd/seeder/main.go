package main

import (
	"log"

	"crm-backend/config"
	"crm-backend/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using system environment")
	}

	db, err := config.Open(config.Load())
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	database.SeedAll(db)
}
