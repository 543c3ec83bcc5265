package main

import (
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"travelvat/cmd"
	"travelvat/internal/config"
	"travelvat/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger with configuration
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Printf("Warning: Could not initialize logger: %v", err)
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}
	logger.SetRunID(uuid.NewString())

	// Log application startup
	log := logger.WithComponent("main")
	log.Info().Msg("Starting travelvat")

	// Execute CLI commands
	cmd.Execute(cfg)

	// Log application shutdown
	log.Info().Msg("travelvat shutdown")
	os.Exit(0)
}
